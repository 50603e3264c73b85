package httputil

import (
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	dErrors "onecore/pkg/domain-errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps Page*Limit within an int32, which every upstream accepts.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Page is a validated page/limit pair taken from the query string.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the zero-based index of the first record on the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the position of a page within a result set.
type Meta struct {
	TotalRecords int `json:"totalRecords"`
	Page         int `json:"page"`
	Limit        int `json:"limit"`
	Count        int `json:"count"`
}

// Link is a navigation link on a paginated response.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

// ParsePage reads page and limit from the query string. Absent values take
// defaults; malformed or out-of-range values are a bad request.
func ParsePage(r *http.Request) (Page, error) {
	q := r.URL.Query()
	page, err := intParam(q, "page", DefaultPage)
	if err != nil || page < 1 || page > MaxPage {
		return Page{}, dErrors.New(dErrors.CodeBadRequest, "page must be between 1 and "+strconv.Itoa(MaxPage))
	}
	limit, err := intParam(q, "limit", DefaultLimit)
	if err != nil || limit < 1 || limit > MaxLimit {
		return Page{}, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and "+strconv.Itoa(MaxLimit))
	}
	return Page{Page: page, Limit: limit}, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// WritePage writes a paginated envelope with _meta and self/next/prev links.
// content must be a slice; its length becomes _meta.count.
func WritePage(w http.ResponseWriter, r *http.Request, page Page, totalRecords int, content any) {
	count := 0
	if v := reflect.ValueOf(content); v.Kind() == reflect.Slice {
		count = v.Len()
	}
	WriteJSON(w, http.StatusOK, Envelope{
		Content: content,
		Meta: &Meta{
			TotalRecords: totalRecords,
			Page:         page.Page,
			Limit:        page.Limit,
			Count:        count,
		},
		Links: PageLinks(r.URL, page, totalRecords),
	})
}

// PageLinks builds self, next and prev links preserving other query parameters.
func PageLinks(u *url.URL, page Page, totalRecords int) []Link {
	links := []Link{{Href: pageHref(u, page.Page, page.Limit), Rel: "self"}}
	if page.Limit > 0 && page.Page < lastPage(totalRecords, page.Limit) {
		links = append(links, Link{Href: pageHref(u, page.Page+1, page.Limit), Rel: "next"})
	}
	if page.Page > 1 {
		links = append(links, Link{Href: pageHref(u, page.Page-1, page.Limit), Rel: "prev"})
	}
	return links
}

// lastPage is ceil(total/limit) without the overflow of page*limit.
func lastPage(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total-1)/limit + 1
}

func pageHref(u *url.URL, page, limit int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return u.Path + "?" + q.Encode()
}
