// Package filestorage adapts the blob store fronting object storage.
package filestorage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"onecore/internal/platform/upstream"
	"onecore/pkg/requestcontext"
)

// MaxURLExpiry is the longest signed URL lifetime the store accepts.
const MaxURLExpiry = 7 * 24 * time.Hour

// SignedURL is a time-limited download link.
type SignedURL struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// UploadResult is what the store reports after accepting a blob.
type UploadResult struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

type Adapter struct {
	client *upstream.Client
	logger *slog.Logger
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func New(client *upstream.Client, opts ...Option) *Adapter {
	a := &Adapter{client: client, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Upload streams body to the store under fileName as a multipart form.
func (a *Adapter) Upload(ctx context.Context, fileName, contentType string, body io.Reader) (UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		err := mw.WriteField("fileName", fileName)
		if err == nil {
			var part io.Writer
			part, err = mw.CreatePart(header)
			if err == nil {
				_, err = io.Copy(part, body)
			}
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := a.client.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        "/files/upload",
		Body:        pr,
		ContentType: mw.FormDataContentType(),
	})
	_ = pr.Close()
	if err != nil {
		return UploadResult{}, err
	}

	// The blob is stored at this point, so an unreadable reply is logged and
	// the requested name kept; failing here would skip the caller's cleanup.
	result := UploadResult{FileName: fileName}
	if len(resp.Body) > 0 {
		if err := resp.Decode(&result); err != nil {
			a.logger.WarnContext(ctx, "unreadable file storage upload reply",
				"file_name", fileName,
				"status", resp.Status,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			result = UploadResult{FileName: fileName}
		}
	}
	if result.FileName == "" {
		result.FileName = fileName
	}
	return result, nil
}

func (a *Adapter) Delete(ctx context.Context, fileName string) error {
	_, err := a.client.Do(ctx, upstream.Request{Method: http.MethodDelete, Path: upstream.PathJoin("files", fileName)})
	return err
}

// GetURL asks for a signed download URL valid for expiry, capped at MaxURLExpiry.
func (a *Adapter) GetURL(ctx context.Context, fileName string, expiry time.Duration) (SignedURL, error) {
	if expiry <= 0 || expiry > MaxURLExpiry {
		expiry = MaxURLExpiry
	}
	q := url.Values{"expirySeconds": {strconv.Itoa(int(expiry.Seconds()))}}
	var out SignedURL
	err := a.client.GetJSON(ctx, upstream.PathJoin("files", fileName, "url"), q, &out)
	return out, err
}

func (a *Adapter) Exists(ctx context.Context, fileName string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	err := a.client.GetJSON(ctx, upstream.PathJoin("files", fileName, "exists"), nil, &out)
	if upstream.IsNotFound(err) {
		return false, nil
	}
	return out.Exists, err
}
