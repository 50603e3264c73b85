package upstream

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/platform/httputil"
)

func TestKindFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusConflict, KindConflict},
		{http.StatusForbidden, KindForbidden},
		{http.StatusUnauthorized, KindUnknown},
		{http.StatusUnprocessableEntity, KindUnknown},
		{http.StatusInternalServerError, KindUnknown},
		{http.StatusBadGateway, KindUnknown},
		{http.StatusOK, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindFromStatus(tt.status))
		})
	}
}

func TestKindFromStatusIsTotal(t *testing.T) {
	known := make(map[ErrorKind]bool, len(Kinds))
	for _, k := range Kinds {
		known[k] = true
	}
	for status := 100; status < 600; status++ {
		assert.True(t, known[KindFromStatus(status)], "status %d", status)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	wrapped := errors.Join(errors.New("ctx"), &Error{Kind: KindConflict, Service: "keys"})
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsNotFound(&Error{Kind: KindNotFound}))
}

func TestToDomainStatusMapping(t *testing.T) {
	tests := []struct {
		kind       ErrorKind
		wantStatus int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindBadRequest, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := ToDomain(&Error{Kind: tt.kind, Service: "leasing", Message: "upstream said so"})
			assert.Equal(t, tt.wantStatus, httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)))
		})
	}
}

func TestToDomainHidesUnknownDetails(t *testing.T) {
	err := ToDomain(&Error{Kind: KindUnknown, Service: "economy", Message: "stack trace at line 42"})
	assert.Equal(t, "economy request failed", err.Error())

	err = ToDomain(&Error{Kind: KindNotFound, Service: "leasing", Message: "Lease not found"})
	assert.Equal(t, "Lease not found", err.Error())
}

func TestToDomainPassesDomainErrors(t *testing.T) {
	original := dErrors.New(dErrors.CodeValidation, "q too short")
	assert.Same(t, original, ToDomain(original))
	assert.Nil(t, ToDomain(nil))
}
