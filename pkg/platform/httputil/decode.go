package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "onecore/pkg/domain-errors"
)

// Normalizable request bodies are cleaned up before validation.
type Normalizable interface {
	Normalize()
}

// Validatable request bodies check their own invariants.
type Validatable interface {
	Validate() error
}

// DecodeJSON reads exactly one JSON value from the body into a T. On failure
// it has already written the error response and returns false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	out := new(T)
	if err := readBody(r.Body, out); err != nil {
		logger.WarnContext(ctx, "rejected request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return out, true
}

func readBody(body io.Reader, out any) error {
	dec := json.NewDecoder(body)
	err := dec.Decode(out)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is empty")
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "request body must hold a single JSON value")
	}
	return nil
}

// PrepareRequest runs Normalize then Validate when req implements them.
// Errors that are not already domain errors become validation errors.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	v, ok := req.(Validatable)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.New(dErrors.CodeValidation, err.Error())
}

// DecodeAndPrepare is DecodeJSON followed by PrepareRequest.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}
	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "request failed validation",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
