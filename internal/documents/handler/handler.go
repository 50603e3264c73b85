package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"onecore/internal/adapters/filestorage"
	"onecore/internal/documents"
	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/platform/httputil"
	"onecore/pkg/platform/middleware/request"
	"onecore/pkg/requestcontext"
)

// Service defines the document operations the routes need.
type Service interface {
	UploadComponentFile(ctx context.Context, componentID string, file documents.File) (documents.Document, error)
	UploadComponentModelDocument(ctx context.Context, modelID string, file documents.File) (documents.Document, error)
	ListComponentDocuments(ctx context.Context, componentID string) ([]documents.Document, error)
	ListComponentModelDocuments(ctx context.Context, modelID string) ([]documents.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	FileURL(ctx context.Context, fileName string, expiry time.Duration) (filestorage.SignedURL, error)
}

const fileField = "file"

var (
	errMissingFile = dErrors.New(dErrors.CodeBadRequest, `multipart field "file" is required`)
	errTooLarge    = dErrors.New(dErrors.CodeTooLarge, "file exceeds the upload size limit")
)

type Handler struct {
	documents Service
	logger    *slog.Logger
	maxBytes  int64
}

// New creates the documents handler. maxBytes caps a whole multipart request.
func New(documents Service, logger *slog.Logger, maxBytes int64) *Handler {
	return &Handler{documents: documents, logger: logger, maxBytes: maxBytes}
}

// Register mounts the document routes. Uploads get their own body limit and
// content type rule; mount them outside any JSON-only group.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(h.maxBytes))
		r.Use(request.ContentType("multipart/form-data"))
		r.Post("/components/{componentId}/documents", h.handleUploadComponentFile)
		r.Post("/component-models/{modelId}/documents", h.handleUploadComponentModelDocument)
	})
	r.Get("/components/{componentId}/documents", h.handleListComponentDocuments)
	r.Get("/component-models/{modelId}/documents", h.handleListComponentModelDocuments)
	r.Delete("/documents/{documentId}", h.handleDeleteDocument)
	r.Get("/files/{fileName}/url", h.handleFileURL)
}

func (h *Handler) handleUploadComponentFile(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, chi.URLParam(r, "componentId"), h.documents.UploadComponentFile)
}

func (h *Handler) handleUploadComponentModelDocument(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, chi.URLParam(r, "modelId"), h.documents.UploadComponentModelDocument)
}

type uploadFunc func(ctx context.Context, ownerID string, file documents.File) (documents.Document, error)

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, ownerID string, upload uploadFunc) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body := &limitTracker{ReadCloser: r.Body}
	r.Body = body

	mr, err := r.MultipartReader()
	if err != nil {
		h.logger.WarnContext(ctx, "upload is not multipart", "request_id", requestID, "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart/form-data body"))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			httputil.WriteError(w, errMissingFile)
			return
		}
		if err != nil {
			h.writeUploadError(w, r, body, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed multipart body"))
			return
		}
		if part.FormName() != fileField || part.FileName() == "" {
			// Skip unrelated form fields.
			_, _ = io.Copy(io.Discard, part)
			continue
		}

		doc, err := upload(ctx, ownerID, documents.File{
			Name:        part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		})
		if err != nil {
			h.writeUploadError(w, r, body, err)
			return
		}
		httputil.WriteContent(w, http.StatusCreated, doc)
		return
	}
}

func (h *Handler) writeUploadError(w http.ResponseWriter, r *http.Request, body *limitTracker, err error) {
	if body.exceeded {
		err = errTooLarge
	}
	h.logger.WarnContext(r.Context(), "document upload failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	httputil.WriteError(w, err)
}

// limitTracker remembers whether the body limit was hit, since the error
// reaches the handler through the multipart reader and the upstream client.
type limitTracker struct {
	io.ReadCloser
	exceeded bool
}

func (t *limitTracker) Read(p []byte) (int, error) {
	n, err := t.ReadCloser.Read(p)
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		t.exceeded = true
	}
	return n, err
}

func (h *Handler) handleListComponentDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListComponentDocuments(r.Context(), chi.URLParam(r, "componentId"))
	h.writeList(w, r, docs, err)
}

func (h *Handler) handleListComponentModelDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListComponentModelDocuments(r.Context(), chi.URLParam(r, "modelId"))
	h.writeList(w, r, docs, err)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, docs []documents.Document, err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list documents",
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if docs == nil {
		docs = []documents.Document{}
	}
	httputil.WriteContent(w, http.StatusOK, docs)
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "documentId")
	if err := h.documents.DeleteDocument(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete document",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checked before converting to a Duration, which would overflow.
const maxExpirySeconds = int(filestorage.MaxURLExpiry / time.Second)

func (h *Handler) handleFileURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// Blob keys contain slashes and arrive as %2F.
	fileName, err := url.PathUnescape(chi.URLParam(r, "fileName"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid file name"))
		return
	}

	var expiry time.Duration
	if raw := r.URL.Query().Get("expirySeconds"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 || secs > maxExpirySeconds {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
				"expirySeconds must be between 1 and "+strconv.Itoa(maxExpirySeconds)))
			return
		}
		expiry = time.Duration(secs) * time.Second
	}

	signed, err := h.documents.FileURL(ctx, fileName, expiry)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to sign file url",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, signed)
}
