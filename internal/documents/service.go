// Package documents attaches files to components and component models.
//
// An upload is a three step saga: store the blob, create the metadata row
// pointing at it, then sign a download URL. When the metadata step fails
// the blob is deleted again so storage does not collect orphans. Nothing is
// retried and no saga state outlives the request.
package documents

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"onecore/internal/adapters/filestorage"
	"onecore/internal/adapters/propertybase"
	"onecore/internal/audit"
	"onecore/internal/platform/metrics"
	"onecore/internal/platform/tracer"
	"onecore/internal/platform/upstream"
	dErrors "onecore/pkg/domain-errors"
	"onecore/pkg/requestcontext"
	s "onecore/pkg/string"
)

// BlobStore is the file-storage side of the saga.
type BlobStore interface {
	Upload(ctx context.Context, fileName, contentType string, body io.Reader) (filestorage.UploadResult, error)
	Delete(ctx context.Context, fileName string) error
	GetURL(ctx context.Context, fileName string, expiry time.Duration) (filestorage.SignedURL, error)
}

// MetadataStore is the property-base side of the saga.
type MetadataStore interface {
	CreateDocument(ctx context.Context, in propertybase.DocumentInput) (propertybase.Document, error)
	ListDocuments(ctx context.Context, owner propertybase.OwnerType, ownerID string) ([]propertybase.Document, error)
	GetDocument(ctx context.Context, id string) (propertybase.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, action audit.Action, resource, resourceID string, outcome audit.Outcome, details map[string]string)
}

// File is an incoming upload. Size may be zero when unknown.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Document is the metadata row plus a signed download URL. URL is empty
// when signing failed.
type Document struct {
	propertybase.Document
	URL       string `json:"url,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type Service struct {
	blobs     BlobStore
	metadata  MetadataStore
	audit     AuditRecorder
	urlTTL    time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	newFileID func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(svc *Service) { svc.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(svc *Service) { svc.tracer = t }
}

// WithURLTTL sets the lifetime of signed URLs handed out with documents.
func WithURLTTL(ttl time.Duration) Option {
	return func(svc *Service) { svc.urlTTL = ttl }
}

// WithIDGenerator replaces the uuid prefix of blob keys.
func WithIDGenerator(fn func() string) Option {
	return func(svc *Service) { svc.newFileID = fn }
}

func New(blobs BlobStore, metadata MetadataStore, recorder AuditRecorder, opts ...Option) *Service {
	svc := &Service{
		blobs:     blobs,
		metadata:  metadata,
		audit:     recorder,
		urlTTL:    time.Hour,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    tracer.NewNoop(),
		newFileID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// BlobKey returns the storage key for a file attached to owner.
func BlobKey(owner propertybase.OwnerType, ownerID, id, fileName string) string {
	prefix := "components"
	if owner == propertybase.OwnerComponentModel {
		prefix = "component-models"
	}
	return prefix + "/" + ownerID + "/" + id + "-" + s.SanitizeFileName(fileName)
}

func (svc *Service) UploadComponentFile(ctx context.Context, componentID string, file File) (Document, error) {
	return svc.upload(ctx, propertybase.OwnerComponent, componentID, file)
}

func (svc *Service) UploadComponentModelDocument(ctx context.Context, modelID string, file File) (Document, error) {
	return svc.upload(ctx, propertybase.OwnerComponentModel, modelID, file)
}

func (svc *Service) upload(ctx context.Context, owner propertybase.OwnerType, ownerID string, file File) (doc Document, err error) {
	if ownerID == "" {
		return Document{}, dErrors.New(dErrors.CodeBadRequest, "owner id is required")
	}
	if file.Body == nil || file.Name == "" {
		return Document{}, dErrors.New(dErrors.CodeBadRequest, "file is required")
	}
	if file.ContentType == "" {
		file.ContentType = "application/octet-stream"
	}

	ctx, span := svc.tracer.Start(ctx, tracer.SpanDocumentUpload,
		tracer.String(tracer.AttrOwnerID, ownerID),
		tracer.String("document.owner_type", string(owner)),
	)
	defer func() { span.End(err) }()

	key := BlobKey(owner, ownerID, svc.newFileID(), file.Name)

	uploaded, err := svc.blobs.Upload(ctx, key, file.ContentType, file.Body)
	if err != nil {
		svc.logger.ErrorContext(ctx, "document blob upload failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"owner_id", ownerID,
			"error", err,
		)
		return Document{}, upstream.ToDomain(err)
	}
	size := file.Size
	if uploaded.Size > 0 {
		size = uploaded.Size
	}

	input := propertybase.DocumentInput{
		FileID:      key,
		FileName:    file.Name,
		ContentType: file.ContentType,
		Size:        size,
	}
	if owner == propertybase.OwnerComponentModel {
		input.ComponentModelID = ownerID
	} else {
		input.ComponentInstanceID = ownerID
	}

	meta, err := svc.metadata.CreateDocument(ctx, input)
	if err != nil {
		svc.compensate(ctx, span, key, err)
		svc.audit.Record(ctx, audit.ActionDocumentUploadCompensated, audit.ResourceDocument, key, audit.OutcomeFailure,
			map[string]string{"owner": string(owner), "ownerId": ownerID})
		return Document{}, upstream.ToDomain(err)
	}

	doc = Document{Document: meta}
	svc.sign(ctx, &doc)

	svc.metrics.IncDocumentsUploaded(string(owner))
	svc.audit.Record(ctx, audit.ActionDocumentUploaded, audit.ResourceDocument, meta.ID, audit.OutcomeSuccess,
		map[string]string{"owner": string(owner), "ownerId": ownerID, "fileId": key})
	return doc, nil
}

// compensate deletes a blob whose metadata could not be created. A failed
// delete is logged and counted; the caller still sees the metadata error.
func (svc *Service) compensate(ctx context.Context, span tracer.Span, key string, cause error) {
	// The request may already be cancelled; the cleanup must still run.
	ctx = context.WithoutCancel(ctx)
	span.AddEvent(tracer.EventCompensated, tracer.String("blob_key", key))

	if err := svc.blobs.Delete(ctx, key); err != nil && !upstream.IsNotFound(err) {
		svc.metrics.IncUploadCompensation("failed")
		svc.logger.ErrorContext(ctx, "failed to delete orphaned document blob",
			"request_id", requestcontext.RequestID(ctx),
			"blob_key", key,
			"cause", cause,
			"error", err,
		)
		return
	}
	svc.metrics.IncUploadCompensation("deleted")
	svc.logger.WarnContext(ctx, "document metadata creation failed, blob deleted",
		"request_id", requestcontext.RequestID(ctx),
		"blob_key", key,
		"error", cause,
	)
}

// sign attaches a download URL. Failures leave the URL empty.
func (svc *Service) sign(ctx context.Context, doc *Document) {
	signed, err := svc.blobs.GetURL(ctx, doc.FileID, svc.urlTTL)
	if err != nil {
		svc.logger.WarnContext(ctx, "failed to sign document url",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", doc.ID,
			"error", err,
		)
		return
	}
	doc.URL = signed.URL
	doc.ExpiresIn = signed.ExpiresIn
}

func (svc *Service) ListComponentDocuments(ctx context.Context, componentID string) ([]Document, error) {
	return svc.list(ctx, propertybase.OwnerComponent, componentID)
}

func (svc *Service) ListComponentModelDocuments(ctx context.Context, modelID string) ([]Document, error) {
	return svc.list(ctx, propertybase.OwnerComponentModel, modelID)
}

func (svc *Service) list(ctx context.Context, owner propertybase.OwnerType, ownerID string) ([]Document, error) {
	metas, err := svc.metadata.ListDocuments(ctx, owner, ownerID)
	if err != nil {
		return nil, upstream.ToDomain(err)
	}
	docs := make([]Document, len(metas))
	for i, m := range metas {
		docs[i] = Document{Document: m}
		svc.sign(ctx, &docs[i])
	}
	return docs, nil
}

// DeleteDocument removes the metadata row and then, best effort, the blob.
func (svc *Service) DeleteDocument(ctx context.Context, id string) error {
	meta, err := svc.metadata.GetDocument(ctx, id)
	if err != nil {
		return upstream.ToDomain(err)
	}
	if err := svc.metadata.DeleteDocument(ctx, id); err != nil {
		return upstream.ToDomain(err)
	}
	if err := svc.blobs.Delete(context.WithoutCancel(ctx), meta.FileID); err != nil && !upstream.IsNotFound(err) {
		svc.logger.WarnContext(ctx, "document deleted but blob removal failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id,
			"blob_key", meta.FileID,
			"error", err,
		)
	}
	svc.audit.Record(ctx, audit.ActionDocumentDeleted, audit.ResourceDocument, id, audit.OutcomeSuccess,
		map[string]string{"fileId": meta.FileID})
	return nil
}

// FileURL signs a download URL for an arbitrary blob. A zero expiry uses the
// configured TTL; anything above filestorage.MaxURLExpiry is rejected.
func (svc *Service) FileURL(ctx context.Context, fileName string, expiry time.Duration) (filestorage.SignedURL, error) {
	if fileName == "" {
		return filestorage.SignedURL{}, dErrors.New(dErrors.CodeBadRequest, "file name is required")
	}
	if expiry == 0 {
		expiry = svc.urlTTL
	}
	if expiry < 0 || expiry > filestorage.MaxURLExpiry {
		return filestorage.SignedURL{}, dErrors.New(dErrors.CodeBadRequest, "expiry must be between 1 second and 7 days")
	}
	signed, err := svc.blobs.GetURL(ctx, fileName, expiry)
	if err != nil {
		return filestorage.SignedURL{}, upstream.ToDomain(err)
	}
	return signed, nil
}
