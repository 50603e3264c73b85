package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event records one mutation made through the gateway. It is transport
// agnostic so stores and sinks can fan out.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	OccurredAt time.Time         `json:"occurredAt"`
	Actor      string            `json:"actor"`
	Action     Action            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resourceId"`
	Outcome    Outcome           `json:"outcome"`
	RequestID  string            `json:"requestId,omitempty"`
	ClientIP   string            `json:"clientIp,omitempty"`
	UserAgent  string            `json:"userAgent,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type Action string

const (
	ActionDocumentUploaded          Action = "document_uploaded"
	ActionDocumentUploadCompensated Action = "document_upload_compensated"
	ActionDocumentDeleted           Action = "document_deleted"
	ActionComponentCreated          Action = "component_created"
	ActionComponentUpdated          Action = "component_updated"
	ActionComponentDeleted          Action = "component_deleted"
	ActionKeySystemCreated          Action = "key_system_created"
	ActionKeySystemUpdated          Action = "key_system_updated"
	ActionKeySystemDeleted          Action = "key_system_deleted"
	ActionKeyCreated                Action = "key_created"
	ActionKeyUpdated                Action = "key_updated"
	ActionKeyDeleted                Action = "key_deleted"
	ActionKeyLoanCreated            Action = "key_loan_created"
	ActionKeyLoanReturned           Action = "key_loan_returned"
	ActionWorkOrderCreated          Action = "work_order_created"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Resource names used on events.
const (
	ResourceDocument  = "document"
	ResourceComponent = "component"
	ResourceKeySystem = "key_system"
	ResourceKey       = "key"
	ResourceKeyLoan   = "key_loan"
	ResourceWorkOrder = "work_order"
)

// Filter narrows List. Zero values match everything; Limit is clamped to
// [1, MaxListLimit].
type Filter struct {
	Resource   string
	ResourceID string
	Limit      int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}
