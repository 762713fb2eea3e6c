package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/shared"
)

// AuditAction tags what kind of state change an audit event records
type AuditAction string

const (
	AuditActionCreateInvoice  AuditAction = "create_invoice"
	AuditActionUpdateTotal    AuditAction = "update_total"
	AuditActionVoidInvoice    AuditAction = "void_invoice"
	AuditActionPaymentApplied AuditAction = "payment_applied"
	AuditActionStatusChange   AuditAction = "status_change"
)

// IsValid checks if the audit action is valid
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreateInvoice, AuditActionUpdateTotal, AuditActionVoidInvoice,
		AuditActionPaymentApplied, AuditActionStatusChange:
		return true
	}
	return false
}

// String returns the string representation of AuditAction
func (a AuditAction) String() string {
	return string(a)
}

// AuditDetails is the structured detail payload of an audit event, stored as
// JSONB
type AuditDetails map[string]any

// Value implements driver.Valuer interface for GORM to store as JSONB
func (d AuditDetails) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (d *AuditDetails) Scan(value interface{}) error {
	if value == nil {
		*d = AuditDetails{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan AuditDetails: unsupported type")
	}

	if len(bytes) == 0 {
		*d = AuditDetails{}
		return nil
	}

	return json.Unmarshal(bytes, d)
}

// AuditEvent is one append-only record of a state-changing ledger operation.
// Written once in the same transaction as the mutation it describes, never
// updated or deleted afterwards.
type AuditEvent struct {
	shared.BaseEntity
	PropertyID uuid.UUID    `json:"property_id"`
	InvoiceID  uuid.UUID    `json:"invoice_id"`
	Action     AuditAction  `json:"action"`
	Details    AuditDetails `json:"details"`
	ActorID    uuid.UUID    `json:"actor_id"`
}

// NewAuditEvent creates a new audit event
func NewAuditEvent(propertyID, invoiceID uuid.UUID, action AuditAction, details AuditDetails, actorID uuid.UUID) (*AuditEvent, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Audit action is not valid")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if details == nil {
		details = AuditDetails{}
	}

	return &AuditEvent{
		BaseEntity: shared.NewBaseEntity(),
		PropertyID: propertyID,
		InvoiceID:  invoiceID,
		Action:     action,
		Details:    details,
		ActorID:    actorID,
	}, nil
}
