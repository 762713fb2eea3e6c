package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// Domain event types for the ledger bounded context
const (
	EventTypeInvoiceCreated      = "ledger.invoice.created"
	EventTypeInvoiceTotalChanged = "ledger.invoice.total_changed"
	EventTypeInvoiceVoided       = "ledger.invoice.voided"
	EventTypeInvoiceStatusMoved  = "ledger.invoice.status_moved"
	EventTypePaymentReceived     = "ledger.payment.received"
	EventTypePaymentApplied      = "ledger.payment.applied"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CompanyID     uuid.UUID       `json:"company_id"`
	Total         decimal.Decimal `json:"total"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", inv.ID, inv.PropertyID),
		InvoiceNumber:   inv.InvoiceNumber,
		CompanyID:       inv.CompanyID,
		Total:           inv.Total().Amount(),
	}
}

// InvoiceTotalChangedEvent is raised when an invoice total is adjusted
type InvoiceTotalChangedEvent struct {
	shared.BaseDomainEvent
	OldTotal decimal.Decimal `json:"old_total"`
	NewTotal decimal.Decimal `json:"new_total"`
}

// NewInvoiceTotalChangedEvent creates a new InvoiceTotalChangedEvent
func NewInvoiceTotalChangedEvent(inv *Invoice, oldTotal, newTotal valueobject.Money) *InvoiceTotalChangedEvent {
	return &InvoiceTotalChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceTotalChanged, "Invoice", inv.ID, inv.PropertyID),
		OldTotal:        oldTotal.Amount(),
		NewTotal:        newTotal.Amount(),
	}
}

// InvoiceVoidedEvent is raised when an invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Reason        string `json:"reason,omitempty"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice, reason string) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, "Invoice", inv.ID, inv.PropertyID),
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          reason,
	}
}

// InvoiceStatusMovedEvent is raised when a recompute flips the derived status
type InvoiceStatusMovedEvent struct {
	shared.BaseDomainEvent
	OldStatus InvoiceStatus `json:"old_status"`
	NewStatus InvoiceStatus `json:"new_status"`
}

// NewInvoiceStatusMovedEvent creates a new InvoiceStatusMovedEvent
func NewInvoiceStatusMovedEvent(inv *Invoice, oldStatus, newStatus InvoiceStatus) *InvoiceStatusMovedEvent {
	return &InvoiceStatusMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusMoved, "Invoice", inv.ID, inv.PropertyID),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// PaymentReceivedEvent is raised when a payment is recorded
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method"`
}

// NewPaymentReceivedEvent creates a new PaymentReceivedEvent
func NewPaymentReceivedEvent(p *Payment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReceived, "Payment", p.ID, p.PropertyID),
		Amount:          p.Amount.Amount(),
		Method:          p.Method,
	}
}

// PaymentAppliedEvent is raised when part of a payment is allocated to an
// invoice
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"applied_amount"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(inv *Invoice, paymentID uuid.UUID, amount valueobject.Money) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, "Invoice", inv.ID, inv.PropertyID),
		PaymentID:       paymentID,
		Amount:          amount.Amount(),
	}
}
