package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayops/backend/internal/domain/ledger"
)

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CompanyID     uuid.UUID       `json:"company_id"`
	CompanyName   string          `json:"company_name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	CheckIn       time.Time       `json:"check_in"`
	CheckOut      time.Time       `json:"check_out"`
	Nights        int             `json:"nights"`
	RateNight     decimal.Decimal `json:"rate_night"`
	Notes         string          `json:"notes,omitempty"`
	VoidedAt      *time.Time      `json:"voided_at,omitempty"`
	VoidReason    string          `json:"void_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

func toInvoiceResponse(inv *ledger.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            inv.ID,
		PropertyID:    inv.PropertyID,
		InvoiceNumber: inv.InvoiceNumber,
		CompanyID:     inv.CompanyID,
		CompanyName:   inv.CompanyName,
		Subtotal:      inv.Subtotal.Amount(),
		Tax:           inv.Tax.Amount(),
		Total:         inv.Total().Amount(),
		Balance:       inv.Balance.Amount(),
		Status:        inv.Status.String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		CheckIn:       inv.CheckIn,
		CheckOut:      inv.CheckOut,
		Nights:        inv.Nights,
		RateNight:     inv.RateNight.Amount(),
		Notes:         inv.Notes,
		VoidedAt:      inv.VoidedAt,
		VoidReason:    inv.VoidReason,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	PropertyID   uuid.UUID       `json:"property_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	Reference    string          `json:"reference,omitempty"`
	ReceivedDate time.Time       `json:"received_date"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

func toPaymentResponse(p *ledger.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:           p.ID,
		PropertyID:   p.PropertyID,
		Amount:       p.Amount.Amount(),
		Method:       p.Method.String(),
		Reference:    p.Reference,
		ReceivedDate: p.ReceivedDate,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// AllocationResponse represents an allocation in API responses
type AllocationResponse struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAllocationResponse(a *ledger.Allocation) *AllocationResponse {
	return &AllocationResponse{
		ID:        a.ID,
		PaymentID: a.PaymentID,
		InvoiceID: a.InvoiceID,
		Amount:    a.Amount.Amount(),
		CreatedAt: a.CreatedAt,
	}
}

// AuditEventResponse represents an audit event in API responses
type AuditEventResponse struct {
	ID        uuid.UUID           `json:"id"`
	InvoiceID uuid.UUID           `json:"invoice_id"`
	Action    string              `json:"action"`
	Details   ledger.AuditDetails `json:"details"`
	ActorID   uuid.UUID           `json:"actor_id"`
	CreatedAt time.Time           `json:"created_at"`
}

func toAuditEventResponse(e *ledger.AuditEvent) *AuditEventResponse {
	return &AuditEventResponse{
		ID:        e.ID,
		InvoiceID: e.InvoiceID,
		Action:    e.Action.String(),
		Details:   e.Details,
		ActorID:   e.ActorID,
		CreatedAt: e.CreatedAt,
	}
}

// InvoiceAllocationResult is the per-invoice outcome of applying a payment
type InvoiceAllocationResult struct {
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	NewBalance decimal.Decimal `json:"new_balance"`
	NewStatus  string          `json:"new_status"`
}

// ReconciliationResult is the outcome of a reconciliation operation on one
// invoice
type ReconciliationResult struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
}
