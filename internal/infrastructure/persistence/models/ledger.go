package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// money rebuilds a Money value from its stored amount and currency code.
// Rows written before the currency column existed fall back to the default.
func money(amount decimal.Decimal, currency string) valueobject.Money {
	c := valueobject.Currency(currency)
	if c == "" {
		c = valueobject.DefaultCurrency
	}
	m, err := valueobject.NewMoney(amount, c)
	if err != nil {
		return valueobject.NewMoneyUSD(amount)
	}
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	PropertyAggregateModel
	InvoiceNumber string               `gorm:"type:varchar(50);not null;index"`
	CompanyID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	CompanyName   string               `gorm:"type:varchar(200);not null"`
	Subtotal      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Tax           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Balance       decimal.Decimal      `gorm:"type:decimal(18,4);not null;index"`
	Currency      string               `gorm:"type:varchar(3);not null;default:'USD'"`
	Status        ledger.InvoiceStatus `gorm:"type:varchar(10);not null;default:'open';index"`
	IssueDate     time.Time            `gorm:"not null"`
	DueDate       time.Time            `gorm:"not null;index"`
	CheckIn       time.Time            `gorm:"not null"`
	CheckOut      time.Time            `gorm:"not null"`
	Nights        int                  `gorm:"not null"`
	RateNight     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Notes         string               `gorm:"type:text"`
	VoidedAt      *time.Time
	VoidReason    string         `gorm:"type:varchar(500)"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	inv := &ledger.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		CompanyID:     m.CompanyID,
		CompanyName:   m.CompanyName,
		Subtotal:      money(m.Subtotal, m.Currency),
		Tax:           money(m.Tax, m.Currency),
		Balance:       money(m.Balance, m.Currency),
		Status:        m.Status,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		CheckIn:       m.CheckIn,
		CheckOut:      m.CheckOut,
		Nights:        m.Nights,
		RateNight:     money(m.RateNight, m.Currency),
		Notes:         m.Notes,
		VoidedAt:      m.VoidedAt,
		VoidReason:    m.VoidReason,
	}
	m.PopulatePropertyAggregateRoot(&inv.PropertyAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.FromDomainPropertyAggregateRoot(inv.PropertyAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CompanyID = inv.CompanyID
	m.CompanyName = inv.CompanyName
	m.Subtotal = inv.Subtotal.Amount()
	m.Tax = inv.Tax.Amount()
	m.Balance = inv.Balance.Amount()
	m.Currency = string(inv.Subtotal.Currency())
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.CheckIn = inv.CheckIn
	m.CheckOut = inv.CheckOut
	m.Nights = inv.Nights
	m.RateNight = inv.RateNight.Amount()
	m.Notes = inv.Notes
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	PropertyAggregateModel
	Amount       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency     string               `gorm:"type:varchar(3);not null;default:'USD'"`
	Method       ledger.PaymentMethod `gorm:"type:varchar(10);not null;index"`
	Reference    string               `gorm:"type:varchar(100)"`
	ReceivedDate time.Time            `gorm:"not null;index"`
	Notes        string               `gorm:"type:text"`
	DeletedAt    gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	p := &ledger.Payment{
		Amount:       money(m.Amount, m.Currency),
		Method:       m.Method,
		Reference:    m.Reference,
		ReceivedDate: m.ReceivedDate,
		Notes:        m.Notes,
	}
	m.PopulatePropertyAggregateRoot(&p.PropertyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainPropertyAggregateRoot(p.PropertyAggregateRoot)
	m.Amount = p.Amount.Amount()
	m.Currency = string(p.Amount.Currency())
	m.Method = p.Method
	m.Reference = p.Reference
	m.ReceivedDate = p.ReceivedDate
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// AllocationModel is the persistence model for the Allocation join entity.
// Removing an allocation tombstones the row so the audit trail keeps a
// traceable record of every application that ever existed.
type AllocationModel struct {
	BaseModel
	PropertyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'USD'"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "allocations"
}

// ToDomain converts the persistence model to a domain Allocation entity.
func (m *AllocationModel) ToDomain() *ledger.Allocation {
	return &ledger.Allocation{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		PropertyID: m.PropertyID,
		PaymentID:  m.PaymentID,
		InvoiceID:  m.InvoiceID,
		Amount:     money(m.Amount, m.Currency),
	}
}

// FromDomain populates the persistence model from a domain Allocation entity.
func (m *AllocationModel) FromDomain(a *ledger.Allocation) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.PropertyID = a.PropertyID
	m.PaymentID = a.PaymentID
	m.InvoiceID = a.InvoiceID
	m.Amount = a.Amount.Amount()
	m.Currency = string(a.Amount.Currency())
}

// AllocationModelFromDomain creates a new persistence model from a domain Allocation.
func AllocationModelFromDomain(a *ledger.Allocation) *AllocationModel {
	m := &AllocationModel{}
	m.FromDomain(a)
	return m
}

// InvoiceAuditModel is the persistence model for invoice audit events.
// Append-only: there is no soft delete column because rows are never removed.
type InvoiceAuditModel struct {
	BaseModel
	PropertyID uuid.UUID           `gorm:"type:uuid;not null;index"`
	InvoiceID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Action     ledger.AuditAction  `gorm:"type:varchar(30);not null;index"`
	Details    ledger.AuditDetails `gorm:"type:jsonb;default:'{}'"`
	ActorID    uuid.UUID           `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (InvoiceAuditModel) TableName() string {
	return "invoice_audit_events"
}

// ToDomain converts the persistence model to a domain AuditEvent entity.
func (m *InvoiceAuditModel) ToDomain() *ledger.AuditEvent {
	return &ledger.AuditEvent{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		PropertyID: m.PropertyID,
		InvoiceID:  m.InvoiceID,
		Action:     m.Action,
		Details:    m.Details,
		ActorID:    m.ActorID,
	}
}

// FromDomain populates the persistence model from a domain AuditEvent entity.
func (m *InvoiceAuditModel) FromDomain(e *ledger.AuditEvent) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.PropertyID = e.PropertyID
	m.InvoiceID = e.InvoiceID
	m.Action = e.Action
	m.Details = e.Details
	m.ActorID = e.ActorID
}

// InvoiceAuditModelFromDomain creates a new persistence model from a domain AuditEvent.
func InvoiceAuditModelFromDomain(e *ledger.AuditEvent) *InvoiceAuditModel {
	m := &InvoiceAuditModel{}
	m.FromDomain(e)
	return m
}
