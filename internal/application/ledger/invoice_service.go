package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// CreateInvoiceRequest carries the input for creating an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required,max=50"`
	CompanyID     uuid.UUID       `json:"company_id" binding:"required"`
	CompanyName   string          `json:"company_name" binding:"required,max=200"`
	Subtotal      decimal.Decimal `json:"subtotal" binding:"required"`
	Tax           decimal.Decimal `json:"tax"`
	IssueDate     time.Time       `json:"issue_date" binding:"required"`
	DueDate       time.Time       `json:"due_date" binding:"required"`
	CheckIn       time.Time       `json:"check_in" binding:"required"`
	CheckOut      time.Time       `json:"check_out" binding:"required"`
	RateNight     decimal.Decimal `json:"rate_night"`
	Notes         string          `json:"notes" binding:"max=2000"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status"`
	CompanyID *uuid.UUID `form:"company_id"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// InvoiceService provides invoice lifecycle operations outside the
// allocation and reconciliation engines: create, read, list and tombstone.
type InvoiceService struct {
	invoiceRepo ledger.InvoiceRepository
	txScope     TransactionScope
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo ledger.InvoiceRepository, txScope TransactionScope, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// CreateInvoice creates a new open invoice and writes its create_invoice
// audit event in the same transaction
func (s *InvoiceService) CreateInvoice(ctx context.Context, scope ledger.AccessScope, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	var response *InvoiceResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		taken, err := repos.InvoiceRepo().ExistsByNumber(ctx, scope.PropertyID, req.InvoiceNumber)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDomainError("ALREADY_EXISTS", "Invoice number is already in use")
		}

		invoice, err := ledger.NewInvoice(
			scope.PropertyID,
			req.InvoiceNumber,
			req.CompanyID,
			req.CompanyName,
			valueobject.NewMoneyUSD(req.Subtotal),
			valueobject.NewMoneyUSD(req.Tax),
			req.IssueDate,
			req.DueDate,
			req.CheckIn,
			req.CheckOut,
			valueobject.NewMoneyUSD(req.RateNight),
		)
		if err != nil {
			return err
		}
		invoice.SetCreatedBy(scope.ActorID)
		if req.Notes != "" {
			invoice.Notes = req.Notes
		}

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}

		createdEvent, err := ledger.NewAuditEvent(scope.PropertyID, invoice.ID, ledger.AuditActionCreateInvoice, ledger.AuditDetails{
			"invoice_number": invoice.InvoiceNumber,
			"total":          invoice.Total().StringFixed(2),
		}, scope.ActorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, createdEvent); err != nil {
			return err
		}

		response = toInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", response.ID.String()),
		zap.String("invoice_number", response.InvoiceNumber),
		zap.String("actor_id", scope.ActorID.String()))

	return response, nil
}

// GetInvoice gets an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, scope ledger.AccessScope, id uuid.UUID) (*InvoiceResponse, error) {
	if err := scope.RequireInvoice(id); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, scope.PropertyID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices with filtering and pagination. A restricted
// scope only sees its own invoices.
func (s *InvoiceService) ListInvoices(ctx context.Context, scope ledger.AccessScope, filter InvoiceListFilter) (shared.Paginated[InvoiceResponse], error) {
	domainFilter := ledger.InvoiceFilter{
		Filter: shared.DefaultFilter(),
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	domainFilter.CompanyID = filter.CompanyID
	if filter.Status != "" {
		status := ledger.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return shared.Paginated[InvoiceResponse]{}, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status filter")
		}
		domainFilter.Status = &status
	}

	page, err := s.invoiceRepo.FindAll(ctx, scope.PropertyID, domainFilter)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}

	responses := make([]InvoiceResponse, 0, len(page.Items))
	for _, inv := range page.Items {
		if !scope.CanAccessInvoice(inv.ID) {
			continue
		}
		responses = append(responses, *toInvoiceResponse(inv))
	}

	return shared.Paginated[InvoiceResponse]{
		Items:      responses,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// DeleteInvoice tombstones an invoice. An invoice with active allocations
// rejects with HAS_ALLOCATIONS, mirroring the payment delete guard.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, scope ledger.AccessScope, id uuid.UUID) error {
	if err := scope.RequireInvoice(id); err != nil {
		return err
	}

	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			invoice, err := repos.InvoiceRepo().FindByID(ctx, scope.PropertyID, id)
			if err != nil {
				return err
			}
			if invoice == nil {
				return shared.NewDomainError("NOT_FOUND", "Invoice not found")
			}

			allocations, err := repos.AllocationRepo().FindByInvoice(ctx, scope.PropertyID, id)
			if err != nil {
				return err
			}
			if len(allocations) > 0 {
				return ledger.ErrInvoiceHasAllocations
			}

			// Version-guarded tombstone: a payment applied between the
			// check above and the delete bumps the version and turns
			// this into a conflict instead of an orphaned allocation.
			return repos.InvoiceRepo().SoftDelete(ctx, invoice)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("invoice deleted",
		zap.String("invoice_id", id.String()),
		zap.String("actor_id", scope.ActorID.String()))

	return nil
}
