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

// CreatePaymentRequest carries the input for recording a payment
type CreatePaymentRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Method       string          `json:"method" binding:"required,oneof=check ach card other"`
	Reference    string          `json:"reference" binding:"max=100"`
	ReceivedDate time.Time       `json:"received_date" binding:"required"`
	Notes        string          `json:"notes" binding:"max=2000"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	Search   string `form:"search"`
	Method   string `form:"method"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// PaymentDetailResponse is a payment plus its allocation state
type PaymentDetailResponse struct {
	PaymentResponse
	Allocated   decimal.Decimal      `json:"allocated"`
	Unallocated decimal.Decimal      `json:"unallocated"`
	Allocations []AllocationResponse `json:"allocations"`
}

// PaymentService provides payment lifecycle operations. Payments are
// created standalone; distributing them across invoices is the
// AllocationService's job.
type PaymentService struct {
	paymentRepo    ledger.PaymentRepository
	allocationRepo ledger.AllocationRepository
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo ledger.PaymentRepository, allocationRepo ledger.AllocationRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		allocationRepo: allocationRepo,
		logger:         logger,
	}
}

// CreatePayment records a new payment
func (s *PaymentService) CreatePayment(ctx context.Context, scope ledger.AccessScope, req CreatePaymentRequest) (*PaymentResponse, error) {
	payment, err := ledger.NewPayment(
		scope.PropertyID,
		valueobject.NewMoneyUSD(req.Amount),
		ledger.PaymentMethod(req.Method),
		req.Reference,
		req.ReceivedDate,
	)
	if err != nil {
		return nil, err
	}
	payment.SetCreatedBy(scope.ActorID)
	if req.Notes != "" {
		payment.Notes = req.Notes
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("method", payment.Method.String()),
		zap.String("actor_id", scope.ActorID.String()))

	return toPaymentResponse(payment), nil
}

// GetPayment gets a payment with its allocation state
func (s *PaymentService) GetPayment(ctx context.Context, scope ledger.AccessScope, id uuid.UUID) (*PaymentDetailResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, scope.PropertyID, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}

	allocations, err := s.allocationRepo.FindByPayment(ctx, scope.PropertyID, id)
	if err != nil {
		return nil, err
	}

	allocated := ledger.SumAllocations(allocations)
	detail := &PaymentDetailResponse{
		PaymentResponse: *toPaymentResponse(payment),
		Allocated:       allocated.Amount(),
		Unallocated:     payment.Unallocated(allocated).Amount(),
		Allocations:     make([]AllocationResponse, len(allocations)),
	}
	for i, a := range allocations {
		detail.Allocations[i] = *toAllocationResponse(a)
	}

	return detail, nil
}

// ListPayments lists payments with filtering and pagination
func (s *PaymentService) ListPayments(ctx context.Context, scope ledger.AccessScope, filter PaymentListFilter) (shared.Paginated[PaymentResponse], error) {
	domainFilter := ledger.PaymentFilter{
		Filter: shared.DefaultFilter(),
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Method != "" {
		method := ledger.PaymentMethod(filter.Method)
		if !method.IsValid() {
			return shared.Paginated[PaymentResponse]{}, shared.NewDomainError("INVALID_METHOD", "Unknown payment method filter")
		}
		domainFilter.Method = &method
	}

	page, err := s.paymentRepo.FindAll(ctx, scope.PropertyID, domainFilter)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}

	responses := make([]PaymentResponse, len(page.Items))
	for i, p := range page.Items {
		responses[i] = *toPaymentResponse(p)
	}

	return shared.Paginated[PaymentResponse]{
		Items:      responses,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}
