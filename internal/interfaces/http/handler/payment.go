package handler

import (
	"github.com/gin-gonic/gin"

	appledger "github.com/stayops/backend/internal/application/ledger"
)

// PaymentHandler handles payment and allocation API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService        *appledger.PaymentService
	allocationService     *appledger.AllocationService
	reconciliationService *appledger.ReconciliationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	paymentService *appledger.PaymentService,
	allocationService *appledger.AllocationService,
	reconciliationService *appledger.ReconciliationService,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService:        paymentService,
		allocationService:     allocationService,
		reconciliationService: reconciliationService,
	}
}

// ApplyPaymentRequest represents a request to apply a payment across invoices
type ApplyPaymentRequest struct {
	Targets []appledger.AllocationTarget `json:"targets" binding:"required,min=1"`
}

// Create records a new payment
func (h *PaymentHandler) Create(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appledger.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// List returns a paginated list of payments
func (h *PaymentHandler) List(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appledger.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.ListPayments(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns a payment with its allocation state
func (h *PaymentHandler) Get(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Delete tombstones a payment. Payments with active allocations reject
// with HAS_ALLOCATIONS.
func (h *PaymentHandler) Delete(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.reconciliationService.DeletePayment(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Apply distributes a payment across one or more invoices atomically
func (h *PaymentHandler) Apply(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	results, err := h.allocationService.ApplyPayment(c.Request.Context(), scope, id, req.Targets)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// RemoveAllocation removes a single allocation and re-derives the invoice
func (h *PaymentHandler) RemoveAllocation(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID")
		return
	}

	result, err := h.allocationService.RemoveAllocation(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all payment and allocation routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Create)
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.DELETE("/:id", h.Delete)
		payments.POST("/:id/apply", h.Apply)
	}

	allocations := rg.Group("/allocations")
	{
		allocations.DELETE("/:id", h.RemoveAllocation)
	}
}
