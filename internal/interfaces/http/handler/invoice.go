package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/stayops/backend/internal/application/ledger"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService        *appledger.InvoiceService
	reconciliationService *appledger.ReconciliationService
	allocationService     *appledger.AllocationService
	auditService          *appledger.AuditService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	invoiceService *appledger.InvoiceService,
	reconciliationService *appledger.ReconciliationService,
	allocationService *appledger.AllocationService,
	auditService *appledger.AuditService,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:        invoiceService,
		reconciliationService: reconciliationService,
		allocationService:     allocationService,
		auditService:          auditService,
	}
}

// UpdateInvoiceTotalRequest represents a request to adjust an invoice total
type UpdateInvoiceTotalRequest struct {
	Total decimal.Decimal `json:"total" binding:"required"`
}

// VoidInvoiceRequest represents a request to void an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Create creates a new invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appledger.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// List returns a paginated list of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appledger.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Form binding cannot populate *uuid.UUID, parse it explicitly
	if raw := c.Query("company_id"); raw != "" {
		companyID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid company ID")
			return
		}
		filter.CompanyID = &companyID
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns a single invoice by ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete tombstones an invoice. Invoices with active allocations reject.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UpdateTotal adjusts an invoice's total and re-derives balance and status
func (h *InvoiceHandler) UpdateTotal(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req UpdateInvoiceTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliationService.UpdateTotal(c.Request.Context(), scope, id, req.Total)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Void voids an invoice, releasing its allocations back to their payments
func (h *InvoiceHandler) Void(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliationService.VoidInvoice(c.Request.Context(), scope, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListAllocations returns the active allocations of an invoice
func (h *InvoiceHandler) ListAllocations(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	allocations, err := h.allocationService.ListByInvoice(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, allocations)
}

// GetAudit returns the audit trail of an invoice, newest first
func (h *InvoiceHandler) GetAudit(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	events, err := h.auditService.GetInvoiceAudit(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

// RegisterRoutes registers all invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.DELETE("/:id", h.Delete)
		invoices.PUT("/:id/total", h.UpdateTotal)
		invoices.POST("/:id/void", h.Void)
		invoices.GET("/:id/allocations", h.ListAllocations)
		invoices.GET("/:id/audit", h.GetAudit)
	}
}
