package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appledger "github.com/stayops/backend/internal/application/ledger"
)

// ReportHandler handles aging and audit report API endpoints
type ReportHandler struct {
	BaseHandler
	agingService *appledger.AgingService
	auditService *appledger.AuditService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(agingService *appledger.AgingService, auditService *appledger.AuditService) *ReportHandler {
	return &ReportHandler{
		agingService: agingService,
		auditService: auditService,
	}
}

// parseAsOf reads the optional as_of query parameter. Absent means now.
func parseAsOf(c *gin.Context) (*time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return nil, nil
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Accept a bare date too since that is what back-office tooling sends
		asOf, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
	}
	return &asOf, nil
}

// Aging returns the receivables aging summary bucketed by days overdue
func (h *ReportHandler) Aging(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	asOf, err := parseAsOf(c)
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected RFC 3339 or YYYY-MM-DD")
		return
	}

	summary, err := h.agingService.Summary(c.Request.Context(), scope, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// AgingByCompany returns the aging summary broken down per company
func (h *ReportHandler) AgingByCompany(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	asOf, err := parseAsOf(c)
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected RFC 3339 or YYYY-MM-DD")
		return
	}

	breakdown, err := h.agingService.CompanyBreakdown(c.Request.Context(), scope, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, breakdown)
}

// AuditSummary returns event counts per audit action for the property
func (h *ReportHandler) AuditSummary(c *gin.Context) {
	scope, err := getAccessScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summary, err := h.auditService.GetActionSummary(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/aging", h.Aging)
		reports.GET("/aging/companies", h.AgingByCompany)
		reports.GET("/audit-summary", h.AuditSummary)
	}
}
