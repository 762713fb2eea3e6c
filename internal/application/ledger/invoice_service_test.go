package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayops/backend/internal/domain/ledger"
)

func invoiceServiceFor(f *ledgerFixture) *InvoiceService {
	return NewInvoiceService(&memInvoiceRepo{f.store}, f.txScope, testLogger())
}

func createRequest(number string) CreateInvoiceRequest {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return CreateInvoiceRequest{
		InvoiceNumber: number,
		CompanyID:     uuid.New(),
		CompanyName:   "Acme Travel",
		Subtotal:      decimal.NewFromInt(450),
		Tax:           decimal.NewFromInt(50),
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		CheckIn:       issue.AddDate(0, 0, -4),
		CheckOut:      issue.AddDate(0, 0, -1),
		RateNight:     decimal.NewFromInt(150),
	}
}

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("creates open invoice with audit event", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)

		resp, err := svc.CreateInvoice(ctx, f.scope, createRequest("INV-1001"))
		require.NoError(t, err)
		assert.Equal(t, "open", resp.Status)
		assert.Equal(t, "500", resp.Total.String())
		assert.Equal(t, "500", resp.Balance.String())
		assert.Equal(t, 3, resp.Nights)

		events := f.store.auditsFor(resp.ID, ledger.AuditActionCreateInvoice)
		require.Len(t, events, 1)
		assert.Equal(t, "INV-1001", events[0].Details["invoice_number"])
		assert.Equal(t, f.scope.ActorID, events[0].ActorID)
	})

	t.Run("duplicate invoice number rejected", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)

		_, err := svc.CreateInvoice(ctx, f.scope, createRequest("INV-1001"))
		require.NoError(t, err)

		_, err = svc.CreateInvoice(ctx, f.scope, createRequest("INV-1001"))
		require.Error(t, err)
		assert.Equal(t, "ALREADY_EXISTS", domainCode(t, err))
	})

	t.Run("invalid input leaves no audit behind", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)

		req := createRequest("INV-1001")
		req.Subtotal = decimal.NewFromInt(-5)
		_, err := svc.CreateInvoice(ctx, f.scope, req)
		require.Error(t, err)
		assert.Empty(t, f.store.audits)
		assert.Empty(t, f.store.invoices)
	})
}

func TestDeleteInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("tombstones invoice without allocations", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)
		inv := f.seedInvoice(t, "INV-1", 500)

		require.NoError(t, svc.DeleteInvoice(ctx, f.scope, inv.ID))
		assert.NotContains(t, f.store.invoices, inv.ID)

		_, err := svc.GetInvoice(ctx, f.scope, inv.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})

	t.Run("invoice with allocations rejected", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)
		alloc := NewAllocationService(f.txScope, testLogger())
		inv := f.seedInvoice(t, "INV-1", 500)
		p := f.seedPayment(t, 200)

		_, err := alloc.ApplyPayment(ctx, f.scope, p.ID, []AllocationTarget{
			{InvoiceID: inv.ID, Amount: decimal.NewFromInt(200)},
		})
		require.NoError(t, err)

		err = svc.DeleteInvoice(ctx, f.scope, inv.ID)
		require.Error(t, err)
		assert.Equal(t, "HAS_ALLOCATIONS", domainCode(t, err))
		assert.Contains(t, f.store.invoices, inv.ID)
	})

	t.Run("tombstone conflict retried once then succeeds", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)
		inv := f.seedInvoice(t, "INV-1", 500)

		f.store.conflicts = 1
		require.NoError(t, svc.DeleteInvoice(ctx, f.scope, inv.ID))
		assert.NotContains(t, f.store.invoices, inv.ID)
	})

	t.Run("persistent tombstone conflict surfaces and keeps the invoice", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)
		inv := f.seedInvoice(t, "INV-1", 500)

		f.store.conflicts = 2
		err := svc.DeleteInvoice(ctx, f.scope, inv.ID)
		require.Error(t, err)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainCode(t, err))
		assert.Contains(t, f.store.invoices, inv.ID)
	})
}

func TestListInvoices(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by status", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)
		f.seedInvoice(t, "INV-1", 500)
		voided := f.seedInvoice(t, "INV-2", 300)
		require.NoError(t, f.store.invoices[voided.ID].Void(""))

		page, err := svc.ListInvoices(ctx, f.scope, InvoiceListFilter{Status: "open"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "INV-1", page.Items[0].InvoiceNumber)
	})

	t.Run("unknown status filter rejected", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)

		_, err := svc.ListInvoices(ctx, f.scope, InvoiceListFilter{Status: "overdue"})
		require.Error(t, err)
	})

	t.Run("restricted scope hides other invoices", func(t *testing.T) {
		f := setupFixture(t)
		svc := invoiceServiceFor(f)
		mine := f.seedInvoice(t, "INV-1", 500)
		f.seedInvoice(t, "INV-2", 300)

		restricted := f.scope.Restrict([]uuid.UUID{mine.ID})
		page, err := svc.ListInvoices(ctx, restricted, InvoiceListFilter{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, mine.ID, page.Items[0].ID)
	})
}
