package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayops/backend/internal/domain/ledger"
	"github.com/stayops/backend/internal/domain/shared"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// memStore is an in-memory stand-in for the ledger tables. Repositories
// hand out clones so service code never mutates stored state except through
// Save, mimicking a real data store.
type memStore struct {
	invoices    map[uuid.UUID]*ledger.Invoice
	payments    map[uuid.UUID]*ledger.Payment
	allocations map[uuid.UUID]*ledger.Allocation
	audits      []*ledger.AuditEvent

	// conflicts > 0 makes the next version-guarded writes (SaveWithLock
	// and the lock-checked deletes) fail with CONCURRENCY_CONFLICT, one
	// per call.
	conflicts int

	// auditErr, when set, makes every audit append fail with it.
	auditErr error
}

func newMemStore() *memStore {
	return &memStore{
		invoices:    make(map[uuid.UUID]*ledger.Invoice),
		payments:    make(map[uuid.UUID]*ledger.Payment),
		allocations: make(map[uuid.UUID]*ledger.Allocation),
	}
}

func (m *memStore) snapshot() *memStore {
	s := newMemStore()
	for k, v := range m.invoices {
		s.invoices[k] = v
	}
	for k, v := range m.payments {
		s.payments[k] = v
	}
	for k, v := range m.allocations {
		s.allocations[k] = v
	}
	s.audits = append([]*ledger.AuditEvent(nil), m.audits...)
	return s
}

func (m *memStore) restore(s *memStore) {
	m.invoices = s.invoices
	m.payments = s.payments
	m.allocations = s.allocations
	m.audits = s.audits
}

func (m *memStore) putInvoice(inv *ledger.Invoice) {
	clone := *inv
	m.invoices[inv.ID] = &clone
}

func (m *memStore) putPayment(p *ledger.Payment) {
	clone := *p
	m.payments[p.ID] = &clone
}

// memScope implements TransactionScope with snapshot rollback so the
// atomicity tests observe real all-or-nothing behavior.
type memScope struct {
	store *memStore
}

func (s *memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	before := s.store.snapshot()
	if err := fn(s); err != nil {
		s.store.restore(before)
		return err
	}
	return nil
}

func (s *memScope) InvoiceRepo() ledger.InvoiceRepository       { return &memInvoiceRepo{s.store} }
func (s *memScope) PaymentRepo() ledger.PaymentRepository       { return &memPaymentRepo{s.store} }
func (s *memScope) AllocationRepo() ledger.AllocationRepository { return &memAllocationRepo{s.store} }
func (s *memScope) AuditRepo() ledger.AuditRepository           { return &memAuditRepo{s.store} }

var _ TransactionScope = (*memScope)(nil)
var _ TransactionalRepositories = (*memScope)(nil)

type memInvoiceRepo struct{ store *memStore }

func (r *memInvoiceRepo) FindByID(_ context.Context, propertyID, id uuid.UUID) (*ledger.Invoice, error) {
	inv, ok := r.store.invoices[id]
	if !ok || inv.PropertyID != propertyID {
		return nil, nil
	}
	clone := *inv
	return &clone, nil
}

func (r *memInvoiceRepo) FindByIDs(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) ([]*ledger.Invoice, error) {
	result := make([]*ledger.Invoice, 0, len(ids))
	for _, id := range ids {
		inv, err := r.FindByID(ctx, propertyID, id)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			result = append(result, inv)
		}
	}
	return result, nil
}

func (r *memInvoiceRepo) FindAll(_ context.Context, propertyID uuid.UUID, filter ledger.InvoiceFilter) (shared.Paginated[*ledger.Invoice], error) {
	var items []*ledger.Invoice
	for _, inv := range r.store.invoices {
		if inv.PropertyID != propertyID {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		if filter.CompanyID != nil && inv.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Search != "" && !strings.Contains(inv.InvoiceNumber, filter.Search) {
			continue
		}
		clone := *inv
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].InvoiceNumber < items[j].InvoiceNumber
	})
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *memInvoiceRepo) FindForAging(_ context.Context, propertyID uuid.UUID) ([]*ledger.Invoice, error) {
	var items []*ledger.Invoice
	for _, inv := range r.store.invoices {
		if inv.PropertyID != propertyID || inv.IsVoid() {
			continue
		}
		clone := *inv
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].InvoiceNumber < items[j].InvoiceNumber
	})
	return items, nil
}

func (r *memInvoiceRepo) ExistsByNumber(_ context.Context, propertyID uuid.UUID, number string) (bool, error) {
	for _, inv := range r.store.invoices {
		if inv.PropertyID == propertyID && inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *ledger.Invoice) error {
	r.store.putInvoice(invoice)
	return nil
}

func (r *memInvoiceRepo) SaveWithLock(_ context.Context, invoice *ledger.Invoice) error {
	if r.store.conflicts > 0 {
		r.store.conflicts--
		return shared.ErrConcurrencyConflict
	}
	r.store.putInvoice(invoice)
	return nil
}

func (r *memInvoiceRepo) SoftDelete(_ context.Context, invoice *ledger.Invoice) error {
	if r.store.conflicts > 0 {
		r.store.conflicts--
		return shared.ErrConcurrencyConflict
	}
	stored, ok := r.store.invoices[invoice.ID]
	if !ok || stored.PropertyID != invoice.PropertyID || stored.Version != invoice.Version {
		return shared.ErrConcurrencyConflict
	}
	delete(r.store.invoices, invoice.ID)
	return nil
}

type memPaymentRepo struct{ store *memStore }

func (r *memPaymentRepo) FindByID(_ context.Context, propertyID, id uuid.UUID) (*ledger.Payment, error) {
	p, ok := r.store.payments[id]
	if !ok || p.PropertyID != propertyID {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *memPaymentRepo) FindAll(_ context.Context, propertyID uuid.UUID, filter ledger.PaymentFilter) (shared.Paginated[*ledger.Payment], error) {
	var items []*ledger.Payment
	for _, p := range r.store.payments {
		if p.PropertyID != propertyID {
			continue
		}
		if filter.Method != nil && p.Method != *filter.Method {
			continue
		}
		clone := *p
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Reference < items[j].Reference
	})
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *ledger.Payment) error {
	r.store.putPayment(payment)
	return nil
}

func (r *memPaymentRepo) SaveWithLock(_ context.Context, payment *ledger.Payment) error {
	if r.store.conflicts > 0 {
		r.store.conflicts--
		return shared.ErrConcurrencyConflict
	}
	r.store.putPayment(payment)
	return nil
}

func (r *memPaymentRepo) Delete(_ context.Context, payment *ledger.Payment) error {
	if r.store.conflicts > 0 {
		r.store.conflicts--
		return shared.ErrConcurrencyConflict
	}
	stored, ok := r.store.payments[payment.ID]
	if !ok || stored.PropertyID != payment.PropertyID || stored.Version != payment.Version {
		return shared.ErrConcurrencyConflict
	}
	delete(r.store.payments, payment.ID)
	return nil
}

type memAllocationRepo struct{ store *memStore }

func (r *memAllocationRepo) FindByID(_ context.Context, propertyID, id uuid.UUID) (*ledger.Allocation, error) {
	a, ok := r.store.allocations[id]
	if !ok || a.PropertyID != propertyID {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

func (r *memAllocationRepo) FindByInvoice(_ context.Context, propertyID, invoiceID uuid.UUID) ([]*ledger.Allocation, error) {
	var items []*ledger.Allocation
	for _, a := range r.store.allocations {
		if a.PropertyID == propertyID && a.InvoiceID == invoiceID {
			clone := *a
			items = append(items, &clone)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *memAllocationRepo) FindByPayment(_ context.Context, propertyID, paymentID uuid.UUID) ([]*ledger.Allocation, error) {
	var items []*ledger.Allocation
	for _, a := range r.store.allocations {
		if a.PropertyID == propertyID && a.PaymentID == paymentID {
			clone := *a
			items = append(items, &clone)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *memAllocationRepo) SumByInvoice(ctx context.Context, propertyID, invoiceID uuid.UUID) (valueobject.Money, error) {
	items, _ := r.FindByInvoice(ctx, propertyID, invoiceID)
	return ledger.SumAllocations(items), nil
}

func (r *memAllocationRepo) SumByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) (valueobject.Money, error) {
	items, _ := r.FindByPayment(ctx, propertyID, paymentID)
	return ledger.SumAllocations(items), nil
}

func (r *memAllocationRepo) CountByPayment(ctx context.Context, propertyID, paymentID uuid.UUID) (int64, error) {
	items, _ := r.FindByPayment(ctx, propertyID, paymentID)
	return int64(len(items)), nil
}

func (r *memAllocationRepo) Create(_ context.Context, allocation *ledger.Allocation) error {
	clone := *allocation
	r.store.allocations[allocation.ID] = &clone
	return nil
}

func (r *memAllocationRepo) SoftDelete(_ context.Context, propertyID, id uuid.UUID) error {
	a, ok := r.store.allocations[id]
	if !ok || a.PropertyID != propertyID {
		return shared.ErrNotFound
	}
	delete(r.store.allocations, id)
	return nil
}

func (r *memAllocationRepo) SoftDeleteByInvoice(_ context.Context, propertyID, invoiceID uuid.UUID) (int64, error) {
	var removed int64
	for id, a := range r.store.allocations {
		if a.PropertyID == propertyID && a.InvoiceID == invoiceID {
			delete(r.store.allocations, id)
			removed++
		}
	}
	return removed, nil
}

type memAuditRepo struct{ store *memStore }

func (r *memAuditRepo) Append(_ context.Context, event *ledger.AuditEvent) error {
	if r.store.auditErr != nil {
		return r.store.auditErr
	}
	clone := *event
	r.store.audits = append(r.store.audits, &clone)
	return nil
}

func (r *memAuditRepo) FindByInvoice(_ context.Context, propertyID, invoiceID uuid.UUID) ([]*ledger.AuditEvent, error) {
	var items []*ledger.AuditEvent
	for i := len(r.store.audits) - 1; i >= 0; i-- {
		e := r.store.audits[i]
		if e.PropertyID == propertyID && e.InvoiceID == invoiceID {
			clone := *e
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (r *memAuditRepo) CountByAction(_ context.Context, propertyID uuid.UUID) (map[ledger.AuditAction]int64, error) {
	counts := make(map[ledger.AuditAction]int64)
	for _, e := range r.store.audits {
		if e.PropertyID == propertyID {
			counts[e.Action]++
		}
	}
	return counts, nil
}

// auditsFor filters the raw audit log by invoice and action, oldest first
func (m *memStore) auditsFor(invoiceID uuid.UUID, action ledger.AuditAction) []*ledger.AuditEvent {
	var items []*ledger.AuditEvent
	for _, e := range m.audits {
		if e.InvoiceID == invoiceID && e.Action == action {
			items = append(items, e)
		}
	}
	return items
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
