package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

// AgingBucket classifies an open invoice balance by how many days past its
// due date it is
type AgingBucket string

const (
	BucketCurrent  AgingBucket = "Current (0-30)"
	Bucket31To60   AgingBucket = "31-60"
	Bucket61To90   AgingBucket = "61-90"
	Bucket91Plus   AgingBucket = "91+"
	BucketPaidZero AgingBucket = "Paid/Zero" // Zero balance, excluded from aging totals
)

// BucketOrder is the stable display order of the aging buckets
var BucketOrder = []AgingBucket{BucketCurrent, Bucket31To60, Bucket61To90, Bucket91Plus}

// BucketFor returns the aging bucket for the given days past due. Invoices
// not yet due (negative days) are Current.
func BucketFor(daysPastDue int) AgingBucket {
	switch {
	case daysPastDue <= 30:
		return BucketCurrent
	case daysPastDue <= 60:
		return Bucket31To60
	case daysPastDue <= 90:
		return Bucket61To90
	default:
		return Bucket91Plus
	}
}

// ClassifyInvoice returns the bucket for a single invoice as of the given
// date. Zero-balance invoices classify as Paid/Zero regardless of age.
func ClassifyInvoice(inv *Invoice, asOf time.Time) AgingBucket {
	if inv.Balance.IsZero() {
		return BucketPaidZero
	}
	return BucketFor(inv.DaysPastDue(asOf))
}

// BucketRow is the aggregate for one aging bucket
type BucketRow struct {
	Bucket AgingBucket       `json:"bucket"`
	Count  int               `json:"count"`
	Total  valueobject.Money `json:"total"`
}

// AgingSummary is the result of Summarize: one row per bucket in stable
// order plus grand totals. Paid/Zero invoices are counted but excluded from
// the bucket rows and the grand total.
type AgingSummary struct {
	AsOf          time.Time         `json:"as_of"`
	Rows          []BucketRow       `json:"rows"`
	GrandTotal    valueobject.Money `json:"grand_total"`
	OpenCount     int               `json:"open_count"`
	PaidZeroCount int               `json:"paid_zero_count"`
}

// Summarize buckets the open balances of the given invoices as of the given
// date. Void invoices are skipped entirely. Pure and deterministic: same
// input always yields the same output.
func Summarize(invoices []*Invoice, asOf time.Time) AgingSummary {
	totals := make(map[AgingBucket]valueobject.Money, len(BucketOrder))
	counts := make(map[AgingBucket]int, len(BucketOrder))
	for _, b := range BucketOrder {
		totals[b] = valueobject.ZeroUSD()
	}

	summary := AgingSummary{AsOf: asOf, GrandTotal: valueobject.ZeroUSD()}

	for _, inv := range invoices {
		if inv.IsVoid() {
			continue
		}
		bucket := ClassifyInvoice(inv, asOf)
		if bucket == BucketPaidZero {
			summary.PaidZeroCount++
			continue
		}
		totals[bucket] = totals[bucket].MustAdd(inv.Balance)
		counts[bucket]++
		summary.GrandTotal = summary.GrandTotal.MustAdd(inv.Balance)
		summary.OpenCount++
	}

	summary.Rows = make([]BucketRow, 0, len(BucketOrder))
	for _, b := range BucketOrder {
		summary.Rows = append(summary.Rows, BucketRow{
			Bucket: b,
			Count:  counts[b],
			Total:  totals[b],
		})
	}

	return summary
}

// CompanyAging is one company's open balance spread across the four buckets
type CompanyAging struct {
	CompanyID   uuid.UUID         `json:"company_id"`
	CompanyName string            `json:"company_name"`
	Current     valueobject.Money `json:"current"`
	Days31To60  valueobject.Money `json:"days_31_60"`
	Days61To90  valueobject.Money `json:"days_61_90"`
	Days91Plus  valueobject.Money `json:"days_91_plus"`
	Total       valueobject.Money `json:"total"`
}

func newCompanyAging(companyID uuid.UUID, name string) *CompanyAging {
	zero := valueobject.ZeroUSD()
	return &CompanyAging{
		CompanyID:   companyID,
		CompanyName: name,
		Current:     zero,
		Days31To60:  zero,
		Days61To90:  zero,
		Days91Plus:  zero,
		Total:       zero,
	}
}

func (c *CompanyAging) add(bucket AgingBucket, amount valueobject.Money) {
	switch bucket {
	case BucketCurrent:
		c.Current = c.Current.MustAdd(amount)
	case Bucket31To60:
		c.Days31To60 = c.Days31To60.MustAdd(amount)
	case Bucket61To90:
		c.Days61To90 = c.Days61To90.MustAdd(amount)
	case Bucket91Plus:
		c.Days91Plus = c.Days91Plus.MustAdd(amount)
	}
	c.Total = c.Total.MustAdd(amount)
}

// BreakdownByCompany aggregates open balances per company across the four
// buckets, sorted descending by grand total, then by company name for ties.
// Void and zero-balance invoices contribute nothing.
func BreakdownByCompany(invoices []*Invoice, asOf time.Time) []CompanyAging {
	byCompany := make(map[uuid.UUID]*CompanyAging)

	for _, inv := range invoices {
		if inv.IsVoid() {
			continue
		}
		bucket := ClassifyInvoice(inv, asOf)
		if bucket == BucketPaidZero {
			continue
		}
		row, ok := byCompany[inv.CompanyID]
		if !ok {
			row = newCompanyAging(inv.CompanyID, inv.CompanyName)
			byCompany[inv.CompanyID] = row
		}
		row.add(bucket, inv.Balance)
	}

	result := make([]CompanyAging, 0, len(byCompany))
	for _, row := range byCompany {
		result = append(result, *row)
	}

	sort.Slice(result, func(i, j int) bool {
		cmp := result[i].Total.Amount().Cmp(result[j].Total.Amount())
		if cmp != 0 {
			return cmp > 0
		}
		return result[i].CompanyName < result[j].CompanyName
	})

	return result
}
