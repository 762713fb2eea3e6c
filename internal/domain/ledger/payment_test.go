package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

func newTestPayment(t *testing.T, amount float64) *Payment {
	t.Helper()
	p, err := NewPayment(
		uuid.New(),
		valueobject.NewMoneyUSDFromFloat(amount),
		PaymentMethodCheck,
		"CHK-4412",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("valid payment", func(t *testing.T) {
		p := newTestPayment(t, 500)
		assert.Equal(t, PaymentMethodCheck, p.Method)
		assert.Equal(t, "CHK-4412", p.Reference)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	tests := []struct {
		name   string
		amount float64
		method PaymentMethod
	}{
		{"zero amount", 0, PaymentMethodCard},
		{"negative amount", -50, PaymentMethodCard},
		{"unknown method", 100, PaymentMethod("wire")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(
				uuid.New(),
				valueobject.NewMoneyUSDFromFloat(tt.amount),
				tt.method,
				"",
				time.Now(),
			)
			assert.Error(t, err)
		})
	}
}

func TestPaymentUnallocated(t *testing.T) {
	p := newTestPayment(t, 500)

	remaining := p.Unallocated(valueobject.NewMoneyUSDFromFloat(200))
	assert.Equal(t, "300.00", remaining.StringFixed(2))

	remaining = p.Unallocated(valueobject.NewMoneyUSDFromFloat(600))
	assert.True(t, remaining.IsZero())
}

func TestPaymentCanAllocate(t *testing.T) {
	p := newTestPayment(t, 500)
	allocated := valueobject.NewMoneyUSDFromFloat(200)

	assert.True(t, p.CanAllocate(allocated, valueobject.NewMoneyUSDFromFloat(300)))
	assert.False(t, p.CanAllocate(allocated, valueobject.NewMoneyUSDFromFloat(300.01)))
}
