package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayops/backend/internal/domain/shared/valueobject"
)

func TestNewAllocation(t *testing.T) {
	propertyID := uuid.New()

	t.Run("valid allocation", func(t *testing.T) {
		a, err := NewAllocation(propertyID, uuid.New(), uuid.New(), valueobject.NewMoneyUSDFromFloat(200))
		require.NoError(t, err)
		assert.Equal(t, "200.00", a.Amount.StringFixed(2))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		_, err := NewAllocation(propertyID, uuid.New(), uuid.New(), valueobject.ZeroUSD())
		assert.Error(t, err)
	})

	t.Run("missing payment rejected", func(t *testing.T) {
		_, err := NewAllocation(propertyID, uuid.Nil, uuid.New(), valueobject.NewMoneyUSDFromFloat(10))
		assert.Error(t, err)
	})

	t.Run("missing invoice rejected", func(t *testing.T) {
		_, err := NewAllocation(propertyID, uuid.New(), uuid.Nil, valueobject.NewMoneyUSDFromFloat(10))
		assert.Error(t, err)
	})
}

func TestSumAllocations(t *testing.T) {
	propertyID := uuid.New()
	a1, _ := NewAllocation(propertyID, uuid.New(), uuid.New(), valueobject.NewMoneyUSDFromFloat(200))
	a2, _ := NewAllocation(propertyID, uuid.New(), uuid.New(), valueobject.NewMoneyUSDFromFloat(300))

	sum := SumAllocations([]*Allocation{a1, a2})
	assert.Equal(t, "500.00", sum.StringFixed(2))

	assert.True(t, SumAllocations(nil).IsZero())
}
