package onboarding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceTable(t *testing.T) {
	table := DefaultPriceTable()

	t.Run("returns plan price for cycle", func(t *testing.T) {
		price, err := table.ExpectedAmount(PlanStarter, CycleMonthly)

		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.RequireFromString("500.00")))
	})

	t.Run("longer cycles are discounted against monthly", func(t *testing.T) {
		monthly, err := table.ExpectedAmount(PlanProfessional, CycleMonthly)
		require.NoError(t, err)
		annual, err := table.ExpectedAmount(PlanProfessional, CycleAnnual)
		require.NoError(t, err)

		assert.True(t, annual.LessThan(monthly.Mul(decimal.NewFromInt(12))))
	})

	t.Run("unknown plan fails", func(t *testing.T) {
		_, err := table.ExpectedAmount(Plan("gold"), CycleMonthly)
		assert.Error(t, err)
	})

	t.Run("unknown cycle fails", func(t *testing.T) {
		_, err := table.ExpectedAmount(PlanStarter, BillingCycle("weekly"))
		assert.Error(t, err)
	})
}
