package onboarding

import (
	"github.com/shopspring/decimal"
	"github.com/souqly/backend/internal/domain/shared"
)

// Plan represents the subscription plan a vendor signs up for
type Plan string

const (
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// BillingCycle represents the billing duration of a subscription
type BillingCycle string

const (
	CycleMonthly    BillingCycle = "monthly"
	CycleQuarterly  BillingCycle = "quarterly"
	CycleSemiAnnual BillingCycle = "semi_annual"
	CycleAnnual     BillingCycle = "annual"
)

// ValidatePlan checks that the plan is one of the known plans
func ValidatePlan(plan Plan) error {
	switch plan {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return nil
	default:
		return shared.NewValidationError("Unknown subscription plan")
	}
}

// ValidateBillingCycle checks that the cycle is one of the known cycles
func ValidateBillingCycle(cycle BillingCycle) error {
	switch cycle {
	case CycleMonthly, CycleQuarterly, CycleSemiAnnual, CycleAnnual:
		return nil
	default:
		return shared.NewValidationError("Unknown billing cycle")
	}
}

// PriceTable maps a plan and billing cycle to a fixed-point price.
// Amounts are decimals, never floats: piaster-level differences matter.
type PriceTable map[Plan]map[BillingCycle]decimal.Decimal

// DefaultPriceTable returns the platform's published subscription prices in EGP
func DefaultPriceTable() PriceTable {
	return PriceTable{
		PlanStarter: {
			CycleMonthly:    decimal.RequireFromString("500.00"),
			CycleQuarterly:  decimal.RequireFromString("1350.00"),
			CycleSemiAnnual: decimal.RequireFromString("2550.00"),
			CycleAnnual:     decimal.RequireFromString("4800.00"),
		},
		PlanProfessional: {
			CycleMonthly:    decimal.RequireFromString("1200.00"),
			CycleQuarterly:  decimal.RequireFromString("3240.00"),
			CycleSemiAnnual: decimal.RequireFromString("6120.00"),
			CycleAnnual:     decimal.RequireFromString("11520.00"),
		},
		PlanEnterprise: {
			CycleMonthly:    decimal.RequireFromString("3000.00"),
			CycleQuarterly:  decimal.RequireFromString("8100.00"),
			CycleSemiAnnual: decimal.RequireFromString("15300.00"),
			CycleAnnual:     decimal.RequireFromString("28800.00"),
		},
	}
}

// ExpectedAmount returns the price for the plan and cycle
func (t PriceTable) ExpectedAmount(plan Plan, cycle BillingCycle) (decimal.Decimal, error) {
	cycles, ok := t[plan]
	if !ok {
		return decimal.Zero, shared.NewValidationError("Unknown subscription plan")
	}
	price, ok := cycles[cycle]
	if !ok {
		return decimal.Zero, shared.NewValidationError("Unknown billing cycle")
	}
	return price, nil
}
