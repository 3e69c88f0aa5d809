package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cosiris15/debt-review-sub000/engine"
)

// =============================================================================
// GENERAL DEBT - costs, then interest, then principal
// =============================================================================

func TestAllocate_GeneralDebt_InterestBeforePrincipal(t *testing.T) {
	// GIVEN: No costs, 5000 accrued interest, 100000 principal
	// WHEN: A 7000 payment arrives under general-debt offsetting
	// THEN: Interest is cleared first and 2000 reduces principal to 98000

	a := engine.Allocate(decimal.Zero, dec("5000"), dec("100000"), dec("7000"),
		engine.OffsetGeneralDebt)

	assert.True(t, a.ToCosts.IsZero())
	assert.True(t, a.ToInterest.Equal(dec("5000")))
	assert.True(t, a.ToPrincipal.Equal(dec("2000")))
	assert.True(t, a.Unapplied.IsZero())

	assert.True(t, a.RemainingInterest.IsZero())
	assert.True(t, a.RemainingPrincipal.Equal(dec("98000")))
}

func TestAllocate_GeneralDebt_CostsDrainFirst(t *testing.T) {
	// GIVEN: 300 costs, 500 interest, 10000 principal
	// WHEN: A 600 payment arrives
	// THEN: Costs are exhausted before any interest; principal is untouched

	a := engine.Allocate(dec("300"), dec("500"), dec("10000"), dec("600"),
		engine.OffsetGeneralDebt)

	assert.True(t, a.ToCosts.Equal(dec("300")))
	assert.True(t, a.ToInterest.Equal(dec("300")))
	assert.True(t, a.ToPrincipal.IsZero())
	assert.True(t, a.RemainingCosts.IsZero())
	assert.True(t, a.RemainingInterest.Equal(dec("200")))
	assert.True(t, a.RemainingPrincipal.Equal(dec("10000")))
}

func TestAllocate_PaymentSmallerThanFirstBucket(t *testing.T) {
	a := engine.Allocate(dec("300"), dec("500"), dec("10000"), dec("100"),
		engine.OffsetGeneralDebt)

	assert.True(t, a.ToCosts.Equal(dec("100")))
	assert.True(t, a.ToInterest.IsZero())
	assert.True(t, a.RemainingCosts.Equal(dec("200")))
}

// =============================================================================
// JUDGMENT DEBT - judgment amounts (costs, principal) first, interest last
// =============================================================================

func TestAllocate_JudgmentDebt_PrincipalBeforeInterest(t *testing.T) {
	// GIVEN: 300 costs, 500 delayed interest, 10000 judgment principal
	// WHEN: A 5000 payment arrives under judgment-debt offsetting
	// THEN: The judgment amounts absorb everything; no interest is touched

	a := engine.Allocate(dec("300"), dec("500"), dec("10000"), dec("5000"),
		engine.OffsetJudgmentDebt)

	assert.True(t, a.ToCosts.Equal(dec("300")))
	assert.True(t, a.ToPrincipal.Equal(dec("4700")))
	assert.True(t, a.ToInterest.IsZero())
	assert.True(t, a.RemainingPrincipal.Equal(dec("5300")))
	assert.True(t, a.RemainingInterest.Equal(dec("500")))
}

func TestAllocate_JudgmentDebt_RemainderReachesInterest(t *testing.T) {
	a := engine.Allocate(dec("300"), dec("500"), dec("10000"), dec("10500"),
		engine.OffsetJudgmentDebt)

	assert.True(t, a.ToCosts.Equal(dec("300")))
	assert.True(t, a.ToPrincipal.Equal(dec("10000")))
	assert.True(t, a.ToInterest.Equal(dec("200")))
	assert.True(t, a.RemainingInterest.Equal(dec("300")))
	assert.True(t, a.Unapplied.IsZero())
}

// =============================================================================
// EDGE BEHAVIOR
// =============================================================================

func TestAllocate_OverpaymentNeverGoesNegative(t *testing.T) {
	// Every bucket stops at zero; the excess is reported, not discarded.

	a := engine.Allocate(dec("100"), dec("200"), dec("300"), dec("1000"),
		engine.OffsetGeneralDebt)

	assert.True(t, a.RemainingCosts.IsZero())
	assert.True(t, a.RemainingInterest.IsZero())
	assert.True(t, a.RemainingPrincipal.IsZero())
	assert.True(t, a.Unapplied.Equal(dec("400")))
}

func TestAllocate_SplitConservation(t *testing.T) {
	// The split always sums back to the payment.

	a := engine.Allocate(dec("123.45"), dec("678.90"), dec("1000"), dec("1500"),
		engine.OffsetGeneralDebt)

	sum := a.ToCosts.Add(a.ToInterest).Add(a.ToPrincipal).Add(a.Unapplied)
	assert.True(t, sum.Equal(dec("1500")))
}
