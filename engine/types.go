/*
Package engine computes interest on bankruptcy debt claims.

PURPOSE:
  This package contains the deterministic calculation core: benchmark rate
  lookup, day-count handling, period segmentation across rate changes and
  partial payments, the five calculation modes, payment offsetting, rate
  capping and audit-trail rendering. Given the same request it always
  produces the same numbers, segment by segment, exactly as a reviewer
  would compute them by hand.

KEY CONCEPTS IN THIS FILE (types.go):
  - Mode: Which of the five algorithms applies
  - Term: Benchmark rate tenor (one-year vs. five-year-plus)
  - DayBasis / BasisContext: 360 vs. 365 day-count resolution
  - Payment / OffsetPolicy: Partial repayments and their bucket order
  - Period / PeriodResult: One homogeneous accrual segment and its interest
  - CalculationResult: The complete, reviewable outcome of one request

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal throughout; rounding happens exactly once,
     on the final total. Per-period figures keep full precision.
  2. Immutability: Periods and results are never mutated after construction.
  3. All-or-nothing: A request either validates and produces a complete
     result or fails before any computation starts.
  4. Explicit dependencies: The rate table is passed in, never a hidden
     global, so tests can substitute fixtures.

SEE ALSO:
  - request.go: Request variants and boundary validation
  - calc.go: The mode dispatcher
  - audit.go: Human-reviewable row rendering
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MODE - The five calculation algorithms
// =============================================================================

type Mode string

const (
	ModeSimple   Mode = "simple"   // Fixed caller-supplied annual rate
	ModeFloating Mode = "floating" // Benchmark (LPR) rate times a multiplier
	ModeDelayed  Mode = "delayed"  // Statutory delayed-performance daily rate
	ModeCompound Mode = "compound" // Cycle-end capitalization of accrued interest
	ModePenalty  Mode = "penalty"  // Simple or floating basis, always cap-checked
)

// DelayedDailyRate is the statutory delayed-performance rate: 0.0175% per
// day of the judgment-debt amount, regardless of any contractual rate.
var DelayedDailyRate = decimal.New(175, -6) // 0.000175

// =============================================================================
// TERM - Benchmark rate tenor
// =============================================================================

type Term string

const (
	TermShort Term = "short" // one-year benchmark (LPR 1Y)
	TermLong  Term = "long"  // five-year-plus benchmark (LPR 5Y+)
)

// =============================================================================
// DAY-COUNT BASIS - 360 vs 365, with explicit context-driven defaulting
// =============================================================================

// DayBasis is the assumed number of days per year when converting an annual
// rate to a daily rate. Only 360 and 365 are legally recognized here.
type DayBasis int

const (
	Basis360 DayBasis = 360
	Basis365 DayBasis = 365
)

// BasisContext selects the default day basis when the caller does not supply
// one explicitly. The same mode is used in both contexts, so the context is
// always a caller decision and never inferred from the mode.
type BasisContext string

const (
	// ContextLending: financial-institution / lending conventions (360).
	ContextLending BasisContext = "lending"

	// ContextJudicial: judicially-determined or contractual-penalty
	// conventions (365).
	ContextJudicial BasisContext = "judicial"
)

// =============================================================================
// COMPOUNDING CYCLE - When compound mode capitalizes
// =============================================================================

type CompoundingCycle string

const (
	CycleMonthEnd   CompoundingCycle = "month_end"
	CycleQuarterEnd CompoundingCycle = "quarter_end"
	CycleYearEnd    CompoundingCycle = "year_end"
)

// =============================================================================
// PAYMENTS - Partial repayments during the accrual range
// =============================================================================

// Payment is a repayment received on a given day. It takes effect on the
// following day: interest still accrues on the pre-payment principal for the
// payment day itself.
type Payment struct {
	Date   Date
	Amount decimal.Decimal
}

// OffsetPolicy determines the bucket order when a payment is applied.
type OffsetPolicy string

const (
	// OffsetGeneralDebt: costs first, then interest, then principal, each
	// bucket exhausted fully before the next.
	OffsetGeneralDebt OffsetPolicy = "general"

	// OffsetJudgmentDebt: the judgment-determined amounts first (costs, then
	// principal, in the order the judgment lists them), and only any
	// remainder against accrued delayed-performance interest.
	OffsetJudgmentDebt OffsetPolicy = "judgment"
)

// =============================================================================
// RATE TABLE ENTRY - One historical benchmark publication
// =============================================================================

// RateEntry is a single published benchmark rate. It is in force from its
// effective date up to, but not including, the next entry for the same term.
type RateEntry struct {
	Term              Term
	EffectiveDate     Date
	AnnualRatePercent decimal.Decimal
}

// =============================================================================
// PERIOD - One homogeneous accrual segment
// =============================================================================

// Period is a sub-range of the request over which the principal base and the
// applicable rate are both constant. Consecutive periods are contiguous and
// non-overlapping and cover the request range exactly once.
type Period struct {
	Start Date
	End   Date

	// Days is inclusive of both endpoints: Start == End means one day.
	Days int

	// PrincipalBase is the running principal after all payments applied
	// strictly before Start.
	PrincipalBase decimal.Decimal

	// AnnualRatePercent is the effective annual rate for this period
	// (benchmark times multiplier for floating bases). Zero for delayed
	// mode, which uses a fixed daily rate.
	AnnualRatePercent decimal.Decimal

	// DailyRate is the decimal daily rate actually multiplied in.
	DailyRate decimal.Decimal
}

// PeriodResult is a Period plus its computed contribution.
type PeriodResult struct {
	Period

	// SubInterest keeps full decimal precision; only the result total is
	// ever rounded.
	SubInterest decimal.Decimal

	// Formula is the exact human-checkable arithmetic for this period.
	Formula string

	// Capitalized marks compound-mode periods whose accrued interest was
	// folded into the principal at End.
	Capitalized bool
}

// =============================================================================
// PAYMENT ALLOCATION RECORD - How each payment was split
// =============================================================================

// AllocationRecord documents one payment's split across buckets, so a
// reviewer can reconstruct every principal-base change in the audit trail.
type AllocationRecord struct {
	Date        Date
	Payment     decimal.Decimal
	ToCosts     decimal.Decimal
	ToInterest  decimal.Decimal
	ToPrincipal decimal.Decimal
	Unapplied   decimal.Decimal
}

// =============================================================================
// WARNINGS - Non-fatal findings attached to a successful result
// =============================================================================

type WarningCode string

const (
	// WarnUnappliedRemainder: a payment exceeded every outstanding bucket.
	// The computation proceeds; the caller should investigate an overpayment.
	WarnUnappliedRemainder WarningCode = "unapplied_remainder"
)

type Warning struct {
	Code    WarningCode
	Message string
	Date    Date
	Amount  decimal.Decimal
}

// =============================================================================
// CALCULATION RESULT
// =============================================================================

// CalculationResult is the complete outcome of one request. TotalInterest is
// the only rounded figure; Periods retain full precision so that
// TotalInterest always equals the rounded sum of SubInterest values.
type CalculationResult struct {
	Mode      Mode
	Principal decimal.Decimal
	Start     Date
	End       Date

	// TotalInterest is rounded to 2 decimal places (currency precision).
	TotalInterest decimal.Decimal

	Periods []PeriodResult

	// CappedTotal is set for penalty mode: the same period structure
	// recomputed at the legal cap multiplier, rounded to 2 decimal places.
	// It is reported alongside the raw total, never substituted for it.
	CappedTotal *decimal.Decimal

	Allocations []AllocationRecord
	Warnings    []Warning

	// Outstanding balances after the full range, for chaining.
	RemainingCosts     decimal.Decimal
	RemainingInterest  decimal.Decimal
	RemainingPrincipal decimal.Decimal
}

// EffectiveTotal returns the lower of the raw and capped totals when a cap
// was computed, otherwise the raw total. Which figure is legally owed is the
// caller's decision; this is a convenience, not a substitution.
func (r *CalculationResult) EffectiveTotal() decimal.Decimal {
	if r.CappedTotal != nil && r.CappedTotal.LessThan(r.TotalInterest) {
		return *r.CappedTotal
	}
	return r.TotalInterest
}

// ExactTotal returns the unrounded sum of all period contributions.
func (r *CalculationResult) ExactTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range r.Periods {
		sum = sum.Add(p.SubInterest)
	}
	return sum
}
