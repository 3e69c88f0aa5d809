/*
segment.go - Period segmentation and the accrual walk

PURPOSE:
  Splits the request range into homogeneous periods and accrues interest
  over them. A new period begins wherever the applicable rate changes,
  wherever a payment alters the principal base (the day after the payment),
  and - for compound mode - the day after each capitalization cycle end.
  Coincident break points collapse; zero-length periods never exist.

THE WALK:
  Boundaries are period START dates plus one sentinel (end + 1). For each
  adjacent boundary pair [b, next) the walk constructs the period
  [b, next-1], accrues base x dailyRate x days at full precision, then
  processes the overnight events at `next`: payments dated next-1 are
  allocated across the outstanding buckets, and compound cycle ends fold
  the accrued-but-unpaid interest into the principal.

  When a payment and a capitalization land on the same night, the payment
  is applied first; only interest still unpaid afterwards capitalizes.
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCRUAL PLAN - Mode-specific inputs to the shared walk
// =============================================================================

// accrualPlan is everything the walk needs that varies by mode.
type accrualPlan struct {
	// annualAt resolves the effective annual rate (percent) in force on a
	// period's start date. Nil for delayed mode.
	annualAt func(Date) (decimal.Decimal, error)

	// formula renders the hand-checkable arithmetic for one period.
	formula func(p Period) string

	basis DayBasis // 0 for delayed mode

	// extraBreaks are additional period start dates (rate change dates).
	extraBreaks []Date

	// cycle enables capitalization at cycle ends (compound mode only).
	cycle CompoundingCycle
}

// =============================================================================
// BOUNDARY COLLECTION
// =============================================================================

// boundaries returns all period start dates plus the end+1 sentinel,
// sorted and deduplicated.
func boundaries(req *CalculationRequest, plan *accrualPlan) []Date {
	sentinel := req.End.AddDays(1)

	set := map[string]Date{req.Start.String(): req.Start, sentinel.String(): sentinel}

	add := func(d Date) {
		// Only dates inside (start, end] can start a period.
		if d.After(req.Start) && d.BeforeOrEqual(req.End) {
			set[d.String()] = d
		}
	}

	for _, p := range req.Payments {
		add(p.Date.AddDays(1))
	}
	for _, d := range plan.extraBreaks {
		add(d)
	}
	if plan.cycle != "" {
		for ce := cycleEnd(req.Start, plan.cycle); ce.Before(req.End); ce = cycleEnd(ce.AddDays(1), plan.cycle) {
			add(ce.AddDays(1))
		}
	}

	out := make([]Date, 0, len(set))
	for _, d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// cycleEnd returns the capitalization cycle end containing d.
func cycleEnd(d Date, cycle CompoundingCycle) Date {
	switch cycle {
	case CycleQuarterEnd:
		return d.EndOfQuarter()
	case CycleYearEnd:
		return d.EndOfYear()
	default:
		return d.EndOfMonth()
	}
}

// isCycleEnd reports whether d is the last day of its cycle.
func isCycleEnd(d Date, cycle CompoundingCycle) bool {
	return cycle != "" && d.Equal(cycleEnd(d, cycle))
}

// =============================================================================
// THE WALK
// =============================================================================

// walkOutcome carries everything the walk produced.
type walkOutcome struct {
	periods     []PeriodResult
	allocations []AllocationRecord
	warnings    []Warning

	remainingCosts     decimal.Decimal
	remainingInterest  decimal.Decimal
	remainingPrincipal decimal.Decimal
}

// walk segments the range and accrues interest period by period.
func walk(req *CalculationRequest, plan *accrualPlan) (*walkOutcome, error) {
	bounds := boundaries(req, plan)

	out := &walkOutcome{
		remainingCosts:     req.OutstandingCosts,
		remainingInterest:  req.AccruedInterest,
		remainingPrincipal: req.Principal,
	}

	// uncapitalized is the slice of the interest bucket accrued since the
	// last capitalization (compound mode only).
	uncapitalized := decimal.Zero
	payIdx := 0

	for i := 0; i+1 < len(bounds); i++ {
		start, next := bounds[i], bounds[i+1]
		end := next.AddDays(-1)

		p := Period{
			Start:         start,
			End:           end,
			Days:          DaysInclusive(start, end),
			PrincipalBase: out.remainingPrincipal,
		}

		if plan.annualAt != nil {
			annual, err := plan.annualAt(start)
			if err != nil {
				return nil, err
			}
			p.AnnualRatePercent = annual
			p.DailyRate = DailyRate(annual, plan.basis)
		} else {
			p.DailyRate = DelayedDailyRate
		}

		sub := p.PrincipalBase.Mul(p.DailyRate).Mul(decimal.NewFromInt(int64(p.Days)))
		out.remainingInterest = out.remainingInterest.Add(sub)
		uncapitalized = uncapitalized.Add(sub)

		pr := PeriodResult{Period: p, SubInterest: sub, Formula: plan.formula(p)}

		// Overnight events at `next`: payments dated `end` first, then
		// capitalization of whatever interest is still unpaid.
		for payIdx < len(req.Payments) && req.Payments[payIdx].Date.Equal(end) {
			pay := req.Payments[payIdx]
			payIdx++

			alloc := Allocate(out.remainingCosts, out.remainingInterest,
				out.remainingPrincipal, pay.Amount, req.policy())

			out.remainingCosts = alloc.RemainingCosts
			out.remainingInterest = alloc.RemainingInterest
			out.remainingPrincipal = alloc.RemainingPrincipal
			out.allocations = append(out.allocations, AllocationRecord{
				Date:        pay.Date,
				Payment:     pay.Amount,
				ToCosts:     alloc.ToCosts,
				ToInterest:  alloc.ToInterest,
				ToPrincipal: alloc.ToPrincipal,
				Unapplied:   alloc.Unapplied,
			})
			if alloc.Unapplied.IsPositive() {
				out.warnings = append(out.warnings, Warning{
					Code: WarnUnappliedRemainder,
					Message: fmt.Sprintf("payment of %s on %s exceeds all outstanding amounts by %s",
						pay.Amount.StringFixed(2), pay.Date, alloc.Unapplied.StringFixed(2)),
					Date:   pay.Date,
					Amount: alloc.Unapplied,
				})
			}
		}

		if plan.cycle != "" && (isCycleEnd(end, plan.cycle) || end.Equal(req.End)) {
			// Payments drain the oldest interest first, so only what is
			// still outstanding of this cycle's accrual capitalizes.
			capAmount := decimal.Min(uncapitalized, out.remainingInterest)
			if capAmount.IsPositive() {
				out.remainingPrincipal = out.remainingPrincipal.Add(capAmount)
				out.remainingInterest = out.remainingInterest.Sub(capAmount)
			}
			uncapitalized = decimal.Zero
			pr.Capitalized = true
		}

		out.periods = append(out.periods, pr)
	}

	return out, nil
}
