/*
calc.go - The calculation mode dispatcher

PURPOSE:
  Entry point of the engine. Validates the request, builds the
  mode-specific accrual plan (rate resolution, day basis, extra break
  points, capitalization cycle), runs the shared segmentation walk, and
  assembles the final result. Penalty mode additionally re-runs the
  floating algorithm at the cap multiplier over the same period structure.

THE FIVE MODES:
  Simple:   base x (rate/100/basis) x days, fixed caller rate
  Floating: per-period rate = benchmark(term, period start) x multiplier
  Delayed:  base x 0.000175 x days, statutory, no rate table involvement
  Compound: simple-style segments, accrued interest capitalized at each
            explicit cycle end (and at the range end for the tail)
  Penalty:  simple or floating basis, always followed by the cap check

ROUNDING:
  Per-period sub-interest keeps full decimal precision. Only the final
  totals are rounded, once, to 2 decimal places.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the calculation dispatcher. It is stateless apart from the
// shared read-only rate table, so one instance serves concurrent requests.
type Engine struct {
	rates *RateTable
}

// New creates an engine over the given rate table. The table may be nil for
// callers that never use floating or penalty modes.
func New(rates *RateTable) *Engine {
	return &Engine{rates: rates}
}

// Calculate runs one request to completion. It either returns a complete
// result or an error; never both, never a partial result.
func (e *Engine) Calculate(req CalculationRequest) (*CalculationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, capSpec, err := e.plan(&req)
	if err != nil {
		return nil, err
	}

	out, err := walk(&req, plan)
	if err != nil {
		return nil, err
	}

	res := &CalculationResult{
		Mode:               req.Params.Mode(),
		Principal:          req.Principal,
		Start:              req.Start,
		End:                req.End,
		Periods:            out.periods,
		Allocations:        out.allocations,
		Warnings:           out.warnings,
		RemainingCosts:     out.remainingCosts,
		RemainingInterest:  out.remainingInterest,
		RemainingPrincipal: out.remainingPrincipal,
	}
	res.TotalInterest = res.ExactTotal().Round(2)

	if capSpec != nil {
		capped, err := e.cappedTotal(out.periods, capSpec)
		if err != nil {
			return nil, err
		}
		res.CappedTotal = &capped
	}

	return res, nil
}

// =============================================================================
// MODE PLANS
// =============================================================================

// plan builds the accrual plan for the request's mode, plus the cap spec
// for penalty mode.
func (e *Engine) plan(req *CalculationRequest) (*accrualPlan, *capSpec, error) {
	switch p := req.Params.(type) {
	case SimpleParams:
		basis, err := ResolveBasis(p.Basis, p.Context)
		if err != nil {
			return nil, nil, err
		}
		return fixedRatePlan(p.AnnualRatePercent, basis), nil, nil

	case FloatingParams:
		basis, err := ResolveBasis(p.Basis, p.Context)
		if err != nil {
			return nil, nil, err
		}
		plan, err := e.floatingPlan(req, p.Term, p.multiplier(), basis)
		return plan, nil, err

	case DelayedParams:
		return &accrualPlan{
			formula: func(pd Period) string {
				return fmt.Sprintf("%s × 0.0175%% × %d",
					pd.PrincipalBase.StringFixed(2), pd.Days)
			},
		}, nil, nil

	case CompoundParams:
		basis, err := ResolveBasis(p.Basis, p.Context)
		if err != nil {
			return nil, nil, err
		}
		plan := fixedRatePlan(p.AnnualRatePercent, basis)
		plan.cycle = p.Cycle
		return plan, nil, nil

	case PenaltyParams:
		basis, err := ResolveBasis(p.Basis, p.Context)
		if err != nil {
			return nil, nil, err
		}
		cap := &capSpec{term: p.Term, multiplier: p.capMultiplier(), basis: basis}

		if p.AnnualRatePercent.IsPositive() {
			plan := fixedRatePlan(p.AnnualRatePercent, basis)
			// Benchmark change dates still split the periods so the
			// parallel cap run resolves exact per-segment benchmark rates.
			plan.extraBreaks = e.rates.ChangeDates(p.Term, req.Start, req.End)
			return plan, cap, nil
		}
		plan, err := e.floatingPlan(req, p.Term, p.Multiplier, basis)
		return plan, cap, err

	default:
		return nil, nil, &ValidationError{Field: "mode", Message: "unknown mode parameters"}
	}
}

// fixedRatePlan accrues at one caller-supplied annual rate.
func fixedRatePlan(annual decimal.Decimal, basis DayBasis) *accrualPlan {
	return &accrualPlan{
		basis: basis,
		annualAt: func(Date) (decimal.Decimal, error) {
			return annual, nil
		},
		formula: func(pd Period) string {
			return fmt.Sprintf("%s × %s%%/%d × %d",
				pd.PrincipalBase.StringFixed(2), pd.AnnualRatePercent, basis, pd.Days)
		},
	}
}

// floatingPlan accrues at benchmark(term, period start) x multiplier and
// breaks periods at every benchmark change date.
func (e *Engine) floatingPlan(req *CalculationRequest, term Term, mult decimal.Decimal, basis DayBasis) (*accrualPlan, error) {
	if e.rates == nil {
		return nil, &ValidationError{Field: "term", Message: "no rate table configured"}
	}

	// Probe the start date up front so a pre-history request fails before
	// the walk begins.
	if _, err := e.rates.Lookup(term, req.Start); err != nil {
		return nil, err
	}

	return &accrualPlan{
		basis: basis,
		annualAt: func(on Date) (decimal.Decimal, error) {
			benchmark, err := e.rates.Lookup(term, on)
			if err != nil {
				return decimal.Zero, err
			}
			return benchmark.Mul(mult), nil
		},
		formula: func(pd Period) string {
			benchmark, err := e.rates.Lookup(term, pd.Start)
			if err != nil || mult.Equal(decimal.NewFromInt(1)) {
				return fmt.Sprintf("%s × %s%%/%d × %d",
					pd.PrincipalBase.StringFixed(2), pd.AnnualRatePercent, basis, pd.Days)
			}
			return fmt.Sprintf("%s × (%s%% × %s)/%d × %d",
				pd.PrincipalBase.StringFixed(2), benchmark, mult, basis, pd.Days)
		},
		extraBreaks: e.rates.ChangeDates(term, req.Start, req.End),
	}, nil
}
