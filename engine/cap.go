/*
cap.go - Legal rate-cap check for penalty interest

PURPOSE:
  Penalty interest may not exceed a legal ceiling expressed as a multiple
  of the benchmark rate (customarily 4x). The check re-runs the floating
  algorithm at the cap multiplier over the SAME period structure - same
  bounds, same principal bases - and reports the capped total alongside
  the raw one. The engine never substitutes one for the other: which
  figure is owed is a downstream legal decision.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// capSpec describes the ceiling for a penalty calculation.
type capSpec struct {
	term       Term
	multiplier decimal.Decimal
	basis      DayBasis
}

// cappedTotal recomputes the given periods at benchmark x cap multiplier
// and returns the rounded total.
func (e *Engine) cappedTotal(periods []PeriodResult, spec *capSpec) (decimal.Decimal, error) {
	if e.rates == nil {
		return decimal.Zero, &ValidationError{Field: "term", Message: "no rate table configured"}
	}

	sum := decimal.Zero
	for _, p := range periods {
		benchmark, err := e.rates.Lookup(spec.term, p.Start)
		if err != nil {
			return decimal.Zero, err
		}
		daily := DailyRate(benchmark.Mul(spec.multiplier), spec.basis)
		sum = sum.Add(p.PrincipalBase.Mul(daily).Mul(decimal.NewFromInt(int64(p.Days))))
	}
	return sum.Round(2), nil
}
