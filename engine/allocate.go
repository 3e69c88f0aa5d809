/*
allocate.go - Payment offsetting across outstanding buckets

PURPOSE:
  Splits each payment across the outstanding buckets in the legally
  mandated order and produces the adjusted balances for subsequent accrual
  periods. A bucket is never driven below zero; whatever exceeds every
  bucket is reported back as an unapplied remainder, never discarded.

BUCKET ORDER:
  GeneralDebt:  costs -> interest -> principal
  JudgmentDebt: the judgment-determined amounts first, in judgment order
                (costs, then principal), and only any remainder against
                accrued delayed-performance interest.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// Allocation is the outcome of applying one payment.
type Allocation struct {
	RemainingCosts     decimal.Decimal
	RemainingInterest  decimal.Decimal
	RemainingPrincipal decimal.Decimal

	ToCosts     decimal.Decimal
	ToInterest  decimal.Decimal
	ToPrincipal decimal.Decimal

	// Unapplied is the part of the payment exceeding all buckets.
	Unapplied decimal.Decimal
}

// Allocate applies a payment to the outstanding buckets under the policy.
func Allocate(costs, interest, principal, payment decimal.Decimal, policy OffsetPolicy) Allocation {
	a := Allocation{
		RemainingCosts:     costs,
		RemainingInterest:  interest,
		RemainingPrincipal: principal,
		ToCosts:            decimal.Zero,
		ToInterest:         decimal.Zero,
		ToPrincipal:        decimal.Zero,
	}
	left := payment

	drain := func(outstanding, applied *decimal.Decimal) {
		if !left.IsPositive() || !outstanding.IsPositive() {
			return
		}
		take := decimal.Min(left, *outstanding)
		*outstanding = outstanding.Sub(take)
		*applied = applied.Add(take)
		left = left.Sub(take)
	}

	switch policy {
	case OffsetJudgmentDebt:
		drain(&a.RemainingCosts, &a.ToCosts)
		drain(&a.RemainingPrincipal, &a.ToPrincipal)
		drain(&a.RemainingInterest, &a.ToInterest)
	default: // OffsetGeneralDebt
		drain(&a.RemainingCosts, &a.ToCosts)
		drain(&a.RemainingInterest, &a.ToInterest)
		drain(&a.RemainingPrincipal, &a.ToPrincipal)
	}

	a.Unapplied = left
	return a
}
