/*
audit.go - Audit trail rendering

PURPOSE:
  Turns a CalculationResult into write-once tabular rows a human reviewer
  can recompute by hand: every row carries the period bounds, day count,
  principal base, rates and the exact formula used. Rendering is a pure
  function of the result - calling it twice yields byte-identical rows.

ROW LAYOUT:
  One row per period, in order, then one terminal total row. Payment
  allocations appear as their own rows between the periods they separate,
  so a reviewer can follow every principal-base change.
*/
package engine

import (
	"fmt"
)

// =============================================================================
// AUDIT ROWS
// =============================================================================

type AuditRowKind string

const (
	RowPeriod  AuditRowKind = "period"
	RowPayment AuditRowKind = "payment"
	RowTotal   AuditRowKind = "total"
)

// AuditRow is one line of the reviewable calculation table. All figures are
// pre-formatted strings so that rendering is deterministic down to the byte.
type AuditRow struct {
	Seq  int
	Kind AuditRowKind

	Start string
	End   string
	Days  int

	PrincipalBase string
	AnnualRate    string
	DailyRate     string
	Formula       string
	Interest      string

	Note string
}

// RenderAudit produces the full audit table for a result.
func RenderAudit(res *CalculationResult) []AuditRow {
	rows := make([]AuditRow, 0, len(res.Periods)+len(res.Allocations)+1)
	seq := 0
	allocIdx := 0

	for _, p := range res.Periods {
		seq++
		row := AuditRow{
			Seq:           seq,
			Kind:          RowPeriod,
			Start:         p.Start.String(),
			End:           p.End.String(),
			Days:          p.Days,
			PrincipalBase: p.PrincipalBase.StringFixed(2),
			DailyRate:     p.DailyRate.String(),
			Formula:       p.Formula,
			Interest:      p.SubInterest.String(),
		}
		if !p.AnnualRatePercent.IsZero() {
			row.AnnualRate = p.AnnualRatePercent.String() + "%"
		}
		if p.Capitalized {
			row.Note = "interest capitalized into principal"
		}
		rows = append(rows, row)

		// Allocations that took effect at this period's end night.
		for allocIdx < len(res.Allocations) && res.Allocations[allocIdx].Date.Equal(p.End) {
			a := res.Allocations[allocIdx]
			allocIdx++
			seq++
			rows = append(rows, AuditRow{
				Seq:   seq,
				Kind:  RowPayment,
				Start: a.Date.String(),
				End:   a.Date.String(),
				Note: fmt.Sprintf("payment %s: costs %s, interest %s, principal %s, unapplied %s",
					a.Payment.StringFixed(2), a.ToCosts.StringFixed(2),
					a.ToInterest.StringFixed(2), a.ToPrincipal.StringFixed(2),
					a.Unapplied.StringFixed(2)),
			})
		}
	}

	seq++
	total := AuditRow{
		Seq:      seq,
		Kind:     RowTotal,
		Start:    res.Start.String(),
		End:      res.End.String(),
		Days:     DaysInclusive(res.Start, res.End),
		Interest: res.TotalInterest.StringFixed(2),
		Note:     "total (rounded once at the end)",
	}
	if res.CappedTotal != nil {
		total.Note = fmt.Sprintf("total %s, capped %s, lower %s",
			res.TotalInterest.StringFixed(2), res.CappedTotal.StringFixed(2),
			res.EffectiveTotal().StringFixed(2))
	}
	rows = append(rows, total)

	return rows
}
