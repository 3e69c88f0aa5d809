/*
ratetable.go - Historical benchmark rate table

PURPOSE:
  Read-only lookup over the embedded benchmark (LPR) history. The table is
  built once at process start and shared by every calculation: lookups are
  pure reads, so concurrent calculations need no locking.

LOOKUP SEMANTICS:
  A rate is in force from its effective date up to, but not including, the
  next entry's effective date for the same term. Dates after the last entry
  forward-fill to that last entry (a published rate stays in force until
  superseded). Dates before the first entry fail with RateNotFoundError -
  the engine never extrapolates backward.

SEE ALSO:
  - ratetable package: the embedded, versioned snapshot this is built from
  - segment.go: uses ChangeDates to place period boundaries
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE TABLE - Immutable after construction
// =============================================================================

// RateTable holds the benchmark history for all terms. Construct once via
// NewRateTable and pass it in; tests substitute fixture tables the same way.
type RateTable struct {
	byTerm  map[Term][]RateEntry // ascending by effective date
	version string
	asOf    Date
}

// NewRateTable validates and indexes the given entries. Entries for a term
// must have strictly increasing effective dates; duplicates are rejected.
func NewRateTable(entries []RateEntry) (*RateTable, error) {
	byTerm := make(map[Term][]RateEntry)
	for _, e := range entries {
		byTerm[e.Term] = append(byTerm[e.Term], e)
	}

	for term, list := range byTerm {
		sort.Slice(list, func(i, j int) bool {
			return list[i].EffectiveDate.Before(list[j].EffectiveDate)
		})
		for i := 1; i < len(list); i++ {
			if list[i].EffectiveDate.Equal(list[i-1].EffectiveDate) {
				return nil, &ValidationError{
					Field: "rate_table",
					Message: "duplicate effective date " + list[i].EffectiveDate.String() +
						" for term " + string(term),
				}
			}
		}
		byTerm[term] = list
	}

	return &RateTable{byTerm: byTerm}, nil
}

// WithProvenance records the snapshot version and as-of date the table was
// loaded from, so stale-data risk stays explicit.
func (rt *RateTable) WithProvenance(version string, asOf Date) *RateTable {
	rt.version = version
	rt.asOf = asOf
	return rt
}

func (rt *RateTable) Version() string { return rt.version }
func (rt *RateTable) AsOf() Date      { return rt.asOf }

// Entries returns the history for a term, ascending by effective date.
// Callers must not modify the returned slice.
func (rt *RateTable) Entries(term Term) []RateEntry {
	return rt.byTerm[term]
}

// =============================================================================
// LOOKUP
// =============================================================================

// Lookup returns the annual rate (percent) in force for the term on the
// given date. Forward-fills past the last entry; fails before the first.
func (rt *RateTable) Lookup(term Term, on Date) (decimal.Decimal, error) {
	list := rt.byTerm[term]
	if len(list) == 0 {
		return decimal.Zero, &RateNotFoundError{Term: term, Date: on}
	}

	// Last entry with EffectiveDate <= on.
	idx := sort.Search(len(list), func(i int) bool {
		return list[i].EffectiveDate.After(on)
	}) - 1

	if idx < 0 {
		return decimal.Zero, &RateNotFoundError{
			Term:     term,
			Date:     on,
			Earliest: list[0].EffectiveDate,
		}
	}
	return list[idx].AnnualRatePercent, nil
}

// ChangeDates returns every effective date strictly inside (start, end],
// in ascending order. These are the floating-mode period break points.
func (rt *RateTable) ChangeDates(term Term, start, end Date) []Date {
	var dates []Date
	for _, e := range rt.byTerm[term] {
		if e.EffectiveDate.After(start) && e.EffectiveDate.BeforeOrEqual(end) {
			dates = append(dates, e.EffectiveDate)
		}
	}
	return dates
}
