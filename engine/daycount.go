package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY COUNT - Inclusive day counting and daily-rate conversion
// =============================================================================

// DaysInclusive counts days in [start, end] with BOTH endpoints included:
// start == end is one day. This is the governing legal convention and
// deliberately differs from the exclusive actual/360-style financial count.
func DaysInclusive(start, end Date) int {
	return int(end.normalize().Sub(start.normalize()).Hours()/24) + 1
}

// DailyRate converts an annual percentage rate to a decimal daily rate over
// the given basis, at full decimal precision: annual / 100 / basis.
func DailyRate(annualPercent decimal.Decimal, basis DayBasis) decimal.Decimal {
	return annualPercent.
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(basis)))
}

// ResolveBasis picks the day basis for a calculation. An explicit basis
// always wins; otherwise the caller-supplied context decides (lending
// conventions use 360, judicial and contractual-penalty conventions 365).
// The basis is never inferred from the calculation mode: the same mode is
// used in both contexts.
func ResolveBasis(explicit DayBasis, ctx BasisContext) (DayBasis, error) {
	switch explicit {
	case Basis360, Basis365:
		return explicit, nil
	case 0:
		// fall through to context
	default:
		return 0, &ValidationError{
			Field:   "base_days",
			Message: "must be 360 or 365",
		}
	}

	switch ctx {
	case ContextLending:
		return Basis360, nil
	case ContextJudicial:
		return Basis365, nil
	case "":
		return 0, &ValidationError{
			Field:   "base_days",
			Message: "no explicit basis and no basis context supplied",
		}
	default:
		return 0, &ValidationError{
			Field:   "basis_context",
			Message: "unknown context " + string(ctx),
		}
	}
}
