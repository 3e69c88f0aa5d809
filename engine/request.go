/*
request.go - Calculation requests and boundary validation

PURPOSE:
  Defines what a caller submits and enforces every structural and semantic
  constraint BEFORE any arithmetic runs. The engine is all-or-nothing per
  request: nothing here ever produces a partial result.

MODE PARAMETERS AS A TAGGED UNION:
  Each mode accepts only its own parameters, so the modes are concrete
  types implementing ModeParams rather than one flat struct full of
  optionals. BuildParams is the boundary constructor for flat transports
  (JSON, form fields): it rejects mode-inapplicable fields outright
  instead of ignoring them, because a rate supplied for delayed mode is a
  legally meaningful contradiction, not noise.

SEE ALSO:
  - calc.go: consumes a validated request
  - errors.go: the error taxonomy raised here
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATION REQUEST
// =============================================================================

// CalculationRequest is one complete unit of work. Params selects the mode
// and carries only that mode's fields.
type CalculationRequest struct {
	Principal decimal.Decimal
	Start     Date
	End       Date
	Params    ModeParams

	// Payments received during [Start, End], non-decreasing by date.
	Payments []Payment

	// OffsetPolicy governs payment bucket order. Defaults to general debt.
	OffsetPolicy OffsetPolicy

	// Opening balances carried into the calculation: costs outstanding at
	// Start and interest already accrued before Start. Payments offset
	// these per the policy before touching principal.
	OutstandingCosts decimal.Decimal
	AccruedInterest  decimal.Decimal
}

// =============================================================================
// MODE PARAMETERS - One concrete type per mode
// =============================================================================

// ModeParams is the closed set of per-mode parameter variants.
type ModeParams interface {
	Mode() Mode
	validate() error
}

// SimpleParams: fixed caller-supplied annual rate.
type SimpleParams struct {
	AnnualRatePercent decimal.Decimal
	Basis             DayBasis     // 0 = resolve from Context
	Context           BasisContext // required when Basis is 0
}

func (SimpleParams) Mode() Mode { return ModeSimple }

func (p SimpleParams) validate() error {
	if !p.AnnualRatePercent.IsPositive() {
		return &InvalidParameterError{Mode: ModeSimple, Field: "annual_rate_percent",
			Message: "a positive annual rate is required"}
	}
	_, err := ResolveBasis(p.Basis, p.Context)
	return err
}

// FloatingParams: benchmark rate for a term, times a multiplier.
type FloatingParams struct {
	Term       Term
	Multiplier decimal.Decimal // zero value means 1.0
	Basis      DayBasis
	Context    BasisContext
}

func (FloatingParams) Mode() Mode { return ModeFloating }

func (p FloatingParams) validate() error {
	if p.Term != TermShort && p.Term != TermLong {
		return &InvalidParameterError{Mode: ModeFloating, Field: "term",
			Message: "a benchmark term is required"}
	}
	if p.Multiplier.IsNegative() {
		return &InvalidParameterError{Mode: ModeFloating, Field: "multiplier",
			Message: "multiplier must be positive"}
	}
	_, err := ResolveBasis(p.Basis, p.Context)
	return err
}

// multiplier returns the effective multiplier, defaulting to 1.
func (p FloatingParams) multiplier() decimal.Decimal {
	if p.Multiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.Multiplier
}

// DelayedParams: the statutory daily rate. Carries nothing by construction;
// a contractual rate or multiplier cannot apply to delayed performance.
type DelayedParams struct{}

func (DelayedParams) Mode() Mode      { return ModeDelayed }
func (DelayedParams) validate() error { return nil }

// CompoundParams: fixed annual rate capitalized at an explicit cycle.
type CompoundParams struct {
	AnnualRatePercent decimal.Decimal
	Cycle             CompoundingCycle
	Basis             DayBasis
	Context           BasisContext
}

func (CompoundParams) Mode() Mode { return ModeCompound }

func (p CompoundParams) validate() error {
	if p.Cycle == "" {
		return &MissingCycleError{}
	}
	switch p.Cycle {
	case CycleMonthEnd, CycleQuarterEnd, CycleYearEnd:
	default:
		return &InvalidParameterError{Mode: ModeCompound, Field: "compounding_cycle",
			Message: "unknown cycle " + string(p.Cycle)}
	}
	if !p.AnnualRatePercent.IsPositive() {
		return &InvalidParameterError{Mode: ModeCompound, Field: "annual_rate_percent",
			Message: "a positive annual rate is required"}
	}
	_, err := ResolveBasis(p.Basis, p.Context)
	return err
}

// PenaltyParams: a simple (fixed-rate) or floating (benchmark) basis chosen
// by the caller, always followed by the legal rate-cap check. Term is
// required in both cases because the cap is expressed against the benchmark.
type PenaltyParams struct {
	// Exactly one basis: a fixed AnnualRatePercent, or the benchmark for
	// Term times Multiplier when AnnualRatePercent is zero.
	AnnualRatePercent decimal.Decimal
	Multiplier        decimal.Decimal

	Term Term

	// CapMultiplier is the legal ceiling as a multiple of the benchmark.
	// Zero value means the customary 4x.
	CapMultiplier decimal.Decimal

	Basis   DayBasis
	Context BasisContext
}

func (PenaltyParams) Mode() Mode { return ModePenalty }

func (p PenaltyParams) validate() error {
	if p.Term != TermShort && p.Term != TermLong {
		return &InvalidParameterError{Mode: ModePenalty, Field: "term",
			Message: "a benchmark term is required for the rate cap"}
	}
	fixed := p.AnnualRatePercent.IsPositive()
	floating := p.Multiplier.IsPositive()
	if fixed && floating {
		return &InvalidParameterError{Mode: ModePenalty, Field: "annual_rate_percent",
			Message: "supply either a fixed rate or a multiplier, not both"}
	}
	if !fixed && !floating {
		return &InvalidParameterError{Mode: ModePenalty, Field: "annual_rate_percent",
			Message: "a fixed rate or a benchmark multiplier is required"}
	}
	if p.CapMultiplier.IsNegative() {
		return &InvalidParameterError{Mode: ModePenalty, Field: "cap_multiplier",
			Message: "cap multiplier must be positive"}
	}
	_, err := ResolveBasis(p.Basis, p.Context)
	return err
}

func (p PenaltyParams) capMultiplier() decimal.Decimal {
	if p.CapMultiplier.IsZero() {
		return decimal.NewFromInt(4)
	}
	return p.CapMultiplier
}

// =============================================================================
// FLAT PARAMETER BUILDER - For transports that carry one flat field set
// =============================================================================

// ParamFields is the flat, everything-optional field set a transport layer
// decodes. BuildParams turns it into the correct ModeParams variant and
// rejects (never ignores) fields the mode does not accept.
type ParamFields struct {
	AnnualRatePercent *decimal.Decimal
	Multiplier        *decimal.Decimal
	Term              *Term
	BaseDays          *int
	Context           *BasisContext
	Cycle             *CompoundingCycle
	CapMultiplier     *decimal.Decimal
}

// BuildParams constructs the tagged variant for the mode, failing with
// InvalidParameterError on any field the mode does not accept.
func BuildParams(mode Mode, f ParamFields) (ModeParams, error) {
	reject := func(field string, set bool) error {
		if set {
			return &InvalidParameterError{Mode: mode, Field: field,
				Message: "not applicable to this mode"}
		}
		return nil
	}

	basis := DayBasis(0)
	if f.BaseDays != nil {
		basis = DayBasis(*f.BaseDays)
	}
	ctx := BasisContext("")
	if f.Context != nil {
		ctx = *f.Context
	}

	switch mode {
	case ModeSimple:
		for field, set := range map[string]bool{
			"multiplier":        f.Multiplier != nil,
			"term":              f.Term != nil,
			"compounding_cycle": f.Cycle != nil,
			"cap_multiplier":    f.CapMultiplier != nil,
		} {
			if err := reject(field, set); err != nil {
				return nil, err
			}
		}
		p := SimpleParams{Basis: basis, Context: ctx}
		if f.AnnualRatePercent != nil {
			p.AnnualRatePercent = *f.AnnualRatePercent
		}
		return p, nil

	case ModeFloating:
		for field, set := range map[string]bool{
			"annual_rate_percent": f.AnnualRatePercent != nil,
			"compounding_cycle":   f.Cycle != nil,
			"cap_multiplier":      f.CapMultiplier != nil,
		} {
			if err := reject(field, set); err != nil {
				return nil, err
			}
		}
		p := FloatingParams{Basis: basis, Context: ctx}
		if f.Term != nil {
			p.Term = *f.Term
		}
		if f.Multiplier != nil {
			p.Multiplier = *f.Multiplier
		}
		return p, nil

	case ModeDelayed:
		for field, set := range map[string]bool{
			"annual_rate_percent": f.AnnualRatePercent != nil,
			"multiplier":          f.Multiplier != nil,
			"term":                f.Term != nil,
			"base_days":           f.BaseDays != nil,
			"basis_context":       f.Context != nil,
			"compounding_cycle":   f.Cycle != nil,
			"cap_multiplier":      f.CapMultiplier != nil,
		} {
			if err := reject(field, set); err != nil {
				return nil, err
			}
		}
		return DelayedParams{}, nil

	case ModeCompound:
		for field, set := range map[string]bool{
			"multiplier":     f.Multiplier != nil,
			"term":           f.Term != nil,
			"cap_multiplier": f.CapMultiplier != nil,
		} {
			if err := reject(field, set); err != nil {
				return nil, err
			}
		}
		if f.Cycle == nil {
			return nil, &MissingCycleError{}
		}
		p := CompoundParams{Cycle: *f.Cycle, Basis: basis, Context: ctx}
		if f.AnnualRatePercent != nil {
			p.AnnualRatePercent = *f.AnnualRatePercent
		}
		return p, nil

	case ModePenalty:
		if err := reject("compounding_cycle", f.Cycle != nil); err != nil {
			return nil, err
		}
		p := PenaltyParams{Basis: basis, Context: ctx}
		if f.AnnualRatePercent != nil {
			p.AnnualRatePercent = *f.AnnualRatePercent
		}
		if f.Multiplier != nil {
			p.Multiplier = *f.Multiplier
		}
		if f.Term != nil {
			p.Term = *f.Term
		}
		if f.CapMultiplier != nil {
			p.CapMultiplier = *f.CapMultiplier
		}
		return p, nil

	default:
		return nil, &ValidationError{Field: "mode", Message: "unknown mode " + string(mode)}
	}
}

// =============================================================================
// REQUEST VALIDATION
// =============================================================================

// Validate enforces every structural and semantic constraint. It runs in
// full before any computation; a request that passes cannot fail later for
// shape reasons (only a rate-table miss can still surface during lookup).
func (req *CalculationRequest) Validate() error {
	if req.Params == nil {
		return &ValidationError{Field: "mode", Message: "no calculation mode selected"}
	}
	if !req.Principal.IsPositive() {
		return &ValidationError{Field: "principal", Message: "must be positive"}
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return &ValidationError{Field: "start_date", Message: "start and end dates are required"}
	}
	if req.Start.After(req.End) {
		return &ValidationError{Field: "start_date",
			Message: "start date " + req.Start.String() + " is after end date " + req.End.String()}
	}

	switch req.OffsetPolicy {
	case "", OffsetGeneralDebt, OffsetJudgmentDebt:
	default:
		return &ValidationError{Field: "payment_offset_policy",
			Message: "unknown policy " + string(req.OffsetPolicy)}
	}

	if req.OutstandingCosts.IsNegative() {
		return &ValidationError{Field: "outstanding_costs", Message: "must not be negative"}
	}
	if req.AccruedInterest.IsNegative() {
		return &ValidationError{Field: "accrued_interest", Message: "must not be negative"}
	}

	var prev Date
	for i, p := range req.Payments {
		if !p.Amount.IsPositive() {
			return &ValidationError{Field: "payments",
				Message: "payment amounts must be positive"}
		}
		if p.Date.Before(req.Start) || p.Date.After(req.End) {
			return &InvalidPaymentDateError{Date: p.Date, Start: req.Start, End: req.End}
		}
		if i > 0 && p.Date.Before(prev) {
			return &InvalidPaymentDateError{Date: p.Date,
				Message: "payments must be in non-decreasing date order"}
		}
		prev = p.Date
	}

	return req.Params.validate()
}

// policy returns the effective offset policy.
func (req *CalculationRequest) policy() OffsetPolicy {
	if req.OffsetPolicy == "" {
		return OffsetGeneralDebt
	}
	return req.OffsetPolicy
}
