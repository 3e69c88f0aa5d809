/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON shapes of the calculation API and the mapping onto the
  engine's tagged request types. The wire format is deliberately flat
  (one field set keyed by "mode"); the mapping rejects - never ignores -
  fields the selected mode does not accept, because a contradictory field
  is legally meaningful caller input.

NAMING CONVENTION:
  - *Request: request body types from clients
  - *DTO: response types returned to clients

VALIDATION:
  Shape validation (dates parse, decimals parse, unknown JSON fields)
  happens here; semantic validation is the engine's request validator.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/cosiris15/debt-review-sub000/engine"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PaymentRequest is one partial repayment on the wire.
type PaymentRequest struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// CalculationRequest is the flat, mode-keyed request body.
type CalculationRequest struct {
	Mode      string          `json:"mode"`
	Principal decimal.Decimal `json:"principal"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`

	AnnualRatePercent *decimal.Decimal `json:"annual_rate_percent,omitempty"`
	Multiplier        *decimal.Decimal `json:"multiplier,omitempty"`
	Term              *string          `json:"term,omitempty"`
	BaseDays          *int             `json:"base_days,omitempty"`
	BasisContext      *string          `json:"basis_context,omitempty"`
	CompoundingCycle  *string          `json:"compounding_cycle,omitempty"`
	CapMultiplier     *decimal.Decimal `json:"cap_multiplier,omitempty"`

	Payments            []PaymentRequest `json:"payments,omitempty"`
	PaymentOffsetPolicy string           `json:"payment_offset_policy,omitempty"`
	OutstandingCosts    *decimal.Decimal `json:"outstanding_costs,omitempty"`
	AccruedInterest     *decimal.Decimal `json:"accrued_interest,omitempty"`
}

// toEngine maps the flat request to the engine's tagged form.
func (r *CalculationRequest) toEngine() (engine.CalculationRequest, error) {
	var req engine.CalculationRequest

	start, err := engine.ParseDate(r.StartDate)
	if err != nil {
		return req, &engine.ValidationError{Field: "start_date", Message: "expected YYYY-MM-DD"}
	}
	end, err := engine.ParseDate(r.EndDate)
	if err != nil {
		return req, &engine.ValidationError{Field: "end_date", Message: "expected YYYY-MM-DD"}
	}

	fields := engine.ParamFields{
		AnnualRatePercent: r.AnnualRatePercent,
		Multiplier:        r.Multiplier,
		BaseDays:          r.BaseDays,
		CapMultiplier:     r.CapMultiplier,
	}
	if r.Term != nil {
		term := engine.Term(*r.Term)
		fields.Term = &term
	}
	if r.BasisContext != nil {
		ctx := engine.BasisContext(*r.BasisContext)
		fields.Context = &ctx
	}
	if r.CompoundingCycle != nil {
		cycle := engine.CompoundingCycle(*r.CompoundingCycle)
		fields.Cycle = &cycle
	}

	params, err := engine.BuildParams(engine.Mode(r.Mode), fields)
	if err != nil {
		return req, err
	}

	payments := make([]engine.Payment, 0, len(r.Payments))
	for _, p := range r.Payments {
		date, err := engine.ParseDate(p.Date)
		if err != nil {
			return req, &engine.ValidationError{Field: "payments", Message: "expected YYYY-MM-DD dates"}
		}
		payments = append(payments, engine.Payment{Date: date, Amount: p.Amount})
	}

	req = engine.CalculationRequest{
		Principal:    r.Principal,
		Start:        start,
		End:          end,
		Params:       params,
		Payments:     payments,
		OffsetPolicy: engine.OffsetPolicy(r.PaymentOffsetPolicy),
	}
	if r.OutstandingCosts != nil {
		req.OutstandingCosts = *r.OutstandingCosts
	}
	if r.AccruedInterest != nil {
		req.AccruedInterest = *r.AccruedInterest
	}
	return req, nil
}

// AppendSectionRequest runs a calculation and appends it to a case workbook.
type AppendSectionRequest struct {
	CaseRef       string `json:"case_ref"`
	Title         string `json:"title"`
	LegalCitation string `json:"legal_citation,omitempty"`

	Calculation CalculationRequest `json:"calculation"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// PeriodDTO is one accrual segment in a response.
type PeriodDTO struct {
	Start             string `json:"start"`
	End               string `json:"end"`
	Days              int    `json:"days"`
	PrincipalBase     string `json:"principal_base"`
	AnnualRatePercent string `json:"annual_rate_percent,omitempty"`
	DailyRate         string `json:"daily_rate"`
	SubInterest       string `json:"sub_interest"`
	Formula           string `json:"formula"`
	Capitalized       bool   `json:"capitalized,omitempty"`
}

// AllocationDTO documents one payment split.
type AllocationDTO struct {
	Date        string `json:"date"`
	Payment     string `json:"payment"`
	ToCosts     string `json:"to_costs"`
	ToInterest  string `json:"to_interest"`
	ToPrincipal string `json:"to_principal"`
	Unapplied   string `json:"unapplied"`
}

// WarningDTO is a non-fatal finding attached to a successful result.
type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Amount  string `json:"amount"`
}

// AuditRowDTO mirrors engine.AuditRow on the wire.
type AuditRowDTO struct {
	Seq           int    `json:"seq"`
	Kind          string `json:"kind"`
	Start         string `json:"start,omitempty"`
	End           string `json:"end,omitempty"`
	Days          int    `json:"days,omitempty"`
	PrincipalBase string `json:"principal_base,omitempty"`
	AnnualRate    string `json:"annual_rate,omitempty"`
	DailyRate     string `json:"daily_rate,omitempty"`
	Formula       string `json:"formula,omitempty"`
	Interest      string `json:"interest,omitempty"`
	Note          string `json:"note,omitempty"`
}

// CalculationDTO is the full response for one calculation.
type CalculationDTO struct {
	Mode          string `json:"mode"`
	Principal     string `json:"principal"`
	Start         string `json:"start"`
	End           string `json:"end"`
	TotalInterest string `json:"total_interest"`

	// CappedTotal and EffectiveTotal are present for penalty mode. Both
	// figures are reported; choosing between them is the caller's call.
	CappedTotal    string `json:"capped_total,omitempty"`
	EffectiveTotal string `json:"effective_total,omitempty"`

	RemainingCosts     string `json:"remaining_costs"`
	RemainingInterest  string `json:"remaining_interest"`
	RemainingPrincipal string `json:"remaining_principal"`

	Periods     []PeriodDTO     `json:"periods"`
	Allocations []AllocationDTO `json:"allocations,omitempty"`
	Warnings    []WarningDTO    `json:"warnings,omitempty"`
	AuditRows   []AuditRowDTO   `json:"audit_rows"`
}

func toCalculationDTO(res *engine.CalculationResult) CalculationDTO {
	dto := CalculationDTO{
		Mode:               string(res.Mode),
		Principal:          res.Principal.StringFixed(2),
		Start:              res.Start.String(),
		End:                res.End.String(),
		TotalInterest:      res.TotalInterest.StringFixed(2),
		RemainingCosts:     res.RemainingCosts.StringFixed(2),
		RemainingInterest:  res.RemainingInterest.StringFixed(2),
		RemainingPrincipal: res.RemainingPrincipal.StringFixed(2),
	}
	if res.CappedTotal != nil {
		dto.CappedTotal = res.CappedTotal.StringFixed(2)
		dto.EffectiveTotal = res.EffectiveTotal().StringFixed(2)
	}

	for _, p := range res.Periods {
		pd := PeriodDTO{
			Start:         p.Start.String(),
			End:           p.End.String(),
			Days:          p.Days,
			PrincipalBase: p.PrincipalBase.StringFixed(2),
			DailyRate:     p.DailyRate.String(),
			SubInterest:   p.SubInterest.String(),
			Formula:       p.Formula,
			Capitalized:   p.Capitalized,
		}
		if !p.AnnualRatePercent.IsZero() {
			pd.AnnualRatePercent = p.AnnualRatePercent.String()
		}
		dto.Periods = append(dto.Periods, pd)
	}

	for _, a := range res.Allocations {
		dto.Allocations = append(dto.Allocations, AllocationDTO{
			Date:        a.Date.String(),
			Payment:     a.Payment.StringFixed(2),
			ToCosts:     a.ToCosts.StringFixed(2),
			ToInterest:  a.ToInterest.StringFixed(2),
			ToPrincipal: a.ToPrincipal.StringFixed(2),
			Unapplied:   a.Unapplied.StringFixed(2),
		})
	}

	for _, w := range res.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{
			Code:    string(w.Code),
			Message: w.Message,
			Date:    w.Date.String(),
			Amount:  w.Amount.StringFixed(2),
		})
	}

	for _, r := range engine.RenderAudit(res) {
		dto.AuditRows = append(dto.AuditRows, AuditRowDTO{
			Seq:           r.Seq,
			Kind:          string(r.Kind),
			Start:         r.Start,
			End:           r.End,
			Days:          r.Days,
			PrincipalBase: r.PrincipalBase,
			AnnualRate:    r.AnnualRate,
			DailyRate:     r.DailyRate,
			Formula:       r.Formula,
			Interest:      r.Interest,
			Note:          r.Note,
		})
	}

	return dto
}

// RateEntryDTO is one benchmark publication in rate listings.
type RateEntryDTO struct {
	EffectiveDate     string `json:"effective_date"`
	AnnualRatePercent string `json:"annual_rate_percent"`
}

// SectionDTO is a stored workbook section header.
type SectionDTO struct {
	ID            int64  `json:"id"`
	CaseRef       string `json:"case_ref"`
	Title         string `json:"title"`
	Mode          string `json:"mode"`
	Principal     string `json:"principal"`
	Start         string `json:"start"`
	End           string `json:"end"`
	RateBasis     string `json:"rate_basis,omitempty"`
	LegalCitation string `json:"legal_citation,omitempty"`
	TotalInterest string `json:"total_interest"`
	CappedTotal   string `json:"capped_total,omitempty"`
	Warnings      int    `json:"warnings"`
	CreatedAt     string `json:"created_at"`
}
