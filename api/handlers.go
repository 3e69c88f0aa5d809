/*
handlers.go - HTTP API handlers for the interest calculation service

PURPOSE:
  Exposes the calculation engine and the audit workbook over REST.
  Handles HTTP request/response, strict JSON decoding, and delegates all
  semantics to the engine and report packages.

ENDPOINTS:
  Calculations:
    POST   /api/calculations                 Run one calculation

  Reports (audit workbook):
    POST   /api/reports/sections             Calculate and append a section
    GET    /api/reports/{caseRef}            List a case's sections
    GET    /api/reports/{caseRef}/sections/{id}  Full audit rows

  Rates:
    GET    /api/rates/{term}                 Embedded benchmark history
    GET    /api/rates/{term}/lookup?date=    Rate in force on a date

ERROR HANDLING:
  Engine errors map to JSON bodies carrying the error kind and the
  offending field verbatim - these are legally meaningful parameters the
  caller must surface unchanged:
  - 400: validation / mode-parameter errors
  - 422: date precedes the embedded rate history
  - 404: unknown case or section
  - 500: anything else

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/cosiris15/debt-review-sub000/engine"
	"github.com/cosiris15/debt-review-sub000/metrics"
	"github.com/cosiris15/debt-review-sub000/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *engine.Engine
	Rates    *engine.RateTable
	Workbook *report.Workbook
	Log      *logrus.Logger
}

// NewHandler creates a handler over the shared engine, rate table and
// workbook sink.
func NewHandler(eng *engine.Engine, rates *engine.RateTable, wb *report.Workbook, log *logrus.Logger) *Handler {
	return &Handler{Engine: eng, Rates: rates, Workbook: wb, Log: log}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate runs one calculation request.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var body CalculationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}

	res, err := h.runCalculation(&body)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"mode":    res.Mode,
		"periods": len(res.Periods),
		"total":   res.TotalInterest.StringFixed(2),
	}).Info("calculation completed")

	writeJSON(w, http.StatusOK, toCalculationDTO(res))
}

func (h *Handler) runCalculation(body *CalculationRequest) (*engine.CalculationResult, error) {
	req, err := body.toEngine()
	if err != nil {
		metrics.Calculations.WithLabelValues(body.Mode, "rejected").Inc()
		return nil, err
	}

	res, err := h.Engine.Calculate(req)
	if err != nil {
		metrics.Calculations.WithLabelValues(body.Mode, "error").Inc()
		return nil, err
	}

	metrics.Calculations.WithLabelValues(string(res.Mode), "ok").Inc()
	metrics.CalculationPeriods.Observe(float64(len(res.Periods)))
	return res, nil
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// AppendSection runs a calculation and appends it as a named workbook
// section. The section is all-or-nothing: a failed calculation writes
// nothing.
func (h *Handler) AppendSection(w http.ResponseWriter, r *http.Request) {
	var body AppendSectionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}
	if body.CaseRef == "" || body.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "case_ref and title are required", nil)
		return
	}

	res, err := h.runCalculation(&body.Calculation)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	meta := report.SectionMeta{
		CaseRef:       body.CaseRef,
		Title:         body.Title,
		LegalCitation: body.LegalCitation,
		RateBasis:     rateBasisDescription(&body.Calculation),
	}
	if h.Rates != nil {
		meta.SnapshotVersion = h.Rates.Version()
	}

	id, err := h.Workbook.AppendSection(r.Context(), meta, res)
	if err != nil {
		metrics.ReportSections.WithLabelValues("error").Inc()
		writeError(w, http.StatusConflict, "section_append_failed", "Failed to append section", err)
		return
	}
	metrics.ReportSections.WithLabelValues("ok").Inc()

	h.Log.WithFields(logrus.Fields{
		"case_ref": body.CaseRef,
		"section":  body.Title,
		"mode":     res.Mode,
	}).Info("section appended")

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"section_id": id,
		"result":     toCalculationDTO(res),
	})
}

// rateBasisDescription summarizes the rate basis for the section header.
func rateBasisDescription(c *CalculationRequest) string {
	switch engine.Mode(c.Mode) {
	case engine.ModeDelayed:
		return "statutory 0.0175% daily"
	case engine.ModeFloating, engine.ModePenalty:
		if c.Term != nil {
			return "benchmark " + *c.Term
		}
	}
	if c.AnnualRatePercent != nil {
		return c.AnnualRatePercent.String() + "% annual"
	}
	return ""
}

// ListSections returns all sections for a case.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	caseRef := chi.URLParam(r, "caseRef")

	sections, err := h.Workbook.ListSections(r.Context(), caseRef)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "Failed to list sections", err)
		return
	}
	if len(sections) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "No sections for case "+caseRef, nil)
		return
	}

	dtos := make([]SectionDTO, len(sections))
	for i, s := range sections {
		dtos[i] = SectionDTO{
			ID:            s.ID,
			CaseRef:       s.CaseRef,
			Title:         s.Title,
			Mode:          string(s.Mode),
			Principal:     s.Principal,
			Start:         s.Start,
			End:           s.End,
			RateBasis:     s.RateBasis,
			LegalCitation: s.LegalCitation,
			TotalInterest: s.TotalInterest,
			CappedTotal:   s.CappedTotal,
			Warnings:      s.Warnings,
			CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SectionRows returns the full audit-row table of one section.
func (h *Handler) SectionRows(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Section id must be numeric", err)
		return
	}

	rows, err := h.Workbook.SectionRows(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "Failed to load section", err)
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "Section not found", nil)
		return
	}

	dtos := make([]AuditRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = AuditRowDTO{
			Seq:           row.Seq,
			Kind:          string(row.Kind),
			Start:         row.Start,
			End:           row.End,
			Days:          row.Days,
			PrincipalBase: row.PrincipalBase,
			AnnualRate:    row.AnnualRate,
			DailyRate:     row.DailyRate,
			Formula:       row.Formula,
			Interest:      row.Interest,
			Note:          row.Note,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

func parseTerm(s string) (engine.Term, bool) {
	term := engine.Term(s)
	return term, term == engine.TermShort || term == engine.TermLong
}

// ListRates returns the embedded history for one term.
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	term, ok := parseTerm(chi.URLParam(r, "term"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "Unknown term", nil)
		return
	}

	entries := h.Rates.Entries(term)
	dtos := make([]RateEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = RateEntryDTO{
			EffectiveDate:     e.EffectiveDate.String(),
			AnnualRatePercent: e.AnnualRatePercent.String(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"term":             term,
		"snapshot_version": h.Rates.Version(),
		"snapshot_as_of":   h.Rates.AsOf().String(),
		"entries":          dtos,
	})
}

// LookupRate returns the rate in force on a date.
func (h *Handler) LookupRate(w http.ResponseWriter, r *http.Request) {
	term, ok := parseTerm(chi.URLParam(r, "term"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "Unknown term", nil)
		return
	}
	date, err := engine.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD", err)
		return
	}

	rate, err := h.Rates.Lookup(term, date)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"term":                string(term),
		"date":                date.String(),
		"annual_rate_percent": rate.String(),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, message string, err error) {
	body := errorBody{Kind: kind, Message: message}
	if err != nil {
		body.Detail = err.Error()
	}
	writeJSON(w, status, map[string]errorBody{"error": body})
}

// writeEngineError maps engine errors to HTTP responses, preserving the
// error kind and offending field verbatim.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	field := ""

	var ve *engine.ValidationError
	var pe *engine.InvalidParameterError
	var pde *engine.InvalidPaymentDateError
	var rnf *engine.RateNotFoundError

	switch {
	case errors.As(err, &ve):
		status, kind, field = http.StatusBadRequest, "validation_error", ve.Field
	case errors.As(err, &pe):
		status, kind, field = http.StatusBadRequest, "invalid_parameter", pe.Field
	case errors.As(err, &pde):
		status, kind, field = http.StatusBadRequest, "invalid_payment_date", "payments"
	case errors.Is(err, engine.ErrMissingCycle):
		status, kind, field = http.StatusBadRequest, "missing_cycle", "compounding_cycle"
	case errors.As(err, &rnf):
		status, kind, field = http.StatusUnprocessableEntity, "rate_not_found", "start_date"
	case engine.IsClientError(err):
		status, kind = http.StatusBadRequest, "validation_error"
	}

	if status >= http.StatusInternalServerError {
		h.Log.WithError(err).Error("calculation failed")
	}
	writeJSON(w, status, map[string]errorBody{"error": {
		Kind:    kind,
		Field:   field,
		Message: err.Error(),
	}})
}
