package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosiris15/debt-review-sub000/engine"
	"github.com/cosiris15/debt-review-sub000/report"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func openWorkbook(t *testing.T) *report.Workbook {
	t.Helper()
	wb, err := report.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func sampleResult(t *testing.T) *engine.CalculationResult {
	t.Helper()
	table, err := engine.NewRateTable([]engine.RateEntry{
		{Term: engine.TermShort, EffectiveDate: engine.NewDate(2019, time.August, 20),
			AnnualRatePercent: decimal.RequireFromString("4.25")},
	})
	require.NoError(t, err)

	res, err := engine.New(table).Calculate(engine.CalculationRequest{
		Principal: decimal.RequireFromString("100000"),
		Start:     engine.NewDate(2024, time.January, 1),
		End:       engine.NewDate(2024, time.December, 31),
		Params: engine.SimpleParams{
			AnnualRatePercent: decimal.RequireFromString("4.35"),
			Basis:             engine.Basis360,
		},
	})
	require.NoError(t, err)
	return res
}

func meta(caseRef, title string) report.SectionMeta {
	return report.SectionMeta{
		CaseRef:         caseRef,
		Title:           title,
		RateBasis:       "4.35% annual",
		LegalCitation:   "loan agreement art. 5",
		SnapshotVersion: "test.1",
	}
}

// =============================================================================
// APPEND AND READ BACK
// =============================================================================

func TestWorkbook_AppendAndReadBack(t *testing.T) {
	// GIVEN: An empty workbook
	// WHEN: Appending one calculation as a section
	// THEN: The header and every audit row read back exactly as rendered

	wb := openWorkbook(t)
	res := sampleResult(t)

	id, err := wb.AppendSection(context.Background(), meta("BK-2024-001", "contract interest"), res)
	require.NoError(t, err)
	require.Positive(t, id)

	sections, err := wb.ListSections(context.Background(), "BK-2024-001")
	require.NoError(t, err)
	require.Len(t, sections, 1)

	s := sections[0]
	assert.Equal(t, "contract interest", s.Title)
	assert.Equal(t, engine.ModeSimple, s.Mode)
	assert.Equal(t, "4422.50", s.TotalInterest)
	assert.Equal(t, "loan agreement art. 5", s.LegalCitation)

	rows, err := wb.SectionRows(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, engine.RenderAudit(res), rows,
		"stored rows must be byte-identical to the rendered audit trail")
}

func TestWorkbook_SectionsAppendWithoutDisturbingOthers(t *testing.T) {
	// GIVEN: A workbook with one section for a case
	// WHEN: Appending a second section for the same case
	// THEN: Both sections are listed oldest first, the first untouched

	wb := openWorkbook(t)
	res := sampleResult(t)
	ctx := context.Background()

	first, err := wb.AppendSection(ctx, meta("BK-2024-002", "contract interest"), res)
	require.NoError(t, err)

	firstRows, err := wb.SectionRows(ctx, first)
	require.NoError(t, err)

	_, err = wb.AppendSection(ctx, meta("BK-2024-002", "penalty interest"), res)
	require.NoError(t, err)

	sections, err := wb.ListSections(ctx, "BK-2024-002")
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "contract interest", sections[0].Title)
	assert.Equal(t, "penalty interest", sections[1].Title)

	rowsAfter, err := wb.SectionRows(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, firstRows, rowsAfter)
}

func TestWorkbook_CasesAreIsolated(t *testing.T) {
	wb := openWorkbook(t)
	res := sampleResult(t)
	ctx := context.Background()

	_, err := wb.AppendSection(ctx, meta("BK-2024-003", "contract interest"), res)
	require.NoError(t, err)

	sections, err := wb.ListSections(ctx, "BK-2024-999")
	require.NoError(t, err)
	assert.Empty(t, sections)
}

// =============================================================================
// APPEND-ONLY AND ALL-OR-NOTHING
// =============================================================================

func TestWorkbook_DuplicateTitleRejectedAtomically(t *testing.T) {
	// GIVEN: A section already named for a case
	// WHEN: Appending another section under the same name
	// THEN: The append fails and the workbook is unchanged

	wb := openWorkbook(t)
	res := sampleResult(t)
	ctx := context.Background()

	_, err := wb.AppendSection(ctx, meta("BK-2024-004", "contract interest"), res)
	require.NoError(t, err)

	_, err = wb.AppendSection(ctx, meta("BK-2024-004", "contract interest"), res)
	require.Error(t, err, "sections are superseded by new names, never overwritten")

	sections, err := wb.ListSections(ctx, "BK-2024-004")
	require.NoError(t, err)
	assert.Len(t, sections, 1)
}

func TestWorkbook_MetadataRequired(t *testing.T) {
	wb := openWorkbook(t)
	res := sampleResult(t)

	_, err := wb.AppendSection(context.Background(), report.SectionMeta{Title: "no case"}, res)
	require.Error(t, err)

	_, err = wb.AppendSection(context.Background(), report.SectionMeta{CaseRef: "no title"}, res)
	require.Error(t, err)
}

func TestWorkbook_UnknownSectionHasNoRows(t *testing.T) {
	wb := openWorkbook(t)

	rows, err := wb.SectionRows(context.Background(), 424242)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
