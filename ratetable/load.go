/*
Package ratetable embeds the versioned benchmark rate snapshot.

PURPOSE:
  The engine needs the historical loan prime rate (LPR) history as a
  static, versioned artifact bundled with the binary: rates are versioned
  data, not configuration. The snapshot carries an explicit as-of date so
  stale-data risk is visible to operators and reviewers.

FORMAT:
  snapshot.xml groups rate entries by term. Only change dates are listed;
  a rate stays in force until the next entry supersedes it. The file is
  parsed once at startup; a malformed snapshot fails the process fast.

SEE ALSO:
  - engine/ratetable.go: lookup semantics over the loaded table
*/
package ratetable

import (
	_ "embed"
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/cosiris15/debt-review-sub000/engine"
)

//go:embed snapshot.xml
var snapshotXML []byte

// Load parses the embedded snapshot into an immutable rate table.
func Load() (*engine.RateTable, error) {
	return Parse(snapshotXML)
}

// Parse builds a rate table from snapshot XML. Split out from Load so tests
// can exercise malformed documents.
func Parse(raw []byte) (*engine.RateTable, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("rate snapshot: %w", err)
	}

	root := doc.SelectElement("RateTable")
	if root == nil {
		return nil, fmt.Errorf("rate snapshot: missing RateTable root")
	}

	var entries []engine.RateEntry
	for _, termEl := range root.SelectElements("Term") {
		term := engine.Term(termEl.SelectAttrValue("id", ""))
		if term != engine.TermShort && term != engine.TermLong {
			return nil, fmt.Errorf("rate snapshot: unknown term %q", term)
		}

		for _, rateEl := range termEl.SelectElements("Rate") {
			effective, err := engine.ParseDate(rateEl.SelectAttrValue("effective", ""))
			if err != nil {
				return nil, fmt.Errorf("rate snapshot: term %s: bad effective date: %w", term, err)
			}
			percent, err := decimal.NewFromString(rateEl.SelectAttrValue("percent", ""))
			if err != nil {
				return nil, fmt.Errorf("rate snapshot: term %s %s: bad percent: %w", term, effective, err)
			}
			entries = append(entries, engine.RateEntry{
				Term:              term,
				EffectiveDate:     effective,
				AnnualRatePercent: percent,
			})
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("rate snapshot: no rate entries")
	}

	table, err := engine.NewRateTable(entries)
	if err != nil {
		return nil, fmt.Errorf("rate snapshot: %w", err)
	}

	version := root.SelectAttrValue("version", "")
	asOf, err := engine.ParseDate(root.SelectAttrValue("as-of", ""))
	if err != nil {
		return nil, fmt.Errorf("rate snapshot: bad as-of date: %w", err)
	}
	return table.WithProvenance(version, asOf), nil
}
