// Package filter implements the molecule curation pipeline: parse,
// standardize once, evaluate criteria in a fixed order, and emit either an
// accepted molecule record or a rejection record naming the first failing
// criterion.
package filter

import (
	"github.com/chemforge/smiclean/internal/domain/chem"
	"github.com/chemforge/smiclean/pkg/types/common"
)

// Input is one raw molecule entering the pipeline.
type Input struct {
	// Name identifies the molecule in reports.  Callers that read bare
	// SMILES files synthesize a name from the line number.
	Name string

	// SMILES is the raw structure text as read from the source.
	SMILES string

	// Line is the 1-based source line, 0 when unknown.
	Line int
}

// Record is an accepted molecule: its curated structure, derived properties,
// and token sequence.  The SMILES field holds the standardized text when any
// standardization operation modified the molecule, otherwise the original.
type Record struct {
	ID     common.ID       `json:"id"`
	Name   string          `json:"name"`
	SMILES string          `json:"smiles"`
	Line   int             `json:"line,omitempty"`
	Tokens []string        `json:"tokens"`
	Props  chem.Properties `json:"-"`
}

// Rejection names the single criterion that removed a molecule.  Exactly one
// criterion is recorded even when several would fail; evaluation stops at the
// first, so rejection counts are reproducible.
type Rejection struct {
	ID        common.ID `json:"id"`
	Name      string    `json:"name"`
	SMILES    string    `json:"smiles"`
	Line      int       `json:"line,omitempty"`
	Criterion string    `json:"criterion"`
	Reason    string    `json:"reason"`
}

// Result is the outcome for one molecule: exactly one of Record or Rejection
// is set.
type Result struct {
	Record    *Record
	Rejection *Rejection
}

// Accepted reports whether the molecule passed every criterion.
func (r *Result) Accepted() bool { return r.Record != nil }
