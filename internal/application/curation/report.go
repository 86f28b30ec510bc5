// Package curation orchestrates the end-to-end dataset workflow: filtering a
// raw SMILES stream into a curated dataset, building the token vocabulary
// from the curated stream, and guarding downstream stages against vocabulary
// drift.
package curation

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/chemforge/smiclean/internal/domain/filter"
	"github.com/chemforge/smiclean/pkg/types/common"
)

// Report summarizes one curation run.  Rejection reasons are counted per
// criterion so dataset drift between runs is visible at a glance.
type Report struct {
	RunID  common.ID        `json:"run_id"`
	Source common.SourceRef `json:"source"`
	Output string           `json:"output"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Total counts molecules evaluated: accepted + rejected + duplicates.
	// Blank and comment lines are skipped before evaluation and counted
	// separately.
	Total      int `json:"total"`
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`

	// Reasons maps criterion name to rejection count.
	Reasons map[string]int `json:"reasons"`

	// Rejections holds the individual rejection records in input order.
	// Empty when the criteria's report_errors flag is off; the per-criterion
	// counts in Reasons are kept regardless.
	Rejections []filter.Rejection `json:"rejections,omitempty"`
}

func newReport(source common.SourceRef, output string) *Report {
	return &Report{
		RunID:     common.NewID(),
		Source:    source,
		Output:    output,
		StartedAt: time.Now().UTC(),
		Reasons:   make(map[string]int),
	}
}

func (r *Report) addRejection(rej filter.Rejection, keepRecord bool) {
	r.Rejected++
	r.Reasons[rej.Criterion]++
	if keepRecord {
		r.Rejections = append(r.Rejections, rej)
	}
}

// SuccessRate returns the accepted fraction of evaluated molecules, 0 for an
// empty run.
func (r *Report) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Total)
}

// Duration returns the wall-clock run time.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ReasonCount is one row of the per-criterion rejection summary.
type ReasonCount struct {
	Criterion string
	Count     int
}

// ReasonsSorted returns rejection reasons sorted by descending count, ties
// broken alphabetically so reports are stable.
func (r *Report) ReasonsSorted() []ReasonCount {
	out := make([]ReasonCount, 0, len(r.Reasons))
	for crit, n := range r.Reasons {
		out = append(out, ReasonCount{Criterion: crit, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Criterion < out[j].Criterion
	})
	return out
}

// Render writes the human-readable run summary.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintf(w, "run %s\n", r.RunID)
	fmt.Fprintf(w, "source: %s\n", r.Source)
	fmt.Fprintf(w, "total: %d  accepted: %d  rejected: %d  duplicates: %d  skipped: %d\n",
		r.Total, r.Accepted, r.Rejected, r.Duplicates, r.Skipped)
	fmt.Fprintf(w, "success rate: %.2f%%\n", r.SuccessRate()*100)
	if len(r.Reasons) > 0 {
		fmt.Fprintln(w, "rejections by criterion:")
		for _, rc := range r.ReasonsSorted() {
			fmt.Fprintf(w, "  %-24s %d\n", rc.Criterion, rc.Count)
		}
	}
	fmt.Fprintf(w, "elapsed: %s\n", r.Duration().Round(time.Millisecond))
}
