package token

import (
	"sort"
	"strings"

	"github.com/chemforge/smiclean/pkg/errors"
	"github.com/chemforge/smiclean/pkg/types/common"
)

// Guard verifies that a downstream stage's input stream is the stream its
// vocabulary was built from.  Both checks run before the stage consumes
// anything, so a mismatch can never leave partial downstream state behind.
//
// Two independent invariants are enforced:
//
//  1. Source identity: the stream's SourceRef must equal the ref recorded in
//     the vocabulary.  A hash difference means the file was rewritten after
//     the vocabulary was built; a path difference means the stage is wired to
//     the wrong file.
//  2. Token coverage: every token occurring in the stream must be present in
//     the vocabulary.  The vocabulary may be a superset (shared across
//     datasets), never a subset.
type Guard struct {
	voc *Vocabulary
}

// NewGuard wraps a vocabulary for consistency checking.
func NewGuard(voc *Vocabulary) *Guard {
	return &Guard{voc: voc}
}

// CheckSource enforces the source identity invariant.  The returned VOC_002
// error names both refs.
func (g *Guard) CheckSource(stream common.SourceRef) error {
	if g.voc.Source().Equal(stream) {
		return nil
	}
	return errors.Newf(errors.ErrCodeVocabularySourceMismatch,
		"vocabulary was built from %s but the stage input is %s",
		g.voc.Source(), stream)
}

// CheckTokens enforces token coverage for one molecule's token sequence.
// Missing tokens are reported sorted so the error is stable across runs.
func (g *Guard) CheckTokens(tokens []string) error {
	var missing []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if seen[tok] || g.voc.Contains(tok) {
			continue
		}
		seen[tok] = true
		missing = append(missing, tok)
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.Newf(errors.ErrCodeVocabularyMismatch,
		"stream contains %d token(s) missing from the vocabulary built from %s: %s",
		len(missing), g.voc.Source(), strings.Join(missing, " "))
}

// Check runs both invariants over an entire stream of token sequences.  The
// source check runs first; token coverage is then verified across the whole
// stream so the error lists every missing token, not just the first.
func (g *Guard) Check(stream common.SourceRef, sequences [][]string) error {
	if err := g.CheckSource(stream); err != nil {
		return err
	}
	missing := make(map[string]bool)
	for _, seq := range sequences {
		for _, tok := range seq {
			if !g.voc.Contains(tok) {
				missing[tok] = true
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	list := make([]string, 0, len(missing))
	for tok := range missing {
		list = append(list, tok)
	}
	sort.Strings(list)
	return errors.Newf(errors.ErrCodeVocabularyMismatch,
		"stream %s contains %d token(s) missing from the vocabulary built from %s: %s",
		stream, len(list), g.voc.Source(), strings.Join(list, " "))
}
