// Package token provides SMILES tokenization, vocabulary construction, and
// the consistency guard that protects downstream stages from running against
// a stale or foreign vocabulary.
package token

import (
	"fmt"
	"strings"

	"github.com/chemforge/smiclean/pkg/errors"
)

// structuralChars are the SMILES punctuation characters recognized as
// single-character tokens independent of the element configuration.
const structuralChars = "()=#$-+:/\\.*@0123456789"

// TokenError pinpoints the exact location where tokenization failed.  It is
// always wrapped in a TOK_001 AppError so callers can extract the position
// and offending substring via errors.As.
type TokenError struct {
	Position  int
	Substring string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("unrecognized token %q at position %d", e.Substring, e.Position)
}

// Tokenizer splits SMILES strings into model tokens.  Element recognition is
// driven entirely by the configured element list, never hard-coded: the same
// criteria configuration that admits molecules also defines what the
// tokenizer recognizes, so the two can never drift apart silently.
//
// A tokenization failure is a configuration or alignment defect.  It is
// reported with the exact substring and position and carries a fatal error
// code; it is never folded into chemistry rejection counts.
type Tokenizer struct {
	twoChar map[string]struct{}
	oneChar map[byte]struct{}

	// aromatic holds the lowercase aromatic forms of configured elements
	// that the notation permits in aromatic form.
	aromatic map[byte]struct{}
}

// aromaticForms lists the single-letter elements with a lowercase aromatic
// notation form.  Two-letter aromatic atoms (se, as, te) only occur inside
// brackets, which tokenize as opaque units.
var aromaticForms = map[string]byte{
	"B": 'b', "C": 'c', "N": 'n', "O": 'o', "P": 'p', "S": 's',
}

// NewTokenizer builds a tokenizer recognizing exactly the given element
// symbols plus the fixed structural characters of the notation.
func NewTokenizer(elements []string) (*Tokenizer, error) {
	if len(elements) == 0 {
		return nil, errors.New(errors.ErrCodeTokenConfigEmpty,
			"tokenizer requires at least one permitted element")
	}
	t := &Tokenizer{
		twoChar:  make(map[string]struct{}),
		oneChar:  make(map[byte]struct{}),
		aromatic: make(map[byte]struct{}),
	}
	for _, el := range elements {
		el = strings.TrimSpace(el)
		switch len(el) {
		case 1:
			t.oneChar[el[0]] = struct{}{}
			if lc, ok := aromaticForms[el]; ok {
				t.aromatic[lc] = struct{}{}
			}
		case 2:
			t.twoChar[el] = struct{}{}
		default:
			return nil, errors.Newf(errors.ErrCodeTokenConfigEmpty,
				"invalid element symbol %q in tokenizer configuration", el)
		}
	}
	return t, nil
}

// Tokenize splits a SMILES string into tokens.  The concatenation of the
// returned tokens always reproduces the input exactly; on failure the error
// carries the unconsumed substring and its position.
//
// Token classes:
//   - bracket atoms "[...]" as one opaque token
//   - multi-digit ring closures "%NN" as one token, distinct from the
//     single-digit ring-closure tokens "0".."9"
//   - configured two-letter element symbols ("Cl", "Br")
//   - configured one-letter element symbols and their aromatic lowercase forms
//   - structural characters: bonds, branches, dots, digits, wildcard
func (t *Tokenizer) Tokenize(smiles string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(smiles) {
		c := smiles[i]

		switch {
		case c == '[':
			end := strings.IndexByte(smiles[i:], ']')
			if end < 0 {
				return nil, t.fail(smiles, i)
			}
			tokens = append(tokens, smiles[i:i+end+1])
			i += end + 1

		case c == '%':
			if i+2 >= len(smiles) || !isDigit(smiles[i+1]) || !isDigit(smiles[i+2]) {
				return nil, t.fail(smiles, i)
			}
			tokens = append(tokens, smiles[i:i+3])
			i += 3

		case i+1 < len(smiles) && t.isTwoChar(smiles[i:i+2]):
			tokens = append(tokens, smiles[i:i+2])
			i += 2

		case t.isOneChar(c):
			tokens = append(tokens, string(c))
			i++

		default:
			return nil, t.fail(smiles, i)
		}
	}
	return tokens, nil
}

func (t *Tokenizer) isTwoChar(s string) bool {
	_, ok := t.twoChar[s]
	return ok
}

func (t *Tokenizer) isOneChar(c byte) bool {
	if strings.IndexByte(structuralChars, c) >= 0 {
		return true
	}
	if _, ok := t.oneChar[c]; ok {
		return true
	}
	_, ok := t.aromatic[c]
	return ok
}

// fail builds the fatal tokenization error for position i, quoting a short
// window of the unconsumed input.
func (t *Tokenizer) fail(smiles string, i int) error {
	end := i + 8
	if end > len(smiles) {
		end = len(smiles)
	}
	te := &TokenError{Position: i, Substring: smiles[i:end]}
	return errors.Wrap(te, errors.ErrCodeTokenUnrecognized, "cannot tokenize SMILES")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
