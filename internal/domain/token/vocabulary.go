package token

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chemforge/smiclean/pkg/errors"
	"github.com/chemforge/smiclean/pkg/types/common"
)

// Vocabulary is the immutable token table built from one curated stream.
// Token indices are assigned in first-seen order and never change once the
// vocabulary is built, so downstream encodings are reproducible.
type Vocabulary struct {
	index map[string]int
	order []string
	freq  map[string]int

	// maxRing is the highest ring-closure number observed across the
	// stream, recorded so sequence models can size their ring embedding.
	maxRing int

	source common.SourceRef
	built  time.Time
}

// Len returns the number of distinct tokens.
func (v *Vocabulary) Len() int { return len(v.order) }

// Index returns the index of a token and whether it is present.
func (v *Vocabulary) Index(tok string) (int, bool) {
	i, ok := v.index[tok]
	return i, ok
}

// Contains reports whether the token is in the vocabulary.
func (v *Vocabulary) Contains(tok string) bool {
	_, ok := v.index[tok]
	return ok
}

// Tokens returns the tokens in index order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Frequency returns how many times the token occurred in the source stream.
func (v *Vocabulary) Frequency(tok string) int { return v.freq[tok] }

// MaxRingClosure returns the highest ring-closure number observed.
func (v *Vocabulary) MaxRingClosure() int { return v.maxRing }

// Source returns the SourceRef of the stream this vocabulary was built from.
func (v *Vocabulary) Source() common.SourceRef { return v.source }

// CreatedAt returns when the vocabulary was built.
func (v *Vocabulary) CreatedAt() time.Time { return v.built }

// ringClosureValue returns the ring-closure number a token denotes, or -1
// when the token is not a ring closure.  Single digits and the %NN form are
// the only ring-closure token shapes.
func ringClosureValue(tok string) int {
	switch {
	case len(tok) == 1 && tok[0] >= '0' && tok[0] <= '9':
		return int(tok[0] - '0')
	case len(tok) == 3 && tok[0] == '%':
		n, err := strconv.Atoi(tok[1:])
		if err != nil {
			return -1
		}
		return n
	}
	return -1
}

// Builder accumulates tokens from a curated stream into a Vocabulary.  One
// builder consumes exactly one stream; the stream's SourceRef is fixed at
// construction and stamped into the result.
type Builder struct {
	voc *Vocabulary
}

// NewBuilder starts a vocabulary build over the stream identified by source.
func NewBuilder(source common.SourceRef) *Builder {
	return &Builder{voc: &Vocabulary{
		index:  make(map[string]int),
		freq:   make(map[string]int),
		source: source,
	}}
}

// Add folds one molecule's token sequence into the vocabulary.
func (b *Builder) Add(tokens []string) {
	v := b.voc
	for _, tok := range tokens {
		if _, ok := v.index[tok]; !ok {
			v.index[tok] = len(v.order)
			v.order = append(v.order, tok)
		}
		v.freq[tok]++
		if n := ringClosureValue(tok); n > v.maxRing {
			v.maxRing = n
		}
	}
}

// Build finalizes and returns the vocabulary.  The builder must not be used
// afterwards.
func (b *Builder) Build() *Vocabulary {
	v := b.voc
	v.built = time.Now().UTC()
	b.voc = nil
	return v
}

// vocabularyFile is the JSON artifact layout.  Indices are implicit in the
// token array order.
type vocabularyFile struct {
	Tokens         []string         `json:"tokens"`
	Frequencies    map[string]int   `json:"frequencies"`
	MaxRingClosure int              `json:"max_ring_closure"`
	Source         common.SourceRef `json:"source"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Save writes the vocabulary as a JSON artifact.
func (v *Vocabulary) Save(path string) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot write vocabulary artifact")
	}
	return nil
}

// MarshalJSON renders the artifact form.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	f := vocabularyFile{
		Tokens:         v.order,
		Frequencies:    v.freq,
		MaxRingClosure: v.maxRing,
		Source:         v.source,
		CreatedAt:      v.built,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "cannot marshal vocabulary")
	}
	return data, nil
}

// LoadVocabulary reads a vocabulary artifact from disk.  Structural defects
// in the artifact (duplicate tokens, impossible metadata) are VOC_003 errors.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVocabularyCorrupt, "cannot read vocabulary artifact")
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes the JSON artifact form.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var f vocabularyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVocabularyCorrupt, "cannot decode vocabulary artifact")
	}
	if len(f.Tokens) == 0 {
		return nil, errors.New(errors.ErrCodeVocabularyCorrupt, "vocabulary artifact has no tokens")
	}
	if f.MaxRingClosure > 99 {
		return nil, errors.Newf(errors.ErrCodeVocabularyRingOverflow,
			"max ring closure %d exceeds the notation ceiling", f.MaxRingClosure)
	}

	v := &Vocabulary{
		index:   make(map[string]int, len(f.Tokens)),
		order:   f.Tokens,
		freq:    f.Frequencies,
		maxRing: f.MaxRingClosure,
		source:  f.Source,
		built:   f.CreatedAt,
	}
	if v.freq == nil {
		v.freq = make(map[string]int)
	}
	for i, tok := range f.Tokens {
		if _, dup := v.index[tok]; dup {
			return nil, errors.Newf(errors.ErrCodeVocabularyCorrupt,
				"duplicate token %q in vocabulary artifact", tok)
		}
		v.index[tok] = i
	}
	return v, nil
}

// Summary returns a one-line description for logs.
func (v *Vocabulary) Summary() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(v.order)))
	sb.WriteString(" tokens, max ring ")
	sb.WriteString(strconv.Itoa(v.maxRing))
	sb.WriteString(", source ")
	sb.WriteString(v.source.String())
	return sb.String()
}
