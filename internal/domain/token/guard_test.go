package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemforge/smiclean/pkg/errors"
	"github.com/chemforge/smiclean/pkg/types/common"
)

func TestGuard_CheckSource(t *testing.T) {
	src := common.SourceRefOf("curated.smi", []byte("original contents"))
	v := NewBuilder(src).Build()
	g := NewGuard(v)

	t.Run("identical ref passes", func(t *testing.T) {
		assert.NoError(t, g.CheckSource(src))
	})

	t.Run("rewritten file fails", func(t *testing.T) {
		// Same path, different contents: one line was edited after the
		// vocabulary was built.
		edited := common.SourceRefOf("curated.smi", []byte("edited contents"))
		err := g.CheckSource(edited)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeVocabularySourceMismatch))
		assert.True(t, errors.IsFatal(err))
		// Both refs must be named so the operator sees what diverged.
		assert.Contains(t, err.Error(), src.SHA256[:12])
		assert.Contains(t, err.Error(), edited.SHA256[:12])
	})

	t.Run("different path fails", func(t *testing.T) {
		other := common.SourceRefOf("other.smi", []byte("original contents"))
		err := g.CheckSource(other)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeVocabularySourceMismatch))
		assert.Contains(t, err.Error(), "curated.smi")
		assert.Contains(t, err.Error(), "other.smi")
	})
}

func TestGuard_CheckTokens(t *testing.T) {
	tk := newTestTokenizer(t)
	src := common.SourceRefOf("curated.smi", []byte("stream"))
	b := NewBuilder(src)
	toks, err := tk.Tokenize("CC(=O)Oc1ccccc1")
	require.NoError(t, err)
	b.Add(toks)
	g := NewGuard(b.Build())

	t.Run("covered sequence passes", func(t *testing.T) {
		seq, err := tk.Tokenize("c1ccccc1C(=O)O")
		require.NoError(t, err)
		assert.NoError(t, g.CheckTokens(seq))
	})

	t.Run("missing tokens reported sorted", func(t *testing.T) {
		seq, err := tk.Tokenize("N#Sc1ccccc1")
		require.NoError(t, err)
		err = g.CheckTokens(seq)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeVocabularyMismatch))
		assert.True(t, errors.IsFatal(err))
		assert.Contains(t, err.Error(), "# N S")
	})

	t.Run("missing percent ring tokens reported", func(t *testing.T) {
		seq, err := tk.Tokenize("C%11C%12CCC%11C%12")
		require.NoError(t, err)
		err = g.CheckTokens(seq)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeVocabularyMismatch))
		assert.Contains(t, err.Error(), "%11 %12")
	})
}

func TestGuard_Check(t *testing.T) {
	tk := newTestTokenizer(t)
	src := common.SourceRefOf("curated.smi", []byte("stream"))
	b := NewBuilder(src)
	for _, s := range []string{"CCO", "c1ccccc1", "CC(=O)O"} {
		toks, err := tk.Tokenize(s)
		require.NoError(t, err)
		b.Add(toks)
	}
	g := NewGuard(b.Build())

	tokenize := func(smiles ...string) [][]string {
		var out [][]string
		for _, s := range smiles {
			toks, err := tk.Tokenize(s)
			require.NoError(t, err)
			out = append(out, toks)
		}
		return out
	}

	t.Run("vocabulary may be a superset of the stream", func(t *testing.T) {
		// The stream only uses a subset of the vocabulary's tokens.
		assert.NoError(t, g.Check(src, tokenize("CCO", "OC")))
	})

	t.Run("source check runs before token check", func(t *testing.T) {
		other := common.SourceRefOf("other.smi", []byte("stream"))
		// The sequences also contain unknown tokens, but the source
		// mismatch must be reported first.
		err := g.Check(other, tokenize("N#N"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeVocabularySourceMismatch))
	})

	t.Run("all missing tokens collected across the stream", func(t *testing.T) {
		err := g.Check(src, tokenize("CCN", "C#C"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeVocabularyMismatch))
		assert.Contains(t, err.Error(), "# N")
	})
}
