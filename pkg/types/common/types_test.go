package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_IsValidUUID(t *testing.T) {
	id := NewID()
	assert.NoError(t, id.Validate())
}

func TestID_Validate_Invalid(t *testing.T) {
	assert.Error(t, ID("not-a-uuid").Validate())
}

func TestNewSourceRef_HashesContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.smi")
	require.NoError(t, os.WriteFile(path, []byte("c1ccccc1\tbenzene\n"), 0o644))

	ref, err := NewSourceRef(path)
	require.NoError(t, err)
	assert.Equal(t, path, ref.Path)
	assert.Len(t, ref.SHA256, 64)

	// Same contents elsewhere: same hash, different identity.
	other := filepath.Join(dir, "copy.smi")
	require.NoError(t, os.WriteFile(other, []byte("c1ccccc1\tbenzene\n"), 0o644))
	ref2, err := NewSourceRef(other)
	require.NoError(t, err)
	assert.Equal(t, ref.SHA256, ref2.SHA256)
	assert.False(t, ref.Equal(ref2))
}

func TestSourceRef_EqualAndZero(t *testing.T) {
	a := SourceRefOf("a.smi", []byte("CCO\n"))
	b := SourceRefOf("a.smi", []byte("CCO\n"))
	c := SourceRefOf("a.smi", []byte("CCN\n"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "rewritten contents must change identity")
	assert.False(t, a.IsZero())
	assert.True(t, SourceRef{}.IsZero())
}
