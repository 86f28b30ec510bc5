package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// SourceRef is the stable identity of a dataset: the path it was read from
// plus the SHA-256 of its contents.  A vocabulary records the SourceRef of
// the stream it was built from, and every downstream consumer declares the
// SourceRef of the stream it is about to read.  Two refs are the same source
// of truth only when both fields match; a differing hash means the file was
// rewritten, a differing path means a different pipeline stage configuration.
type SourceRef struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// NewSourceRef computes the SourceRef of the file at path by hashing its
// contents.  The file is read sequentially and never held in memory.
func NewSourceRef(path string) (SourceRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return SourceRef{}, fmt.Errorf("common: cannot open source %q: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return SourceRef{}, fmt.Errorf("common: cannot hash source %q: %w", path, err)
	}
	return SourceRef{Path: path, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

// SourceRefOf builds a SourceRef for in-memory data.  Used by tests and by
// callers that receive the stream over the network rather than from a file.
func SourceRefOf(name string, data []byte) SourceRef {
	sum := sha256.Sum256(data)
	return SourceRef{Path: name, SHA256: hex.EncodeToString(sum[:])}
}

// Equal reports whether two refs identify the same source of truth.
func (r SourceRef) Equal(other SourceRef) bool {
	return r.Path == other.Path && r.SHA256 == other.SHA256
}

// IsZero reports whether the ref is unset.
func (r SourceRef) IsZero() bool { return r.Path == "" && r.SHA256 == "" }

func (r SourceRef) String() string {
	if r.SHA256 == "" {
		return r.Path
	}
	return fmt.Sprintf("%s (sha256:%s)", r.Path, r.SHA256[:12])
}
