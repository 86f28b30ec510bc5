package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeChemParseFailed, "unclosed bracket atom")
	assert.Equal(t, "[CHEM_001] unclosed bracket atom", err.Error())

	withDetail := err.WithDetail("molecule=mol_42")
	assert.Equal(t, "[CHEM_001] unclosed bracket atom: molecule=mol_42", withDetail.Error())
	// Original untouched.
	assert.Empty(t, err.Detail)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "query failed"))
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(ErrCodeVocabularyMismatch, "token %11 missing")
	outer := Wrap(inner, CodeUnknown, "guard check failed")
	assert.Equal(t, ErrCodeVocabularyMismatch, outer.Code)
	assert.True(t, errors.Is(outer, outer))
	assert.True(t, IsCode(outer, ErrCodeVocabularyMismatch))
}

func TestIsCode_TraversesChain(t *testing.T) {
	base := New(ErrCodeTokenUnrecognized, "bad token")
	wrapped := fmt.Errorf("run aborted: %w", base)
	assert.True(t, IsCode(wrapped, ErrCodeTokenUnrecognized))
	assert.False(t, IsCode(wrapped, ErrCodeFilterRejected))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeVocabularyMismatch, "missing token")))
	assert.True(t, IsFatal(New(ErrCodeTokenUnrecognized, "bad token")))
	assert.False(t, IsFatal(New(ErrCodeChemParseFailed, "bad smiles")))
	assert.False(t, IsFatal(New(ErrCodeFilterRejected, "too heavy")))
	assert.False(t, IsFatal(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(errors.New("plain")))
	assert.Equal(t, ErrCodeCacheError, GetCode(New(ErrCodeCacheError, "redis down")))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "token missing from vocabulary", DefaultMessageForCode(ErrCodeVocabularyMismatch))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}
