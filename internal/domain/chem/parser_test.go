package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemforge/smiclean/pkg/errors"
)

func TestParseSMILES_ValidStructures(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		atoms  int
		bonds  int
	}{
		{"methane", "C", 1, 0},
		{"ethanol", "CCO", 3, 2},
		{"acetic acid", "CC(=O)O", 4, 3},
		{"benzene", "c1ccccc1", 6, 6},
		{"cyclopropane", "C1CC1", 3, 3},
		{"acetonitrile", "CC#N", 3, 2},
		{"salt pair", "[Na+].[Cl-]", 2, 0},
		{"trans-difluoroethene", "F/C=C/F", 4, 3},
		{"percent ring closure", "C%12CCCCC%12", 6, 6},
		{"naphthalene", "c1ccc2ccccc2c1", 10, 11},
		{"chlorobenzene", "Clc1ccccc1", 7, 7},
		{"wildcard", "*C", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			assert.Len(t, m.Atoms, tt.atoms)
			assert.Len(t, m.Bonds, tt.bonds)
			assert.Equal(t, tt.smiles, m.SMILES())
		})
	}
}

func TestParseSMILES_BracketAtomAttributes(t *testing.T) {
	m, err := ParseSMILES("[13CH4]")
	require.NoError(t, err)
	require.Len(t, m.Atoms, 1)
	assert.Equal(t, 13, m.Atoms[0].Isotope)
	assert.Equal(t, 4, m.Atoms[0].HCount)
	assert.Equal(t, "C", m.Atoms[0].Symbol)

	m, err = ParseSMILES("[NH4+]")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Atoms[0].Charge)
	assert.Equal(t, 4, m.Atoms[0].HCount)

	m, err = ParseSMILES("[O-2]")
	require.NoError(t, err)
	assert.Equal(t, -2, m.Atoms[0].Charge)

	m, err = ParseSMILES("[Fe++]")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Atoms[0].Charge)
	assert.Equal(t, "Fe", m.Atoms[0].Symbol)

	m, err = ParseSMILES("[C@@H](F)(Cl)Br")
	require.NoError(t, err)
	assert.Equal(t, "@@", m.Atoms[0].Chirality)
	assert.Equal(t, 1, m.Atoms[0].HCount)

	m, err = ParseSMILES("[CH3:7]C")
	require.NoError(t, err)
	assert.Equal(t, 7, m.Atoms[0].Class)

	// Aromatic two-letter bracket symbol.
	m, err = ParseSMILES("c1cc[se]c1")
	require.NoError(t, err)
	assert.Equal(t, "Se", m.Atoms[3].Symbol)
	assert.True(t, m.Atoms[3].Aromatic)
}

func TestParseSMILES_Errors(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		code   errors.ErrorCode
	}{
		{"empty", "", errors.ErrCodeChemParseFailed},
		{"blank", "   ", errors.ErrCodeChemParseFailed},
		{"unclosed branch", "C(C", errors.ErrCodeChemParseFailed},
		{"unmatched close", "C)C", errors.ErrCodeChemParseFailed},
		{"unclosed ring", "C1CC", errors.ErrCodeChemParseFailed},
		{"double bond symbol", "C==C", errors.ErrCodeChemParseFailed},
		{"dangling bond", "CC=", errors.ErrCodeChemParseFailed},
		{"bond before fragment dot", "C=.C", errors.ErrCodeChemParseFailed},
		{"unterminated bracket", "[CH3", errors.ErrCodeChemParseFailed},
		{"unknown element bare", "X", errors.ErrCodeChemUnknownElement},
		{"unknown element bracket", "[Xx]", errors.ErrCodeChemUnknownElement},
		{"metal outside brackets", "NaCl", errors.ErrCodeChemParseFailed},
		{"self ring closure", "C11", errors.ErrCodeChemParseFailed},
		{"ring bond conflict", "C=1CC#1", errors.ErrCodeChemParseFailed},
		{"short percent closure", "C%1", errors.ErrCodeChemParseFailed},
		{"non-aromatic lowercase", "i1cccc1", errors.ErrCodeChemParseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSMILES(tt.smiles)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestComputeProperties(t *testing.T) {
	t.Run("ethanol", func(t *testing.T) {
		m, err := ParseSMILES("CCO")
		require.NoError(t, err)
		p := computeProperties(m)
		assert.Equal(t, 3, p.HeavyAtoms)
		assert.Equal(t, 2, p.NumCarbons)
		assert.Equal(t, 0, p.RingCount)
		assert.Equal(t, 0, p.MaxRingSize)
		assert.InDelta(t, 46.069, p.MolWeight, 0.01)
		assert.False(t, p.HasStereo)
		assert.False(t, p.HasIsotope)
	})

	t.Run("benzene", func(t *testing.T) {
		m, err := ParseSMILES("c1ccccc1")
		require.NoError(t, err)
		p := computeProperties(m)
		assert.Equal(t, 6, p.HeavyAtoms)
		assert.Equal(t, 6, p.NumCarbons)
		assert.Equal(t, 1, p.RingCount)
		assert.Equal(t, 6, p.MaxRingSize)
		assert.InDelta(t, 78.114, p.MolWeight, 0.01)
	})

	t.Run("naphthalene rings", func(t *testing.T) {
		m, err := ParseSMILES("c1ccc2ccccc2c1")
		require.NoError(t, err)
		p := computeProperties(m)
		assert.Equal(t, 2, p.RingCount)
		assert.Equal(t, 6, p.MaxRingSize)
		assert.Equal(t, 10, p.HeavyAtoms)
	})

	t.Run("cyclopropane ring size", func(t *testing.T) {
		m, err := ParseSMILES("C1CC1")
		require.NoError(t, err)
		p := computeProperties(m)
		assert.Equal(t, 1, p.RingCount)
		assert.Equal(t, 3, p.MaxRingSize)
	})

	t.Run("stereo markers", func(t *testing.T) {
		m, err := ParseSMILES("F/C=C/F")
		require.NoError(t, err)
		assert.True(t, computeProperties(m).HasStereo)

		m, err = ParseSMILES("[C@@H](F)(Cl)Br")
		require.NoError(t, err)
		assert.True(t, computeProperties(m).HasStereo)
	})

	t.Run("isotope", func(t *testing.T) {
		m, err := ParseSMILES("[13CH4]")
		require.NoError(t, err)
		p := computeProperties(m)
		assert.True(t, p.HasIsotope)
		assert.InDelta(t, 13+4*1.008, p.MolWeight, 0.01)
	})

	t.Run("element multiset", func(t *testing.T) {
		m, err := ParseSMILES("Clc1ccccc1")
		require.NoError(t, err)
		p := computeProperties(m)
		assert.Equal(t, 1, p.Elements["Cl"])
		assert.Equal(t, 6, p.Elements["C"])
	})
}
