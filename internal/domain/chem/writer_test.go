package chem

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reparsable SMILES inputs whose written form must describe the same graph.
var roundTripInputs = []string{
	"C",
	"CCO",
	"CC(=O)O",
	"c1ccccc1",
	"C1CC1",
	"c1ccc2ccccc2c1",
	"[Na+].[Cl-]",
	"CC(C)(C)c1ccc(O)cc1",
	"[13CH4]",
	"F/C=C/F",
	"N#Cc1ccccc1",
	"[NH4+]",
	"C%12CCCCC%12",
}

func TestWriteSMILES_RoundTrip(t *testing.T) {
	for _, in := range roundTripInputs {
		t.Run(in, func(t *testing.T) {
			m, err := ParseSMILES(in)
			require.NoError(t, err)

			out, err := WriteSMILES(m)
			require.NoError(t, err)

			m2, err := ParseSMILES(out)
			require.NoError(t, err, "written form %q must reparse", out)
			assert.Len(t, m2.Atoms, len(m.Atoms))
			assert.Len(t, m2.Bonds, len(m.Bonds))

			p1, p2 := computeProperties(m), computeProperties(m2)
			assert.Equal(t, p1.HeavyAtoms, p2.HeavyAtoms)
			assert.Equal(t, p1.RingCount, p2.RingCount)
			assert.Equal(t, p1.MaxRingSize, p2.MaxRingSize)
			assert.Equal(t, p1.Elements, p2.Elements)
			assert.InDelta(t, p1.MolWeight, p2.MolWeight, 0.001)
		})
	}
}

func TestWriteSMILES_Deterministic(t *testing.T) {
	m, err := ParseSMILES("CC(C)(C)c1ccc(O)cc1")
	require.NoError(t, err)
	a, err := WriteSMILES(m)
	require.NoError(t, err)
	b, err := WriteSMILES(m)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteSMILES_RingNumbersReused(t *testing.T) {
	// Two disjoint rings in one fragment: the first closure ends before the
	// second opens, so both reuse digit 1 and no "2" appears in the output.
	m, err := ParseSMILES("C1CC1C1CC1")
	require.NoError(t, err)

	out, err := WriteSMILES(m)
	require.NoError(t, err)
	assert.NotContains(t, out, "2")

	m2, err := ParseSMILES(out)
	require.NoError(t, err, "written form %q must reparse", out)
	p := computeProperties(m2)
	assert.Equal(t, 2, p.RingCount)
	assert.Equal(t, 6, p.HeavyAtoms)
}

func TestWriteSMILES_EmptyMol(t *testing.T) {
	_, err := WriteSMILES(&Mol{})
	assert.Error(t, err)
}

func TestWriteRandomSMILES(t *testing.T) {
	m, err := ParseSMILES("CC(C)(C)c1ccc(O)cc1")
	require.NoError(t, err)
	p := computeProperties(m)

	// Every randomized rendition must describe the identical graph.
	for seed := int64(0); seed < 8; seed++ {
		rng := rand.New(rand.NewSource(seed))
		out, err := WriteRandomSMILES(m, rng)
		require.NoError(t, err)

		m2, err := ParseSMILES(out)
		require.NoError(t, err, "randomized form %q must reparse", out)
		p2 := computeProperties(m2)
		assert.Equal(t, p.HeavyAtoms, p2.HeavyAtoms)
		assert.Equal(t, p.RingCount, p2.RingCount)
		assert.Equal(t, p.Elements, p2.Elements)
		assert.InDelta(t, p.MolWeight, p2.MolWeight, 0.001)
	}
}

func TestWriteRandomSMILES_SameSeedSameOutput(t *testing.T) {
	m, err := ParseSMILES("c1ccc2ccccc2c1")
	require.NoError(t, err)

	a, err := WriteRandomSMILES(m, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := WriteRandomSMILES(m, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
