package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemforge/smiclean/pkg/errors"
)

func validCriteria() Criteria {
	return Criteria{
		Elements:      []string{"H", "C", "N", "O", "F", "S", "Cl", "Br"},
		MinHeavyAtoms: 2,
		MaxHeavyAtoms: 70,
		MaxMolWeight:  750,
		MinCarbons:    1,
		MaxNumRings:   10,
		MaxRingSize:   8,
		KeepStereo:    true,
	}
}

func TestCriteriaValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := validCriteria()
		assert.NoError(t, c.Validate())
	})

	t.Run("empty elements", func(t *testing.T) {
		c := validCriteria()
		c.Elements = nil
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeFilterCriteriaInvalid))
	})

	t.Run("unknown element", func(t *testing.T) {
		c := validCriteria()
		c.Elements = append(c.Elements, "Xx")
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeFilterCriteriaInvalid))
	})

	t.Run("wildcard element allowed", func(t *testing.T) {
		c := validCriteria()
		c.Elements = append(c.Elements, "*")
		assert.NoError(t, c.Validate())
	})

	t.Run("negative bound", func(t *testing.T) {
		c := validCriteria()
		c.MaxNumRings = -1
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeFilterCriteriaInvalid))
	})

	t.Run("min exceeds max", func(t *testing.T) {
		c := validCriteria()
		c.MinHeavyAtoms = 80
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeFilterCriteriaInvalid))
	})
}

func TestCriteriaStandardizeFlags(t *testing.T) {
	c := validCriteria()
	assert.False(t, c.StandardizeFlags().Any())

	c.Uncharge = true
	c.Kekulize = true
	c.KeepLargestFragment = true
	f := c.StandardizeFlags()
	assert.True(t, f.Uncharge)
	assert.True(t, f.Kekulize)
	assert.True(t, f.LargestFragment)
}
