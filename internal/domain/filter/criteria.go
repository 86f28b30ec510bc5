package filter

import (
	"github.com/chemforge/smiclean/internal/domain/chem"
	"github.com/chemforge/smiclean/pkg/errors"
)

// Criteria is the declarative filter configuration.  Numeric bounds set to
// zero are disabled; the element list is mandatory because it also drives
// tokenizer recognition.
type Criteria struct {
	// Elements lists the permitted element symbols.  A molecule containing
	// any other element is rejected, and the tokenizer recognizes exactly
	// these symbols outside brackets.
	Elements []string `mapstructure:"elements" json:"elements"`

	MinHeavyAtoms int     `mapstructure:"min_heavy_atoms" json:"min_heavy_atoms"`
	MaxHeavyAtoms int     `mapstructure:"max_heavy_atoms" json:"max_heavy_atoms"`
	MaxMolWeight  float64 `mapstructure:"max_mol_weight" json:"max_mol_weight"`
	MinCarbons    int     `mapstructure:"min_carbons" json:"min_carbons"`
	MaxNumRings   int     `mapstructure:"max_num_rings" json:"max_num_rings"`
	MaxRingSize   int     `mapstructure:"max_ring_size" json:"max_ring_size"`

	// KeepStereo and KeepIsotopes admit molecules carrying those features;
	// when false the corresponding criterion rejects them.
	KeepStereo   bool `mapstructure:"keep_stereo" json:"keep_stereo"`
	KeepIsotopes bool `mapstructure:"keep_isotope_molecules" json:"keep_isotope_molecules"`

	// Standardization toggles, applied once before any criterion.
	Uncharge            bool `mapstructure:"uncharge" json:"uncharge"`
	Kekulize            bool `mapstructure:"kekulize" json:"kekulize"`
	KeepLargestFragment bool `mapstructure:"keep_largest_fragment" json:"keep_largest_fragment"`

	// RandomizeSMILES rewrites each accepted molecule with a randomized atom
	// traversal, a common augmentation for generative-model corpora.  The
	// randomization is seeded per input line so runs stay reproducible.
	RandomizeSMILES bool `mapstructure:"randomize_smiles" json:"randomize_smiles"`

	// ReportErrors retains the individual rejection records in the run
	// report; per-criterion counts are kept either way.
	ReportErrors bool `mapstructure:"report_errors" json:"report_errors"`
}

// Validate checks structural soundness of the criteria.  All violations are
// FLT_001 configuration errors.
func (c *Criteria) Validate() error {
	if len(c.Elements) == 0 {
		return errors.New(errors.ErrCodeFilterCriteriaInvalid, "elements list must not be empty")
	}
	for _, el := range c.Elements {
		if el != "*" && !chem.KnownElement(el) {
			return errors.Newf(errors.ErrCodeFilterCriteriaInvalid,
				"unknown element %q in criteria", el)
		}
	}
	if c.MinHeavyAtoms < 0 || c.MaxHeavyAtoms < 0 || c.MinCarbons < 0 ||
		c.MaxNumRings < 0 || c.MaxRingSize < 0 || c.MaxMolWeight < 0 {
		return errors.New(errors.ErrCodeFilterCriteriaInvalid, "criteria bounds must not be negative")
	}
	if c.MaxHeavyAtoms > 0 && c.MinHeavyAtoms > c.MaxHeavyAtoms {
		return errors.Newf(errors.ErrCodeFilterCriteriaInvalid,
			"min_heavy_atoms %d exceeds max_heavy_atoms %d", c.MinHeavyAtoms, c.MaxHeavyAtoms)
	}
	return nil
}

// ElementSet returns the permitted elements as a lookup set.
func (c *Criteria) ElementSet() map[string]bool {
	set := make(map[string]bool, len(c.Elements))
	for _, el := range c.Elements {
		set[el] = true
	}
	return set
}

// StandardizeFlags maps the criteria's standardization toggles onto the
// chemistry oracle's operation flags.
func (c *Criteria) StandardizeFlags() chem.Flags {
	return chem.Flags{
		Uncharge:        c.Uncharge,
		Kekulize:        c.Kekulize,
		LargestFragment: c.KeepLargestFragment,
	}
}

// requiredCapabilities lists the oracle capabilities the criteria exercise.
func (c *Criteria) requiredCapabilities() []chem.Capability {
	caps := []chem.Capability{chem.CapParse}
	if c.Uncharge {
		caps = append(caps, chem.CapUncharge)
	}
	if c.Kekulize {
		caps = append(caps, chem.CapKekulize)
	}
	if c.KeepLargestFragment {
		caps = append(caps, chem.CapLargestFragment)
	}
	if c.RandomizeSMILES {
		caps = append(caps, chem.CapRandomize)
	}
	return caps
}
