package chem

import (
	"math/rand"

	"github.com/chemforge/smiclean/pkg/errors"
)

// Capability names one chemistry operation an Oracle may support.  Pipeline
// construction probes the configured oracle for every capability its criteria
// require and refuses to start on a mismatch, so a missing operation can
// never surface as a silent per-molecule rejection.
type Capability string

const (
	CapParse           Capability = "parse"
	CapUncharge        Capability = "uncharge"
	CapKekulize        Capability = "kekulize"
	CapLargestFragment Capability = "largest_fragment"
	CapRandomize       Capability = "randomize"
)

// Oracle is the chemistry backend boundary.  Implementations must be safe
// for concurrent use; the curation service calls them from a worker pool.
type Oracle interface {
	// Parse converts SMILES text into a molecular graph.  Failures are
	// CHEM_001/CHEM_002 errors describing the offending input.
	Parse(smiles string) (*Mol, error)

	// Standardize applies the selected operations exactly once and returns
	// the resulting molecule.  When no operation modifies the graph, the
	// input molecule is returned with its textual form intact.
	Standardize(m *Mol, f Flags) (*Mol, error)

	// Properties computes the derived attribute set of a molecule.
	Properties(m *Mol) Properties

	// Randomize writes an equivalent SMILES string with a randomized atom
	// traversal, for dataset augmentation.
	Randomize(m *Mol, rng *rand.Rand) (string, error)

	// Supports reports whether the oracle implements the capability.
	Supports(c Capability) bool
}

// builtinOracle is the pure-Go oracle.  It supports every capability.
type builtinOracle struct{}

// NewBuiltinOracle returns the default pure-Go chemistry oracle.
func NewBuiltinOracle() Oracle { return builtinOracle{} }

func (builtinOracle) Parse(smiles string) (*Mol, error) { return ParseSMILES(smiles) }

func (builtinOracle) Standardize(m *Mol, f Flags) (*Mol, error) { return standardize(m, f) }

func (builtinOracle) Properties(m *Mol) Properties { return computeProperties(m) }

func (builtinOracle) Randomize(m *Mol, rng *rand.Rand) (string, error) {
	return WriteRandomSMILES(m, rng)
}

func (builtinOracle) Supports(Capability) bool { return true }

// RequireCapabilities verifies the oracle supports every listed capability,
// returning a CHEM_004 error naming the first one it lacks.
func RequireCapabilities(o Oracle, caps ...Capability) error {
	for _, c := range caps {
		if !o.Supports(c) {
			return errors.Newf(errors.ErrCodeChemCapabilityMissing,
				"chemistry oracle does not support %q", string(c))
		}
	}
	return nil
}
