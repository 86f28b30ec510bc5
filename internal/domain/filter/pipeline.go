package filter

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/chemforge/smiclean/internal/domain/chem"
	"github.com/chemforge/smiclean/internal/domain/token"
	"github.com/chemforge/smiclean/pkg/errors"
	"github.com/chemforge/smiclean/pkg/types/common"
)

// Criterion names identify the rejection cause in records and reports.  They
// are part of the report format and must stay stable.
const (
	CriterionUnparseable     = "unparseable"
	CriterionStandardization = "standardization_failed"
	CriterionElements        = "element_not_allowed"
	CriterionMinHeavyAtoms   = "min_heavy_atoms"
	CriterionMaxHeavyAtoms   = "max_heavy_atoms"
	CriterionMaxMolWeight    = "max_mol_weight"
	CriterionMinCarbons      = "min_carbons"
	CriterionMaxNumRings     = "max_num_rings"
	CriterionMaxRingSize     = "max_ring_size"
	CriterionStereo          = "stereo_not_permitted"
	CriterionIsotope         = "isotope_not_permitted"
)

// Pipeline evaluates molecules against a fixed criteria order.  Molecules
// are processed independently; a Pipeline is safe for concurrent use.
type Pipeline struct {
	criteria  Criteria
	elements  map[string]bool
	flags     chem.Flags
	oracle    chem.Oracle
	tokenizer *token.Tokenizer
}

// NewPipeline validates the criteria, probes the oracle for every capability
// the criteria require, and builds the tokenizer from the same element list
// the criteria admit.  Construction fails rather than letting a capability
// or configuration gap surface later as a silent rejection.
func NewPipeline(c Criteria, oracle chem.Oracle) (*Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := chem.RequireCapabilities(oracle, c.requiredCapabilities()...); err != nil {
		return nil, err
	}
	tk, err := token.NewTokenizer(c.Elements)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		criteria:  c,
		elements:  c.ElementSet(),
		flags:     c.StandardizeFlags(),
		oracle:    oracle,
		tokenizer: tk,
	}, nil
}

// Criteria returns the pipeline's configuration.
func (p *Pipeline) Criteria() Criteria { return p.criteria }

// Tokenizer exposes the pipeline's tokenizer so vocabulary construction uses
// the identical recognition tables.
func (p *Pipeline) Tokenizer() *token.Tokenizer { return p.tokenizer }

// Process runs one molecule through parse, one standardization pass, the
// fixed criteria order, and tokenization.  Chemistry failures and criterion
// failures become Rejection results; the returned error is non-nil only for
// fatal faults (tokenizer misalignment), which must abort the whole run.
//
// Criteria are evaluated in a fixed documented order and evaluation stops at
// the first failure:
//
//	unparseable, standardization, element-allowed, min-heavy-atoms,
//	max-heavy-atoms, max-mol-weight, min-carbons, max-num-rings,
//	max-ring-size, stereo, isotope
func (p *Pipeline) Process(in Input) (*Result, error) {
	mol, err := p.oracle.Parse(in.SMILES)
	if err != nil {
		return p.reject(in, CriterionUnparseable, err.Error()), nil
	}

	mol, err = p.oracle.Standardize(mol, p.flags)
	if err != nil {
		if errors.IsFatal(err) {
			return nil, err
		}
		return p.reject(in, CriterionStandardization, err.Error()), nil
	}

	props := p.oracle.Properties(mol)

	if crit, reason := p.evaluate(props); crit != "" {
		return p.reject(in, crit, reason), nil
	}

	text := mol.SMILES()
	if p.criteria.RandomizeSMILES {
		rng := rand.New(rand.NewSource(randomizeSeed(in)))
		text, err = p.oracle.Randomize(mol, rng)
		if err != nil {
			if errors.IsFatal(err) {
				return nil, err
			}
			return p.reject(in, CriterionStandardization, err.Error()), nil
		}
	}

	tokens, err := p.tokenizer.Tokenize(text)
	if err != nil {
		// Tokenizer and criteria share one element table, so this is an
		// alignment defect and always fatal.
		return nil, errors.Wrap(err, errors.ErrCodeTokenUnrecognized,
			fmt.Sprintf("molecule %q", in.Name))
	}

	return &Result{Record: &Record{
		ID:     common.NewID(),
		Name:   in.Name,
		SMILES: text,
		Line:   in.Line,
		Tokens: tokens,
		Props:  props,
	}}, nil
}

// randomizeSeed derives a per-input seed so randomized output is stable for a
// given dataset regardless of worker scheduling.
func randomizeSeed(in Input) int64 {
	h := fnv.New64a()
	h.Write([]byte(in.SMILES))
	h.Write([]byte(in.Name))
	return int64(h.Sum64() ^ uint64(in.Line))
}

// evaluate applies the property criteria in order, returning the first
// failing criterion and its reason, or "" when all pass.
func (p *Pipeline) evaluate(props chem.Properties) (string, string) {
	c := p.criteria

	if el, ok := p.disallowedElement(props); !ok {
		return CriterionElements, fmt.Sprintf("element %s not permitted", el)
	}
	if c.MinHeavyAtoms > 0 && props.HeavyAtoms < c.MinHeavyAtoms {
		return CriterionMinHeavyAtoms,
			fmt.Sprintf("%d heavy atoms, minimum is %d", props.HeavyAtoms, c.MinHeavyAtoms)
	}
	if c.MaxHeavyAtoms > 0 && props.HeavyAtoms > c.MaxHeavyAtoms {
		return CriterionMaxHeavyAtoms,
			fmt.Sprintf("%d heavy atoms, maximum is %d", props.HeavyAtoms, c.MaxHeavyAtoms)
	}
	if c.MaxMolWeight > 0 && props.MolWeight > c.MaxMolWeight {
		return CriterionMaxMolWeight,
			fmt.Sprintf("molecular weight %.2f exceeds %.2f", props.MolWeight, c.MaxMolWeight)
	}
	if c.MinCarbons > 0 && props.NumCarbons < c.MinCarbons {
		return CriterionMinCarbons,
			fmt.Sprintf("%d carbon atoms, minimum is %d", props.NumCarbons, c.MinCarbons)
	}
	if c.MaxNumRings > 0 && props.RingCount > c.MaxNumRings {
		return CriterionMaxNumRings,
			fmt.Sprintf("%d rings, maximum is %d", props.RingCount, c.MaxNumRings)
	}
	if c.MaxRingSize > 0 && props.MaxRingSize > c.MaxRingSize {
		return CriterionMaxRingSize,
			fmt.Sprintf("ring of size %d, maximum is %d", props.MaxRingSize, c.MaxRingSize)
	}
	if !c.KeepStereo && props.HasStereo {
		return CriterionStereo, "stereochemistry not permitted"
	}
	if !c.KeepIsotopes && props.HasIsotope {
		return CriterionIsotope, "isotope not permitted"
	}
	return "", ""
}

// disallowedElement returns the first disallowed element in deterministic
// order, or ok=true when every element is permitted.
func (p *Pipeline) disallowedElement(props chem.Properties) (string, bool) {
	var bad []string
	for el := range props.Elements {
		if !p.elements[el] {
			bad = append(bad, el)
		}
	}
	if len(bad) == 0 {
		return "", true
	}
	sort.Strings(bad)
	return bad[0], false
}

func (p *Pipeline) reject(in Input, criterion, reason string) *Result {
	return &Result{Rejection: &Rejection{
		ID:        common.NewID(),
		Name:      in.Name,
		SMILES:    in.SMILES,
		Line:      in.Line,
		Criterion: criterion,
		Reason:    reason,
	}}
}
