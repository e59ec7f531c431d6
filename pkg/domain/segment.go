package domain

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Scores maps a score name to its value. Scorers write into it, filters only read it.
type Scores map[string]any

// Keys returns the score names in sorted order.
func (s Scores) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Float returns the named score as a float64 when it holds a numeric value.
// Strings and booleans are not numeric here even when they would convert.
func (s Scores) Float(key string) (float64, bool) {
	switch v := s[key].(type) {
	case nil, string, bool:
		return 0, false
	default:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	}
}

// Errors returns the recorded scorer failures keyed by score name.
func (s Scores) Errors() map[string]string {
	out := make(map[string]string)
	for k, v := range s {
		if strings.HasSuffix(k, ErrorKeySuffix) {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// Clone returns a shallow copy of the mapping.
func (s Scores) Clone() Scores {
	if s == nil {
		return Scores{}
	}
	return maps.Clone(s)
}

// ErrorKey returns the score key under which a failure of the given evaluator is recorded.
func ErrorKey(identifier string) string {
	return identifier + ErrorKeySuffix
}

// SegmentModel is one accepted trial result for a Segment.
type SegmentModel struct {
	// Identifier is the identifier of the segment the model was built for.
	Identifier string `json:"identifier"`

	// TrialID identifies the trial that produced the model.
	TrialID string `json:"trial_id"`

	// StructureFile is the trial's temporary file, then the accepted file in the
	// output directory, then (after consolidation) the per-segment file.
	StructureFile string `json:"structure_file"`

	Scores Scores `json:"scores"`

	// Index is the 1-based position of the model in acceptance order.
	Index int `json:"index"`
}

// Segment identifies one missing region of a parent structure.
type Segment struct {
	Identifier          string   `json:"identifier" mapstructure:"identifier"`
	ChainIndex          int      `json:"chain_index" mapstructure:"chain_index"`
	ChainName           string   `json:"chain_name" mapstructure:"chain_name"`
	ResidueStartIndex   int      `json:"residue_start_index" mapstructure:"residue_start_index"`
	ResidueStartSeqID   int      `json:"residue_start_seqid" mapstructure:"residue_start_seqid"`
	ResidueIndexOffset  int      `json:"residue_index_offset" mapstructure:"residue_index_offset"`
	ResidueNames        []string `json:"residue_names" mapstructure:"residue_names"`
	ParentStructureFile string   `json:"parent_structure_file" mapstructure:"parent_structure_file"`

	// Models is append-only during a build.
	Models []*SegmentModel `json:"models,omitempty" mapstructure:"-"`
}

// Len returns the number of residues to build.
func (s *Segment) Len() int {
	return len(s.ResidueNames)
}

// ResidueEndSeqID returns the sequence id of the last missing residue.
func (s *Segment) ResidueEndSeqID() int {
	return s.ResidueStartSeqID + s.Len() - 1
}

// Validate checks the invariants a segment must satisfy before it can be built.
func (s *Segment) Validate() error {
	if s.Identifier == "" {
		return fmt.Errorf("segment identifier is required: %w", ErrInvalidRequest)
	}
	if s.Len() == 0 {
		return fmt.Errorf("segment %s has no residue names: %w", s.Identifier, ErrInvalidRequest)
	}
	if s.ChainName == "" {
		return fmt.Errorf("segment %s has no chain name: %w", s.Identifier, ErrInvalidRequest)
	}
	return nil
}

// AddModel appends an accepted model.
func (s *Segment) AddModel(m *SegmentModel) {
	s.Models = append(s.Models, m)
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s(chain=%s, residues=%d-%d)", s.Identifier, s.ChainName, s.ResidueStartSeqID, s.ResidueEndSeqID())
}
