package structure

import (
	"fmt"
	"strconv"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	strict bool
}

// WithStrictSpan makes Extract verify that every row between the first and the last
// endpoint match belongs to the requested chain and residue range.
func WithStrictSpan() ExtractOption {
	return func(c *extractConfig) {
		c.strict = true
	}
}

// Extract returns a copy of doc whose table holds only the contiguous span of rows
// between the first and the last row of chain whose residue id is first or last.
// Header and trailer lines are kept unchanged.
//
// Rows are assumed contiguous per chain and ascending in residue id, so only the two
// endpoints are matched. When no row matches, the error wraps domain.ErrNotFound.
func Extract(doc *Document, chain string, first, last int, opts ...ExtractOption) (*Document, error) {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if first > last {
		return nil, fmt.Errorf("residue range [%d, %d] is empty: %w", first, last, domain.ErrInvalidRequest)
	}

	chainCol := doc.ColumnIndex(ChainColumn)
	seqCol := doc.ColumnIndex(SeqColumn)
	if chainCol < 0 || seqCol < 0 {
		return nil, fmt.Errorf("%s: missing %s or %s column: %w", doc.Name, ChainColumn, SeqColumn, domain.ErrParse)
	}

	start, end := -1, -1
	for i, row := range doc.Rows {
		seq, ok := rowResidue(row, chainCol, seqCol, chain)
		if !ok || (seq != first && seq != last) {
			continue
		}
		if start < 0 {
			start = i
		}
		end = i
	}
	if start < 0 {
		return nil, fmt.Errorf("%s: chain %s residues %d-%d: %w", doc.Name, chain, first, last, domain.ErrNotFound)
	}

	if cfg.strict {
		for i := start; i <= end; i++ {
			seq, ok := rowResidue(doc.Rows[i], chainCol, seqCol, chain)
			if !ok || seq < first || seq > last {
				return nil, fmt.Errorf("%s: row %d inside chain %s residues %d-%d: %w",
					doc.Name, i+1, chain, first, last, domain.ErrMalformedSpan)
			}
		}
	}

	out := doc.Clone()
	out.Rows = out.Rows[start : end+1]
	return out, nil
}

// rowResidue returns the residue id of row if it belongs to chain.
func rowResidue(row Row, chainCol, seqCol int, chain string) (int, bool) {
	if chainCol >= len(row.Fields) || seqCol >= len(row.Fields) {
		return 0, false
	}
	if row.Fields[chainCol] != chain {
		return 0, false
	}
	seq, err := strconv.Atoi(row.Fields[seqCol])
	if err != nil {
		return 0, false
	}
	return seq, true
}
