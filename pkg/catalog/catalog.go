// Package catalog writes the tabular summaries of a build: one row per segment and
// one row per accepted model.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// File names written by WriteFiles.
const (
	SegmentsFile = "segments.csv"
	ModelsFile   = "models.csv"
)

// SegmentColumns is the header of the segment catalog.
var SegmentColumns = []string{
	"identifier",
	"chain_index",
	"chain_name",
	"residue_start_index",
	"residue_start_seqid",
	"residue_index_offset",
	"residue_names",
	"parent_structure_file",
}

// ModelColumns are the fixed leading columns of the model catalog. One column per
// score key follows, sorted by name.
var ModelColumns = []string{"identifier", "index", "structure_file"}

// WriteSegments writes one row per segment, including segments without models.
func WriteSegments(w io.Writer, segments []*domain.Segment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SegmentColumns); err != nil {
		return err
	}
	for _, s := range segments {
		err := cw.Write([]string{
			s.Identifier,
			strconv.Itoa(s.ChainIndex),
			s.ChainName,
			strconv.Itoa(s.ResidueStartIndex),
			strconv.Itoa(s.ResidueStartSeqID),
			strconv.Itoa(s.ResidueIndexOffset),
			strings.Join(s.ResidueNames, " "),
			s.ParentStructureFile,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ScoreKeys returns the union of score keys over all models, sorted.
func ScoreKeys(segments []*domain.Segment) []string {
	seen := map[string]struct{}{}
	for _, s := range segments {
		for _, m := range s.Models {
			for k := range m.Scores {
				seen[k] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteModels writes one row per accepted model, in segment then acceptance order.
// A score a model lacks is written as an empty cell.
func WriteModels(w io.Writer, segments []*domain.Segment) error {
	keys := ScoreKeys(segments)

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string(nil), ModelColumns...), keys...)); err != nil {
		return err
	}
	for _, s := range segments {
		for _, m := range s.Models {
			row := make([]string, 0, len(ModelColumns)+len(keys))
			row = append(row, m.Identifier, strconv.Itoa(m.Index), m.StructureFile)
			for _, k := range keys {
				v, ok := m.Scores[k]
				if !ok || v == nil {
					row = append(row, "")
					continue
				}
				row = append(row, fmt.Sprint(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes segments.csv and models.csv into dir and returns their paths.
func WriteFiles(dir string, segments []*domain.Segment) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	writers := []struct {
		name  string
		write func(io.Writer, []*domain.Segment) error
	}{
		{SegmentsFile, WriteSegments},
		{ModelsFile, WriteModels},
	}

	paths := make([]string, 0, len(writers))
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, func(w io.Writer) error { return wr.write(w, segments) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
