package structure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// Source is one input of Consolidate.
type Source struct {
	Name   string
	Reader io.Reader
}

// ConsolidateResult describes a consolidated output.
type ConsolidateResult struct {
	Sources int
	Atoms   int
	// LastModel is the largest model number written, i.e. the final offset.
	LastModel int
}

// Consolidate merges sources into one multi-model document written to dst.
//
// Every line of the first source is kept. For every following source only the atom
// rows are copied, with the trailing model-number field replaced by its value plus the
// cumulative offset: the sum of the largest model numbers of all sources before it.
// Appended rows go right after the first source's last atom row, so they stay inside
// its _atom_site table; the lines that followed that row are written last.
func Consolidate(dst io.Writer, sources ...Source) (ConsolidateResult, error) {
	var res ConsolidateResult
	if len(sources) == 0 {
		return res, fmt.Errorf("nothing to consolidate: %w", domain.ErrInvalidRequest)
	}

	w := bufio.NewWriter(dst)
	offset := 0
	var trailer []string
	for i, src := range sources {
		maxModel, atoms, rest, err := copySource(w, src, i == 0, offset)
		if err != nil {
			return res, err
		}
		if i == 0 {
			trailer = rest
		}
		offset += maxModel
		res.Atoms += atoms
		res.Sources++
	}
	res.LastModel = offset

	for _, line := range trailer {
		if err := writeLine(w, line); err != nil {
			return res, err
		}
	}

	if err := w.Flush(); err != nil {
		return res, fmt.Errorf("failed to write consolidated output: %w", err)
	}
	return res, nil
}

// copySource writes one source and returns the largest original model number of its
// atom rows and its atom count. In verbatim mode the lines after the last atom row are
// held back and returned instead of written.
func copySource(w *bufio.Writer, src Source, verbatim bool, offset int) (int, int, []string, error) {
	scanner := newLineScanner(src.Reader)
	maxModel, atoms, lineNo := 0, 0, 0
	var pending []string

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !IsAtomRecord(line) {
			switch {
			case !verbatim:
			case atoms > 0:
				pending = append(pending, line)
			default:
				if err := writeLine(w, line); err != nil {
					return 0, 0, nil, err
				}
			}
			continue
		}
		for _, held := range pending {
			if err := writeLine(w, held); err != nil {
				return 0, 0, nil, err
			}
		}
		pending = pending[:0]

		prefix, model, err := splitModelNumber(line)
		if err != nil {
			var pe *ParseError
			if asParseError(err, &pe) {
				pe.Source = src.Name
				pe.Line = lineNo
			}
			return 0, 0, nil, err
		}
		if model > maxModel {
			maxModel = model
		}
		atoms++

		if verbatim {
			err = writeLine(w, line)
		} else {
			err = writeLine(w, prefix+strconv.Itoa(model+offset))
		}
		if err != nil {
			return 0, 0, nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, nil, fmt.Errorf("read %s: %w", src.Name, err)
	}
	return maxModel, atoms, pending, nil
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return fmt.Errorf("failed to write consolidated output: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write consolidated output: %w", err)
	}
	return nil
}

// ConsolidateFiles merges the files at inputs, in order, into output. The output is
// written atomically: on error no partial file is left behind.
func ConsolidateFiles(inputs []string, output string) (ConsolidateResult, error) {
	var res ConsolidateResult
	if len(inputs) == 0 {
		return res, fmt.Errorf("nothing to consolidate: %w", domain.ErrInvalidRequest)
	}

	files := make([]*os.File, 0, len(inputs))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	sources := make([]Source, 0, len(inputs))
	for _, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			return res, fmt.Errorf("failed to open model file: %w", err)
		}
		files = append(files, f)
		sources = append(sources, Source{Name: path, Reader: f})
	}

	err := writeAtomic(output, func(w io.Writer) error {
		var err error
		res, err = Consolidate(w, sources...)
		return err
	})
	return res, err
}
