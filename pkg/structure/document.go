package structure

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/loopbuild/pkg/domain"
)

const (
	atomSitePrefix = "_atom_site."

	// ChainColumn and SeqColumn are the _atom_site columns used to locate residues.
	ChainColumn = "label_asym_id"
	SeqColumn   = "label_seq_id"
)

// Record markers that identify atom rows.
var atomMarkers = []string{"ATOM", "HETATM"}

// IsAtomRecord reports whether a line is an atom row.
func IsAtomRecord(line string) bool {
	for _, m := range atomMarkers {
		if !strings.HasPrefix(line, m) {
			continue
		}
		if len(line) == len(m) || line[len(m)] == ' ' || line[len(m)] == '\t' {
			return true
		}
	}
	return false
}

// Row is one row of the _atom_site table.
type Row struct {
	// Line is the original text of the row, without its line terminator.
	Line   string
	Fields []string
}

// IsAtom reports whether the row is an atom record.
func (r Row) IsAtom() bool {
	return IsAtomRecord(r.Line)
}

// ModelNumber parses the trailing model-number field of the row.
func (r Row) ModelNumber() (int, error) {
	_, n, err := splitModelNumber(r.Line)
	return n, err
}

// Document is an in-memory structural file with one _atom_site table.
type Document struct {
	// Name labels the document in errors (usually its path).
	Name string

	// Header holds every line preceding the first table row, including the
	// loop_ keyword and the column declarations.
	Header []string

	// Columns are the _atom_site column names without the category prefix.
	Columns []string

	Rows []Row

	// Trailer holds every line after the last table row.
	Trailer []string
}

// ColumnIndex returns the position of the named _atom_site column, or -1.
func (d *Document) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// AtomCount returns the number of atom rows in the table.
func (d *Document) AtomCount() int {
	n := 0
	for _, r := range d.Rows {
		if r.IsAtom() {
			n++
		}
	}
	return n
}

// ModelNumbers returns the distinct model numbers of the atom rows in order of appearance.
func (d *Document) ModelNumbers() ([]int, error) {
	var out []int
	seen := make(map[int]bool)
	for i, r := range d.Rows {
		if !r.IsAtom() {
			continue
		}
		n, err := r.ModelNumber()
		if err != nil {
			return nil, d.rowError(i, r, err)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

func (d *Document) rowError(i int, r Row, err error) error {
	var pe *ParseError
	if asParseError(err, &pe) {
		pe.Source = d.Name
		pe.Line = len(d.Header) + i + 1
		return pe
	}
	return fmt.Errorf("%s row %d: %w", d.Name, i+1, err)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Name:    d.Name,
		Header:  append([]string(nil), d.Header...),
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
		Trailer: append([]string(nil), d.Trailer...),
	}
	for i, r := range d.Rows {
		out.Rows[i] = Row{Line: r.Line, Fields: append([]string(nil), r.Fields...)}
	}
	return out
}

// WriteTo writes the document text, one line per header line, row and trailer line.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	write := func(line string) error {
		n, err := bw.WriteString(line)
		total += int64(n)
		if err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		total++
		return nil
	}
	for _, l := range d.Header {
		if err := write(l); err != nil {
			return total, err
		}
	}
	for _, r := range d.Rows {
		if err := write(r.Line); err != nil {
			return total, err
		}
	}
	for _, l := range d.Trailer {
		if err := write(l); err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// Bytes returns the document text.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

type parseState int

const (
	stateHeader parseState = iota
	stateColumns
	stateRows
	stateTrailer
)

// Parse reads a structural document. The _atom_site loop is required.
func Parse(r io.Reader, name string) (*Document, error) {
	doc := &Document{Name: name}
	scanner := newLineScanner(r)

	state := stateHeader
	// pendingLoop is true right after a loop_ keyword, before its first column.
	pendingLoop := false

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch state {
		case stateHeader:
			doc.Header = append(doc.Header, line)
			if trimmed == "loop_" {
				pendingLoop = true
				continue
			}
			if pendingLoop && strings.HasPrefix(trimmed, atomSitePrefix) {
				doc.Columns = append(doc.Columns, strings.TrimPrefix(trimmed, atomSitePrefix))
				state = stateColumns
			}
			pendingLoop = false

		case stateColumns:
			if strings.HasPrefix(trimmed, atomSitePrefix) {
				doc.Header = append(doc.Header, line)
				doc.Columns = append(doc.Columns, strings.TrimPrefix(trimmed, atomSitePrefix))
				continue
			}
			if isTableTerminator(trimmed) {
				// Declared but empty table.
				doc.Trailer = append(doc.Trailer, line)
				state = stateTrailer
				continue
			}
			doc.Rows = append(doc.Rows, Row{Line: line, Fields: splitFields(line)})
			state = stateRows

		case stateRows:
			if isTableTerminator(trimmed) {
				doc.Trailer = append(doc.Trailer, line)
				state = stateTrailer
				continue
			}
			doc.Rows = append(doc.Rows, Row{Line: line, Fields: splitFields(line)})

		case stateTrailer:
			doc.Trailer = append(doc.Trailer, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(doc.Columns) == 0 {
		return nil, fmt.Errorf("%s: no _atom_site loop: %w", name, domain.ErrParse)
	}
	return doc, nil
}

// ReadFile parses the structural file at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open structure file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// WriteFile writes the document to path atomically.
func WriteFile(path string, doc *Document) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	})
}

// writeAtomic writes to a temp file in the destination directory, fsyncs it and
// renames it over path, so readers never observe a partial file.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := fill(tmpFile); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func isTableTerminator(trimmed string) bool {
	return trimmed == "" ||
		trimmed == "#" ||
		trimmed == "loop_" ||
		strings.HasPrefix(trimmed, "_") ||
		strings.HasPrefix(trimmed, "data_")
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}

// splitModelNumber splits an atom line into its text before the trailing field and
// the trailing field parsed as a positive integer.
func splitModelNumber(line string) (string, int, error) {
	trimmed := strings.TrimRight(line, " \t\r")
	i := strings.LastIndexAny(trimmed, " \t")
	if i < 0 {
		return "", 0, &ParseError{Token: trimmed, Reason: "missing model-number field"}
	}
	token := trimmed[i+1:]
	n, err := strconv.Atoi(token)
	if err != nil {
		return "", 0, &ParseError{Token: token, Reason: "model number is not an integer"}
	}
	if n < 1 {
		return "", 0, &ParseError{Token: token, Reason: "model number is not positive"}
	}
	return trimmed[:i+1], n, nil
}

// splitFields splits a CIF data line into values, honoring single and double quotes.
func splitFields(line string) []string {
	var fields []string
	i := 0
	for i < len(line) {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			break
		}
		c := line[i]
		if c == '\'' || c == '"' {
			j := i + 1
			for j < len(line) && (line[j] != c || (j+1 < len(line) && !isSpace(line[j+1]))) {
				j++
			}
			if j >= len(line) {
				fields = append(fields, line[i:])
				break
			}
			fields = append(fields, line[i+1:j])
			i = j + 1
			continue
		}
		j := i
		for j < len(line) && !isSpace(line[j]) {
			j++
		}
		fields = append(fields, line[i:j])
		i = j
	}
	return fields
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}
