package aggregator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dilma-lab/dilma/internal/domain"
)

// Header is the column order of the tabular artifact.
var Header = []string{"dilemma_id", "choice_id", "chosen_value_labels", "model_name", "dilemma_type"}

// SchemaMismatchError reports an existing artifact whose header differs
// from Header.
type SchemaMismatchError struct {
	Path  string
	Found []string
}

func (e *SchemaMismatchError) Error() string {
	var missing []string
	for _, col := range Header {
		if !slices.Contains(e.Found, col) {
			missing = append(missing, col)
		}
	}
	msg := fmt.Sprintf("artifact %s: header [%s] does not match [%s]",
		e.Path, strings.Join(e.Found, ","), strings.Join(Header, ","))
	if len(missing) > 0 {
		msg += fmt.Sprintf(" (missing %s)", strings.Join(missing, ","))
	}
	return msg
}

func (e *SchemaMismatchError) Unwrap() error { return domain.ErrSchemaMismatch }

// Artifact is an append-only CSV writer for parsed choice rows.
type Artifact struct {
	path string
	f    *os.File
	w    *csv.Writer
	rows int
}

// OpenArtifact opens path for appending after checking its schema once.
// A missing or empty file is created with the header. An existing file
// with any other header yields a *SchemaMismatchError and is left untouched.
func OpenArtifact(path string) (*Artifact, error) {
	if err := CheckSchema(path); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("artifact: open %s: %w", path, err)
	}

	a := &Artifact{path: path, f: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("artifact: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := a.w.Write(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("artifact: write header: %w", err)
		}
	}
	return a, nil
}

// CheckSchema verifies an existing artifact's header. A missing or empty
// file passes.
func CheckSchema(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("artifact: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	found, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("artifact: read header of %s: %w", path, err)
	}
	if !slices.Equal(found, Header) {
		return &SchemaMismatchError{Path: path, Found: found}
	}
	return nil
}

// Append writes one row.
func (a *Artifact) Append(row domain.ParsedChoiceRow) error {
	rec := []string{row.DilemmaID, string(row.Choice), row.Labels, row.ModelName, string(row.DilemmaType)}
	if err := a.w.Write(rec); err != nil {
		return fmt.Errorf("artifact: write row: %w", err)
	}
	a.rows++
	return nil
}

// Flush pushes buffered rows to disk.
func (a *Artifact) Flush() error {
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		return fmt.Errorf("artifact: flush: %w", err)
	}
	return nil
}

// Rows returns the number of rows appended through this handle.
func (a *Artifact) Rows() int { return a.rows }

// Path returns the artifact path.
func (a *Artifact) Path() string { return a.path }

// Close flushes and closes the file.
func (a *Artifact) Close() error {
	flushErr := a.Flush()
	closeErr := a.f.Close()
	return errors.Join(flushErr, closeErr)
}

// ReadArtifact loads every row of an artifact. Missing trailing columns read
// as empty; rows shorter than the header are padded. A missing dilemma_type
// reads as original.
func ReadArtifact(path string) ([]domain.ParsedChoiceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeArtifact(f)
}

// DecodeArtifact reads artifact rows from r. Columns are matched by header
// name, so older artifacts without dilemma_type still load.
func DecodeArtifact(r io.Reader) ([]domain.ParsedChoiceRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"dilemma_id", "choice_id", "model_name"} {
		if _, ok := idx[col]; !ok {
			return nil, &SchemaMismatchError{Found: header}
		}
	}

	get := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []domain.ParsedChoiceRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("artifact: read row %d: %w", len(rows)+2, err)
		}
		dt := domain.DilemmaType(get(rec, "dilemma_type"))
		if dt == "" {
			dt = domain.DilemmaTypeOriginal
		}
		rows = append(rows, domain.ParsedChoiceRow{
			DilemmaID:   get(rec, "dilemma_id"),
			Choice:      domain.Choice(get(rec, "choice_id")),
			Labels:      get(rec, "chosen_value_labels"),
			ModelName:   get(rec, "model_name"),
			DilemmaType: dt,
		})
	}
	return rows, nil
}
