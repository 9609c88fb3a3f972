package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dilma-lab/dilma/internal/app/aggregator"
	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
)

// Dataset is an immutable snapshot of dilemmas and parsed choice rows.
type Dataset struct {
	store *dilemma.Store
	rows  []domain.ParsedChoiceRow
}

// NewDataset builds a snapshot. Rows sharing (dilemma, model, type) are
// collapsed to the last occurrence, keeping the position of the first.
func NewDataset(store *dilemma.Store, rows []domain.ParsedChoiceRow) *Dataset {
	if store == nil {
		store = dilemma.NewStore()
	}
	return &Dataset{store: store, rows: dedupe(rows)}
}

func dedupe(rows []domain.ParsedChoiceRow) []domain.ParsedChoiceRow {
	pos := make(map[domain.Key]int, len(rows))
	out := make([]domain.ParsedChoiceRow, 0, len(rows))
	for _, r := range rows {
		if i, ok := pos[r.Key()]; ok {
			out[i] = r
			continue
		}
		pos[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}

// LoadDataset reads the dilemma store and the artifact. A missing artifact
// yields a dataset without rows.
func LoadDataset(ctx context.Context, dilemmaRoot, artifactPath string, log *slog.Logger) (*Dataset, error) {
	store, _, err := dilemma.Load(ctx, dilemmaRoot, log)
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}

	rows, err := aggregator.ReadArtifact(artifactPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn("artifact not found, no choice rows", slog.String("path", artifactPath))
		rows = nil
	case err != nil:
		return nil, fmt.Errorf("views: %w", err)
	}

	ds := NewDataset(store, rows)
	log.Info("dataset loaded",
		slog.Int("dilemmas", store.Len()),
		slog.Int("rows", len(rows)),
		slog.Int("unique_rows", len(ds.rows)),
	)
	return ds, nil
}

// Len returns the number of de-duplicated rows.
func (d *Dataset) Len() int { return len(d.rows) }

// DilemmaCount returns the number of dilemmas in the store.
func (d *Dataset) DilemmaCount() int { return d.store.Len() }

// Dilemma looks up one dilemma by id.
func (d *Dataset) Dilemma(id string) (*domain.DilemmaRecord, bool) {
	return d.store.Get(id)
}

// Tractates lists the distinct tractates of the store.
func (d *Dataset) Tractates() []string { return d.store.Tractates() }

// Orders lists the distinct orders of the store.
func (d *Dataset) Orders() []string { return d.store.Orders() }

// Dilemmas returns the dilemmas admitted by c in store order.
func (d *Dataset) Dilemmas(c Context) []*domain.DilemmaRecord {
	var out []*domain.DilemmaRecord
	for _, rec := range d.store.All() {
		if c.admitsDilemma(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Rows returns the rows admitted by c. Under a tractate or order filter,
// rows whose dilemma is not in the store are dropped.
func (d *Dataset) Rows(c Context) []domain.ParsedChoiceRow {
	var out []domain.ParsedChoiceRow
	for _, r := range d.rows {
		if d.admitsRow(c, r) {
			out = append(out, r)
		}
	}
	return out
}

func (d *Dataset) admitsRow(c Context, r domain.ParsedChoiceRow) bool {
	if c.DilemmaType != "" && r.DilemmaType != c.DilemmaType {
		return false
	}
	if !c.scoped() {
		return true
	}
	rec, ok := d.store.Get(r.DilemmaID)
	return ok && c.admitsDilemma(rec)
}

// Models lists the distinct model names among the rows admitted by c.
func (d *Dataset) Models(c Context) []string {
	seen := make(map[string]struct{})
	for _, r := range d.Rows(c) {
		seen[r.ModelName] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
