// Package dilemma reads the JSONL dilemma store.
package dilemma

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dilma-lab/dilma/internal/domain"
)

// Lookup resolves a dilemma by id.
type Lookup interface {
	Get(id string) (*domain.DilemmaRecord, bool)
}

// Store is the id-indexed, read-only set of dilemmas loaded from disk.
type Store struct {
	byID map[string]*domain.DilemmaRecord
	ids  []string
}

// LoadResult holds loader statistics.
type LoadResult struct {
	Files      int
	Records    int
	Malformed  int
	Duplicates int
}

// NewStore builds a store from records already in memory. A later record
// with an id already present replaces the earlier one.
func NewStore(records ...domain.DilemmaRecord) *Store {
	s := &Store{byID: make(map[string]*domain.DilemmaRecord, len(records))}
	for i := range records {
		s.add(&records[i])
	}
	return s
}

// add stores rec under its id and reports whether the id was new. A
// duplicate replaces the stored record but keeps its position in ids.
func (s *Store) add(rec *domain.DilemmaRecord) bool {
	_, exists := s.byID[rec.ID]
	s.byID[rec.ID] = rec
	if exists {
		return false
	}
	s.ids = append(s.ids, rec.ID)
	return true
}

// Load reads every *.jsonl file below root in sorted order. Malformed lines
// and duplicate ids are logged and counted, never fatal; the integrity
// checker reports them in detail. The last record seen for an id wins.
func Load(ctx context.Context, root string, log *slog.Logger) (*Store, LoadResult, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, LoadResult{}, fmt.Errorf("dilemma store: %w", err)
	}

	files, err := DiscoverFiles(root, true)
	if err != nil {
		return nil, LoadResult{}, fmt.Errorf("dilemma store: %w", err)
	}

	s := &Store{byID: make(map[string]*domain.DilemmaRecord)}
	var result LoadResult

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}
		result.Files++
		order, tractate := Provenance(root, path)

		err := ScanFile(path, func(l Line) error {
			var rec domain.DilemmaRecord
			if err := json.Unmarshal(l.Raw, &rec); err != nil || rec.ID == "" {
				result.Malformed++
				log.Debug("skip malformed dilemma", slog.String("file", path), slog.Int("line", l.Num))
				return nil
			}
			rec.Order, rec.Tractate, rec.File, rec.Line = order, tractate, path, l.Num
			if !s.add(&rec) {
				result.Duplicates++
				log.Warn("duplicate dilemma id, keeping last", slog.String("dilemma_id", rec.ID),
					slog.String("file", path), slog.Int("line", l.Num))
				return nil
			}
			result.Records++
			return nil
		})
		if err != nil {
			return nil, result, fmt.Errorf("dilemma store: %w", err)
		}
	}

	log.Info("dilemma store loaded",
		slog.Int("files", result.Files),
		slog.Int("records", result.Records),
		slog.Int("malformed", result.Malformed),
		slog.Int("duplicates", result.Duplicates),
	)

	return s, result, nil
}

// Get returns the dilemma with the given id.
func (s *Store) Get(id string) (*domain.DilemmaRecord, bool) {
	if s == nil {
		return nil, false
	}
	rec, ok := s.byID[id]
	return rec, ok
}

// Len returns the number of dilemmas.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// All returns the dilemmas in load order.
func (s *Store) All() []*domain.DilemmaRecord {
	if s == nil {
		return nil
	}
	out := make([]*domain.DilemmaRecord, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id])
	}
	return out
}

// Tractates returns the distinct tractate names, sorted.
func (s *Store) Tractates() []string {
	return s.distinct(func(r *domain.DilemmaRecord) string { return r.Tractate })
}

// Orders returns the distinct order names, sorted.
func (s *Store) Orders() []string {
	return s.distinct(func(r *domain.DilemmaRecord) string { return r.Order })
}

func (s *Store) distinct(key func(*domain.DilemmaRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.All() {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
