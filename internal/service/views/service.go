// Package views computes the distribution views over parsed choice rows:
// tag counts, per-axis pole counts and model-vs-model comparisons.
package views

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/dilma-lab/dilma/internal/domain"
)

// LoadFunc produces a fresh dataset.
type LoadFunc func(ctx context.Context) (*Dataset, error)

// Service serves views over the current dataset snapshot. The snapshot is
// swapped atomically on reload, so readers never see a partial dataset.
type Service struct {
	axes    []Axis
	load    LoadFunc
	current atomic.Pointer[Dataset]
	log     *slog.Logger
}

// NewService creates a Service. Call Reload before serving.
func NewService(axes []Axis, load LoadFunc, logger *slog.Logger) *Service {
	return &Service{axes: axes, load: load, log: logger.With("service", "views")}
}

// NewStaticService serves a fixed dataset.
func NewStaticService(axes []Axis, ds *Dataset, logger *slog.Logger) *Service {
	s := NewService(axes, func(context.Context) (*Dataset, error) { return ds, nil }, logger)
	s.current.Store(ds)
	return s
}

// Reload replaces the dataset. On error the previous snapshot stays.
func (s *Service) Reload(ctx context.Context) error {
	ds, err := s.load(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "reload failed", slog.String("error", err.Error()))
		return err
	}
	s.current.Store(ds)
	s.log.InfoContext(ctx, "dataset reloaded", slog.Int("rows", ds.Len()), slog.Int("dilemmas", ds.DilemmaCount()))
	return nil
}

// Dataset returns the current snapshot, never nil.
func (s *Service) Dataset() *Dataset {
	if ds := s.current.Load(); ds != nil {
		return ds
	}
	return NewDataset(nil, nil)
}

// Axes returns the configured axes.
func (s *Service) Axes() []Axis { return s.axes }

// Stats describes the current snapshot.
type Stats struct {
	Dilemmas int `json:"dilemmas"`
	Rows     int `json:"rows"`
}

func (s *Service) Stats() Stats {
	ds := s.Dataset()
	return Stats{Dilemmas: ds.DilemmaCount(), Rows: ds.Len()}
}

func (s *Service) Dilemma(id string) (*domain.DilemmaRecord, bool) {
	return s.Dataset().Dilemma(id)
}

func (s *Service) Models(c Context) []string { return s.Dataset().Models(c) }

func (s *Service) Tractates() []string { return s.Dataset().Tractates() }

func (s *Service) TagDistribution(c Context) []TagCount {
	return s.Dataset().TagDistribution(c)
}

func (s *Service) AxisDistribution(c Context, models []string) []AxisCount {
	return s.Dataset().AxisDistribution(s.axes, c, models)
}

func (s *Service) Compare(c Context) (Comparison, error) {
	return s.Dataset().Compare(s.axes, c)
}
