// Package warehouse loads the dilemma store and a parsed choice artifact
// into the results database.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dilma-lab/dilma/internal/adapter/postgres/results"
	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
)

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type resultsRepo interface {
	UpsertDilemmas(ctx context.Context, recs []*domain.DilemmaRecord) (int64, error)
	InsertChoices(ctx context.Context, artifact string, rows []domain.ParsedChoiceRow) (int64, error)
	CountByModel(ctx context.Context, artifact string) ([]results.ModelCount, error)
}

// Result holds load statistics.
type Result struct {
	Dilemmas     int64
	Choices      int
	NewChoices   int64
	ModelSummary []results.ModelCount
}

// Loader writes one load in a single transaction.
type Loader struct {
	tx   txRunner
	repo resultsRepo
	log  *slog.Logger
}

// New creates a Loader.
func New(tx txRunner, repo resultsRepo, logger *slog.Logger) *Loader {
	return &Loader{tx: tx, repo: repo, log: logger.With("service", "warehouse")}
}

// Load upserts every dilemma in store and inserts the artifact rows under
// the artifact name, then reads back the per-model summary.
func (l *Loader) Load(ctx context.Context, store *dilemma.Store, artifact string, rows []domain.ParsedChoiceRow) (Result, error) {
	res := Result{Choices: len(rows)}

	err := l.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := l.repo.UpsertDilemmas(ctx, store.All())
		if err != nil {
			return fmt.Errorf("upsert dilemmas: %w", err)
		}
		res.Dilemmas = n

		inserted, err := l.repo.InsertChoices(ctx, artifact, rows)
		if err != nil {
			return fmt.Errorf("insert choices: %w", err)
		}
		res.NewChoices = inserted
		return nil
	})
	if err != nil {
		return res, err
	}

	summary, err := l.repo.CountByModel(ctx, artifact)
	if err != nil {
		return res, err
	}
	res.ModelSummary = summary

	for _, mc := range summary {
		l.log.InfoContext(ctx, "model choices",
			slog.String("model", mc.Model),
			slog.String("dilemma_type", mc.DilemmaType.String()),
			slog.String("choice", mc.Choice.String()),
			slog.Int64("count", mc.Count),
		)
	}
	l.log.InfoContext(ctx, "load complete",
		slog.String("artifact", artifact),
		slog.Int64("dilemmas", res.Dilemmas),
		slog.Int("choices", res.Choices),
		slog.Int64("new_choices", res.NewChoices),
	)
	return res, nil
}
