package warehouse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgres "github.com/dilma-lab/dilma/internal/adapter/postgres"
	"github.com/dilma-lab/dilma/internal/adapter/postgres/results"
	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func fixture() (*dilemma.Store, []domain.ParsedChoiceRow) {
	store := dilemma.NewStore(domain.DilemmaRecord{
		ID: "bk-1", Title: "Lost ox", Vignette: "v",
		Options: []domain.Option{{ID: domain.OptionA, Text: "a"}, {ID: domain.OptionB, Text: "b"}},
	})
	rows := []domain.ParsedChoiceRow{
		{DilemmaID: "bk-1", Choice: domain.ChoiceB, Labels: "altruism", ModelName: "gpt-4o", DilemmaType: domain.DilemmaTypeOriginal},
		{DilemmaID: "zz-9", Choice: domain.ChoiceUnknownDilemma, Labels: domain.LabelUnknownDilemma, ModelName: "gpt-4o", DilemmaType: domain.DilemmaTypeOriginal},
	}
	return store, rows
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO dilemmas`).
		WithArgs(anyArgs(7)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO parsed_choices`).
		WithArgs(
			"results/a.csv", 1, "bk-1", "B", "altruism", "gpt-4o", "original",
			"results/a.csv", 2, "zz-9", "UNKNOWN_DILEMMA", domain.LabelUnknownDilemma, "gpt-4o", "original",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT model_name`).
		WithArgs("results/a.csv").
		WillReturnRows(pgxmock.NewRows([]string{"model_name", "dilemma_type", "choice", "count"}).
			AddRow("gpt-4o", "original", "B", int64(1)).
			AddRow("gpt-4o", "original", "UNKNOWN_DILEMMA", int64(1)))

	l := New(postgres.NewTxManager(mock), results.New(mock), newTestLogger())
	store, rows := fixture()

	res, err := l.Load(context.Background(), store, "results/a.csv", rows)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Dilemmas)
	assert.Equal(t, 2, res.Choices)
	assert.Equal(t, int64(2), res.NewChoices)
	assert.Len(t, res.ModelSummary, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_RollsBackOnInsertError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO dilemmas`).
		WithArgs(anyArgs(7)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO parsed_choices`).
		WithArgs(anyArgs(14)...).
		WillReturnError(boom)
	mock.ExpectRollback()

	l := New(postgres.NewTxManager(mock), results.New(mock), newTestLogger())
	store, rows := fixture()

	_, err = l.Load(context.Background(), store, "a.csv", rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "insert choices")
	assert.NoError(t, mock.ExpectationsWereMet())
}
