// Package results stores dilemmas and parsed choice rows in PostgreSQL.
package results

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/dilma-lab/dilma/internal/adapter/postgres"
	"github.com/dilma-lab/dilma/internal/domain"
)

// Rows per INSERT statement, kept well under the 65535 bind parameter limit.
const (
	dilemmaChunk = 500
	choiceChunk  = 1000
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides warehouse persistence.
type Repo struct {
	db postgres.Querier
}

// New creates a new results repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ModelCount is one cell of the per-model choice summary.
type ModelCount struct {
	Model       string
	DilemmaType domain.DilemmaType
	Choice      domain.Choice
	Count       int64
}

// UpsertDilemmas inserts recs, replacing any row with the same id.
// It returns the number of rows written.
func (r *Repo) UpsertDilemmas(ctx context.Context, recs []*domain.DilemmaRecord) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var written int64
	for start := 0; start < len(recs); start += dilemmaChunk {
		end := min(start+dilemmaChunk, len(recs))

		ins := psql.Insert("dilemmas").
			Columns("id", "title", "vignette", "seder", "tractate", "strength", "options").
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				vignette = EXCLUDED.vignette,
				seder = EXCLUDED.seder,
				tractate = EXCLUDED.tractate,
				strength = EXCLUDED.strength,
				options = EXCLUDED.options,
				loaded_at = now()`)

		for _, rec := range recs[start:end] {
			opts, err := json.Marshal(rec.Options)
			if err != nil {
				return written, fmt.Errorf("dilemma %s marshal options: %w", rec.ID, err)
			}
			ins = ins.Values(rec.ID, rec.Title, rec.Vignette, rec.Order, rec.Tractate, strengthArg(rec.Strength), opts)
		}

		sql, args, err := ins.ToSql()
		if err != nil {
			return written, fmt.Errorf("build dilemma upsert: %w", err)
		}
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return written, postgres.MapError(err, "dilemma", recs[start].ID)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

func strengthArg(s *domain.Strength) any {
	if s == nil || !s.IsValid() {
		return nil
	}
	return string(*s)
}

// InsertChoices stores rows under artifact, numbering them from 1 in order.
// Rows already present for the same (artifact, row_number) are left alone,
// so reloading an artifact only adds rows appended since the last load.
// It returns the number of new rows.
func (r *Repo) InsertChoices(ctx context.Context, artifact string, rows []domain.ParsedChoiceRow) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var inserted int64
	for start := 0; start < len(rows); start += choiceChunk {
		end := min(start+choiceChunk, len(rows))

		ins := psql.Insert("parsed_choices").
			Columns("artifact", "row_number", "dilemma_id", "choice", "labels", "model_name", "dilemma_type").
			Suffix("ON CONFLICT (artifact, row_number) DO NOTHING")

		for i, row := range rows[start:end] {
			ins = ins.Values(artifact, start+i+1, row.DilemmaID, string(row.Choice), row.Labels, row.ModelName, string(row.DilemmaType))
		}

		sql, args, err := ins.ToSql()
		if err != nil {
			return inserted, fmt.Errorf("build choice insert: %w", err)
		}
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, postgres.MapError(err, "parsed_choice", fmt.Sprintf("%s:%d", artifact, start+1))
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// CountByModel summarizes the stored choices of artifact per model,
// dilemma type and choice.
func (r *Repo) CountByModel(ctx context.Context, artifact string) ([]ModelCount, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := psql.
		Select("model_name", "dilemma_type", "choice", "count(*)").
		From("parsed_choices").
		Where(sq.Eq{"artifact": artifact}).
		GroupBy("model_name", "dilemma_type", "choice").
		OrderBy("model_name", "dilemma_type", "choice").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("count parsed_choices: %w", err)
	}
	defer rows.Close()

	var out []ModelCount
	for rows.Next() {
		var (
			mc          ModelCount
			typ, choice string
		)
		if err := rows.Scan(&mc.Model, &typ, &choice, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan model count: %w", err)
		}
		mc.DilemmaType = domain.DilemmaType(typ)
		mc.Choice = domain.Choice(choice)
		out = append(out, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model counts: %w", err)
	}
	return out, nil
}
