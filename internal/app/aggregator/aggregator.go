// Package aggregator folds raw answer logs into the tabular choice artifact.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
)

// rowSink receives parsed rows in input order.
type rowSink interface {
	Append(row domain.ParsedChoiceRow) error
}

// Result holds fold statistics.
type Result struct {
	Files       int
	Lines       int
	Rows        int
	Skipped     int
	Malformed   int
	Unparseable int
	Unknown     int
}

func (r *Result) add(o Result) {
	r.Files += o.Files
	r.Lines += o.Lines
	r.Rows += o.Rows
	r.Skipped += o.Skipped
	r.Malformed += o.Malformed
	r.Unparseable += o.Unparseable
	r.Unknown += o.Unknown
}

// Aggregator parses answer records against a dilemma lookup and appends
// one row per record to a sink.
type Aggregator struct {
	lookup dilemma.Lookup
	sink   rowSink
	log    *slog.Logger
}

// New creates an Aggregator.
func New(lookup dilemma.Lookup, sink rowSink, log *slog.Logger) *Aggregator {
	return &Aggregator{lookup: lookup, sink: sink, log: log}
}

// FoldPath folds a single log file or every *.jsonl log in a directory.
// Collector checkpoint files in a directory are skipped; their records
// duplicate the main log.
func (a *Aggregator) FoldPath(ctx context.Context, path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("aggregator: %w", err)
	}
	if !info.IsDir() {
		return a.FoldFile(ctx, path)
	}

	files, err := filepath.Glob(filepath.Join(path, "*.jsonl"))
	if err != nil {
		return Result{}, fmt.Errorf("aggregator: glob %s: %w", path, err)
	}
	sort.Strings(files)

	var total Result
	for _, f := range files {
		if IsCheckpoint(f) {
			a.log.Debug("skip checkpoint", slog.String("path", f))
			continue
		}
		r, err := a.FoldFile(ctx, f)
		total.add(r)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// IsCheckpoint reports whether path names a collector checkpoint file.
func IsCheckpoint(path string) bool {
	return strings.Contains(filepath.Base(path), "_checkpoint_")
}

// FoldFile streams one raw answer log and appends a row per decoded record,
// in file order. Malformed lines are logged and counted.
func (a *Aggregator) FoldFile(ctx context.Context, path string) (Result, error) {
	result := Result{Files: 1}

	err := dilemma.ScanFile(path, func(l dilemma.Line) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Lines++

		var rec domain.AnswerRecord
		if err := json.Unmarshal(l.Raw, &rec); err != nil {
			result.Malformed++
			a.log.Warn("malformed answer line",
				slog.String("file", path),
				slog.Int("line", l.Num),
				slog.String("error", err.Error()),
			)
			return nil
		}

		row, diag, ok := ParseAnswer(rec, a.lookup)
		if diag != nil {
			a.logDiagnostic(path, l.Num, diag)
		}
		if !ok {
			result.Skipped++
			return nil
		}

		switch row.Choice {
		case domain.ChoiceUnparseable:
			result.Unparseable++
		case domain.ChoiceUnknownDilemma:
			result.Unknown++
		}

		if err := a.sink.Append(row); err != nil {
			return fmt.Errorf("append row for %s: %w", row.DilemmaID, err)
		}
		result.Rows++
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("aggregator: %s: %w", path, err)
	}

	a.log.Info("answer log folded",
		slog.String("file", path),
		slog.Int("rows", result.Rows),
		slog.Int("skipped", result.Skipped),
		slog.Int("malformed", result.Malformed),
		slog.Int("unparseable", result.Unparseable),
		slog.Int("unknown", result.Unknown),
	)
	return result, nil
}

func (a *Aggregator) logDiagnostic(path string, line int, d *Diagnostic) {
	a.log.Warn(d.Reason,
		slog.String("file", path),
		slog.Int("line", line),
		slog.String("dilemma_id", d.DilemmaID),
		slog.String("model", d.Model),
		slog.String("answer", d.Answer),
		slog.String("token", d.Token),
	)
}
