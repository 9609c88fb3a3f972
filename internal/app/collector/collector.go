// Package collector runs dilemmas through a chat model and records the
// answers as JSONL.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
)

// dryRunRule separates prompts printed in dry-run mode.
var dryRunRule = strings.Repeat("=", 79)

// chatClient is the subset of llm.ChatClient the collector needs.
type chatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options controls one collection run.
type Options struct {
	Model     string
	Strength  domain.Strength
	Recursive bool
	DryRun    bool
	// OutPath is the combined answer log. Empty means answers are only logged.
	OutPath string
}

// Result summarises a run.
type Result struct {
	Files           int
	Processed       int
	SkippedStrength int
	Failed          int
	Malformed       int
	RunID           string
}

// Collector sends prompts to a chat client. In dry-run mode the client may
// be nil.
type Collector struct {
	client chatClient
	opts   Options
	stdout io.Writer
	log    *slog.Logger
	now    func() time.Time
	runID  string

	out      *json.Encoder
	printed  int
	fileRows []domain.AnswerRecord
}

// New creates a Collector. Prompts are printed to stdout in dry-run mode.
func New(client chatClient, opts Options, stdout io.Writer, logger *slog.Logger) *Collector {
	if opts.Strength == "" {
		opts.Strength = domain.StrengthWeak
	}
	return &Collector{
		client: client,
		opts:   opts,
		stdout: stdout,
		log:    logger,
		now:    time.Now,
		runID:  uuid.NewString(),
	}
}

// NeutralTwin maps a dilemma path to its neutralized counterpart by
// replacing the first "dilemmas" path component with "dilemmas-neutral".
func NeutralTwin(path string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for i, p := range parts {
		if p == "dilemmas" {
			parts[i] = "dilemmas-neutral"
			return filepath.FromSlash(strings.Join(parts, "/")), true
		}
	}
	return "", false
}

// Run processes every dilemma file under path, then its neutral twin when
// one exists.
func (c *Collector) Run(ctx context.Context, path string) (Result, error) {
	result := Result{RunID: c.runID}

	originals, err := dilemma.DiscoverFiles(path, c.opts.Recursive)
	if err != nil {
		return result, fmt.Errorf("collector: %w", err)
	}
	if len(originals) == 0 {
		return result, fmt.Errorf("collector: no .jsonl files in %s (recursive=%t): %w",
			path, c.opts.Recursive, domain.ErrUnsupportedInput)
	}

	var neutrals []string
	if twin, ok := NeutralTwin(path); ok {
		if _, err := os.Stat(twin); err == nil {
			neutrals, err = dilemma.DiscoverFiles(twin, c.opts.Recursive)
			if err != nil {
				return result, fmt.Errorf("collector: %w", err)
			}
			c.log.Info("found neutral dilemmas", slog.String("path", twin), slog.Int("files", len(neutrals)))
		} else {
			c.log.Info("no neutral dilemmas", slog.String("path", twin))
		}
	}

	if c.opts.OutPath != "" && !c.opts.DryRun {
		f, err := openAppend(c.opts.OutPath)
		if err != nil {
			return result, fmt.Errorf("collector: %w", err)
		}
		defer f.Close()
		c.out = json.NewEncoder(f)
		c.out.SetEscapeHTML(false)
	}

	c.log.Info("collection started",
		slog.String("run_id", c.runID),
		slog.String("model", c.opts.Model),
		slog.String("strength", c.opts.Strength.String()),
		slog.Bool("dry_run", c.opts.DryRun),
	)

	for _, batch := range []struct {
		files []string
		typ   domain.DilemmaType
	}{
		{originals, domain.DilemmaTypeOriginal},
		{neutrals, domain.DilemmaTypeNeutral},
	} {
		for _, file := range batch.files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := c.processFile(ctx, file, batch.typ, &result); err != nil {
				return result, err
			}
			result.Files++
		}
	}

	c.log.Info("collection finished",
		slog.String("run_id", c.runID),
		slog.Int("files", result.Files),
		slog.Int("processed", result.Processed),
		slog.Int("skipped_strength", result.SkippedStrength),
		slog.Int("failed", result.Failed),
		slog.Int("malformed", result.Malformed),
	)
	return result, nil
}

func (c *Collector) processFile(ctx context.Context, file string, typ domain.DilemmaType, result *Result) error {
	log := c.log.With(slog.String("file", file), slog.String("dilemma_type", typ.String()))
	log.Info("processing file")

	c.fileRows = c.fileRows[:0]
	processed, skipped := 0, 0

	err := dilemma.ScanFile(file, func(l dilemma.Line) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var d domain.DilemmaRecord
		if err := json.Unmarshal(l.Raw, &d); err != nil || d.ID == "" {
			result.Malformed++
			log.Warn("skip malformed dilemma", slog.Int("line", l.Num))
			return nil
		}

		if !c.opts.Strength.Admits(d.Strength) {
			skipped++
			result.SkippedStrength++
			return nil
		}

		prompt := BuildPrompt(&d)

		var answer string
		if c.opts.DryRun {
			c.printPrompt(prompt)
		} else {
			out, err := c.client.Complete(ctx, prompt)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				result.Failed++
				log.Error("llm call failed", slog.String("dilemma_id", d.ID), slog.String("error", err.Error()))
				return nil
			}
			answer = out
			log.Info("answer", slog.String("dilemma_id", d.ID), slog.String("excerpt", excerpt(answer, 70)))
		}

		if err := c.record(d.ID, prompt, answer, file, typ); err != nil {
			return err
		}
		processed++
		result.Processed++
		return nil
	})
	if err != nil {
		return fmt.Errorf("collector: %s: %w", file, err)
	}

	log.Info("file done", slog.Int("processed", processed), slog.Int("skipped_strength", skipped))

	if c.out != nil && len(c.fileRows) > 0 {
		cp := CheckpointPath(c.opts.OutPath, typ, file)
		if err := writeCheckpoint(cp, c.fileRows); err != nil {
			return fmt.Errorf("collector: %w", err)
		}
		log.Info("checkpoint saved", slog.String("path", cp), slog.Int("rows", len(c.fileRows)))
	}
	return nil
}

func (c *Collector) record(id, prompt, answer, file string, typ domain.DilemmaType) error {
	if c.opts.DryRun {
		return nil
	}

	model := c.opts.Model
	ts := c.now().UTC().Format("2006-01-02T15:04:05.000000") + "Z"
	source := filepath.ToSlash(file)
	runID := c.runID
	rec := domain.AnswerRecord{
		ID:          id,
		Model:       &model,
		Answer:      answer,
		DilemmaType: &typ,
		Timestamp:   &ts,
		SourceFile:  &source,
		Prompt:      &prompt,
		RunID:       &runID,
	}

	if c.out == nil {
		return nil
	}
	if err := c.out.Encode(rec); err != nil {
		return fmt.Errorf("write answer %s: %w", id, err)
	}
	c.fileRows = append(c.fileRows, rec)
	return nil
}

func (c *Collector) printPrompt(prompt string) {
	if c.printed > 0 {
		fmt.Fprintln(c.stdout)
	}
	fmt.Fprintln(c.stdout, dryRunRule)
	fmt.Fprintln(c.stdout, prompt)
	fmt.Fprintln(c.stdout)
	c.printed++
}

// CheckpointPath is the per-file checkpoint written next to out:
// <out-stem>_checkpoint_<type>_<file-stem><out-ext>.
func CheckpointPath(out string, typ domain.DilemmaType, file string) string {
	ext := filepath.Ext(out)
	stem := strings.TrimSuffix(filepath.Base(out), ext)
	fileStem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	name := fmt.Sprintf("%s_checkpoint_%s_%s%s", stem, typ, fileStem, ext)
	return filepath.Join(filepath.Dir(out), name)
}

func writeCheckpoint(path string, rows []domain.AnswerRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("write checkpoint %s: %w", path, err)
		}
	}
	return f.Close()
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
