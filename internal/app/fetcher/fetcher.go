// Package fetcher downloads Talmud and Mishnah texts from Sefaria and stores
// both the raw JSON and an extracted plain-text rendition.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// textSource is the Sefaria client contract. A nil document means not found.
type textSource interface {
	FetchText(ctx context.Context, name string) (json.RawMessage, error)
}

// Options controls a fetch run.
type Options struct {
	SourcesDir string
	TextsDir   string
	// Tractates restricts the run. Empty means the whole catalog.
	Tractates []string
	Delay     time.Duration
	DryRun    bool
}

// Result summarises a run.
type Result struct {
	Tractates int
	Fetched   int
	Skipped   int
	NotFound  int
	Failed    int
	Planned   []Target
}

// Fetcher walks the catalog and saves each available text.
type Fetcher struct {
	src   textSource
	opts  Options
	log   *slog.Logger
	sleep func(context.Context, time.Duration) error
}

// New creates a Fetcher.
func New(src textSource, opts Options, logger *slog.Logger) *Fetcher {
	return &Fetcher{src: src, opts: opts, log: logger, sleep: sleepCtx}
}

// Run fetches every selected tractate. Individual fetch failures are logged
// and counted; only filesystem errors and cancellation abort the run.
func (f *Fetcher) Run(ctx context.Context) (Result, error) {
	var result Result

	tractates, err := f.selectTractates()
	if err != nil {
		return result, err
	}

	if !f.opts.DryRun {
		for _, dir := range []string{f.opts.SourcesDir, f.opts.TextsDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return result, fmt.Errorf("fetcher: create %s: %w", dir, err)
			}
		}
	}

	for i, tractate := range tractates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Tractates++
		f.log.Info("processing tractate",
			slog.String("tractate", tractate),
			slog.Int("index", i+1),
			slog.Int("total", len(tractates)),
		)

		fetchedAny := false
		for _, target := range TargetsFor(tractate) {
			if f.opts.DryRun {
				result.Planned = append(result.Planned, target)
				continue
			}

			did, err := f.fetchOne(ctx, target, &result)
			if err != nil {
				return result, err
			}
			fetchedAny = fetchedAny || did
		}

		if fetchedAny && i < len(tractates)-1 {
			if err := f.sleep(ctx, f.opts.Delay); err != nil {
				return result, err
			}
		}
	}

	f.log.Info("fetch finished",
		slog.Int("tractates", result.Tractates),
		slog.Int("fetched", result.Fetched),
		slog.Int("skipped", result.Skipped),
		slog.Int("not_found", result.NotFound),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// fetchOne reports whether a network request was made.
func (f *Fetcher) fetchOne(ctx context.Context, t Target, result *Result) (bool, error) {
	stem := SanitizeFilename(t.Tractate) + "_" + string(t.Kind)
	jsonPath := filepath.Join(f.opts.SourcesDir, stem+".json")
	textPath := filepath.Join(f.opts.TextsDir, stem+".txt")
	log := f.log.With(slog.String("ref", t.Ref), slog.String("kind", string(t.Kind)))

	if _, err := os.Stat(textPath); err == nil {
		result.Skipped++
		log.Debug("already fetched", slog.String("path", textPath))
		return false, nil
	}

	doc, err := f.src.FetchText(ctx, t.Ref)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		result.Failed++
		log.Error("fetch failed", slog.String("error", err.Error()))
		return true, nil
	}
	if doc == nil {
		result.NotFound++
		return true, nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, doc, "", "  "); err != nil {
		result.Failed++
		log.Error("indent json", slog.String("error", err.Error()))
		return true, nil
	}
	if err := writeAtomic(jsonPath, pretty.Bytes()); err != nil {
		return true, fmt.Errorf("fetcher: %w", err)
	}

	text, err := ExtractText(doc)
	if err != nil {
		result.Failed++
		log.Error("extract text", slog.String("error", err.Error()))
		return true, nil
	}
	if err := writeAtomic(textPath, []byte(text)); err != nil {
		return true, fmt.Errorf("fetcher: %w", err)
	}

	result.Fetched++
	log.Info("saved text", slog.String("json", jsonPath), slog.String("text", textPath), slog.Int("chars", len(text)))
	return true, nil
}

func (f *Fetcher) selectTractates() ([]string, error) {
	all := Tractates()
	if len(f.opts.Tractates) == 0 {
		return all, nil
	}

	byKey := make(map[string]string, len(all))
	for _, t := range all {
		byKey[normalizeName(t)] = t
	}

	var out []string
	seen := make(map[string]bool)
	for _, want := range f.opts.Tractates {
		name, ok := byKey[normalizeName(want)]
		if !ok {
			return nil, fmt.Errorf("fetcher: unknown tractate %q", want)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// normalizeName folds case and treats spaces and underscores alike, so
// "bava_metzia" selects "Bava Metzia".
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", " ")
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
