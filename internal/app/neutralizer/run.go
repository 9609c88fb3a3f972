package neutralizer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dilma-lab/dilma/internal/dilemma"
)

// Result holds neutralization statistics.
type Result struct {
	Files     int
	Records   int
	Changed   int
	Malformed int
}

// Run rewrites every *.jsonl file under inDir into the same relative path
// under outDir. When inDir and outDir are the same directory the files are
// rewritten in place. Lines that fail to decode are copied verbatim and
// counted.
func (n *Neutralizer) Run(ctx context.Context, inDir, outDir string, log *slog.Logger) (Result, error) {
	files, err := dilemma.DiscoverFiles(inDir, true)
	if err != nil {
		return Result{}, fmt.Errorf("neutralizer: %w", err)
	}

	var result Result
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rel, err := filepath.Rel(inDir, src)
		if err != nil {
			return result, fmt.Errorf("neutralizer: %w", err)
		}
		dst := filepath.Join(outDir, rel)

		fr, err := n.rewriteFile(src, dst, log)
		result.Files++
		result.Records += fr.Records
		result.Changed += fr.Changed
		result.Malformed += fr.Malformed
		if err != nil {
			return result, fmt.Errorf("neutralizer: %s: %w", src, err)
		}
		log.Debug("neutralized file", slog.String("src", src), slog.String("dst", dst),
			slog.Int("records", fr.Records), slog.Int("changed", fr.Changed))
	}

	log.Info("neutralization finished",
		slog.Int("files", result.Files),
		slog.Int("records", result.Records),
		slog.Int("changed", result.Changed),
		slog.Int("malformed", result.Malformed),
	)
	return result, nil
}

func (n *Neutralizer) rewriteFile(src, dst string, log *slog.Logger) (Result, error) {
	var (
		out    bytes.Buffer
		result Result
	)

	err := dilemma.ScanFile(src, func(l dilemma.Line) error {
		result.Records++
		rewritten, err := n.Record(l.Raw)
		if err != nil {
			result.Malformed++
			log.Warn("copy undecodable dilemma line", slog.String("file", src),
				slog.Int("line", l.Num), slog.String("error", err.Error()))
			rewritten = l.Raw
		}
		if !bytes.Equal(rewritten, l.Raw) {
			result.Changed++
		}
		out.Write(rewritten)
		out.WriteByte('\n')
		return nil
	})
	if err != nil {
		return result, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return result, fmt.Errorf("create dir: %w", err)
	}

	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, out.Bytes(), 0o644); err != nil {
		return result, fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return result, fmt.Errorf("rename %s: %w", tmp, err)
	}
	return result, nil
}
