// Package cues audits answer logs for culturally identifying vocabulary.
package cues

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dilma-lab/dilma/internal/dilemma"
)

// scannedFields are the answer-record fields joined into the scanned text.
var scannedFields = []string{"id", "prompt", "answer", "source_file", "dilemma_type"}

type cue struct {
	name string
	re   *regexp.Regexp
}

// Scanner matches a fixed list of cue patterns.
type Scanner struct {
	cues []cue
}

// NewScanner compiles patterns case-insensitively.
func NewScanner(patterns []string) (*Scanner, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("cues: no patterns")
	}
	s := &Scanner{cues: make([]cue, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("cues: compile %q: %w", p, err)
		}
		s.cues = append(s.cues, cue{name: CueName(p), re: re})
	}
	return s, nil
}

// MustDefault returns a Scanner over DefaultPatterns.
func MustDefault() *Scanner {
	s, err := NewScanner(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return s
}

// LoadPatterns reads a YAML file of the form `patterns: [...]`.
func LoadPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cues: read %s: %w", path, err)
	}
	var doc struct {
		Patterns []string `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cues: parse %s: %w", path, err)
	}
	if len(doc.Patterns) == 0 {
		return nil, fmt.Errorf("cues: %s has no patterns", path)
	}
	return doc.Patterns, nil
}

// CueName is the display key of a pattern: the pattern with word-boundary
// markers and escapes removed.
func CueName(pattern string) string {
	return strings.ReplaceAll(strings.ReplaceAll(pattern, `\b`, ""), `\`, "")
}

// Matches reports whether any cue occurs in text.
func (s *Scanner) Matches(text string) bool {
	for _, c := range s.cues {
		if c.re.MatchString(text) {
			return true
		}
	}
	return false
}

// Count adds the occurrences of every cue in text to counts.
func (s *Scanner) Count(text string, counts map[string]int) {
	for _, c := range s.cues {
		if n := len(c.re.FindAllStringIndex(text, -1)); n > 0 {
			counts[c.name] += n
		}
	}
}

// CueCount is one line of the summary.
type CueCount struct {
	Cue   string
	Count int
}

// Result summarises a scan.
type Result struct {
	Lines     int
	Malformed int
	Matched   int
	Counts    []CueCount
}

// ScanFile reads a JSONL answer log and writes every entry containing a cue
// to out, unchanged.
func (s *Scanner) ScanFile(ctx context.Context, path string, out io.Writer, log *slog.Logger) (Result, error) {
	var result Result
	counts := make(map[string]int)

	err := dilemma.ScanFile(path, func(l dilemma.Line) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Lines++

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(l.Raw, &fields); err != nil {
			result.Malformed++
			log.Warn("skip malformed entry", slog.Int("line", l.Num), slog.String("error", err.Error()))
			return nil
		}

		text := joinFields(fields)
		if !s.Matches(text) {
			return nil
		}

		result.Matched++
		s.Count(text, counts)
		log.Debug("cue found", slog.Int("line", l.Num), slog.String("id", fieldString(fields["id"])))

		if _, err := out.Write(append(l.Raw, '\n')); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("cues: %w", err)
	}

	result.Counts = sortCounts(counts)
	return result, nil
}

func joinFields(fields map[string]json.RawMessage) string {
	parts := make([]string, 0, len(scannedFields))
	for _, k := range scannedFields {
		parts = append(parts, fieldString(fields[k]))
	}
	return strings.Join(parts, " ")
}

// fieldString renders a JSON value as text; strings are unquoted, null and
// absent values are empty.
func fieldString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func sortCounts(counts map[string]int) []CueCount {
	out := make([]CueCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CueCount{Cue: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Cue < out[j].Cue
	})
	return out
}
