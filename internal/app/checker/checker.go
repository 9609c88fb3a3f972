// Package checker validates the dilemma store: JSON well-formedness,
// required fields, option shape, and tags against the label vocabulary.
package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
	"github.com/dilma-lab/dilma/internal/vocabulary"
)

// Kind classifies a violation.
type Kind string

const (
	KindIO           Kind = "io"
	KindMalformed    Kind = "malformed_json"
	KindMissingField Kind = "missing_field"
	KindInvalidField Kind = "invalid_field"
	KindOptionShape  Kind = "option_shape"
	KindUnknownTags  Kind = "unknown_tags"
	KindDuplicateID  Kind = "duplicate_id"
)

// Violation is one integrity error, located by file and line.
type Violation struct {
	File      string
	Line      int
	Kind      Kind
	DilemmaID string
	Message   string
}

func (v Violation) String() string {
	if v.Line == 0 {
		return fmt.Sprintf("%s: %s", v.File, v.Message)
	}
	return fmt.Sprintf("%s:%d: %s", v.File, v.Line, v.Message)
}

// Report is the outcome of a full store scan.
type Report struct {
	Files      int
	Records    int
	Violations []Violation
}

// Errors returns the number of violations.
func (r Report) Errors() int { return len(r.Violations) }

// requiredFields are checked in this order so reports are stable.
var requiredFields = []string{"id", "vignette", "options"}

type rawOption struct {
	ID   domain.OptionID `json:"id"`
	Text string          `json:"text"`
	Tags []string        `json:"tags"`
}

// Checker scans dilemma files. It is not safe for concurrent use.
type Checker struct {
	vocab *vocabulary.Vocabulary
	log   *slog.Logger
	seen  map[string]string
}

// New creates a Checker bound to a vocabulary.
func New(vocab *vocabulary.Vocabulary, log *slog.Logger) *Checker {
	return &Checker{
		vocab: vocab,
		log:   log,
		seen:  make(map[string]string),
	}
}

// Check scans every *.jsonl file under root. Violations never stop the scan;
// only an unreadable root is returned as an error.
func (c *Checker) Check(ctx context.Context, root string) (Report, error) {
	if _, err := os.Stat(root); err != nil {
		return Report{}, fmt.Errorf("checker: %w", err)
	}
	files, err := dilemma.DiscoverFiles(root, true)
	if err != nil {
		return Report{}, fmt.Errorf("checker: %w", err)
	}

	var report Report
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		c.CheckFile(path, &report)
	}

	c.log.Info("dilemma check finished",
		slog.Int("files", report.Files),
		slog.Int("records", report.Records),
		slog.Int("errors", report.Errors()),
	)
	return report, nil
}

// CheckFile scans a single file and appends its violations to report.
func (c *Checker) CheckFile(path string, report *Report) {
	report.Files++

	err := dilemma.ScanFile(path, func(l dilemma.Line) error {
		report.Records++
		for _, v := range c.checkLine(path, l) {
			c.log.Error("dilemma violation",
				slog.String("file", v.File),
				slog.Int("line", v.Line),
				slog.String("kind", string(v.Kind)),
				slog.String("dilemma_id", v.DilemmaID),
				slog.String("message", v.Message),
			)
			report.Violations = append(report.Violations, v)
		}
		return nil
	})
	if err != nil {
		report.Violations = append(report.Violations, Violation{
			File: path, Kind: KindIO, Message: err.Error(),
		})
		c.log.Error("read dilemma file", slog.String("file", path), slog.String("error", err.Error()))
	}
}

func (c *Checker) checkLine(path string, l dilemma.Line) []Violation {
	at := func(kind Kind, id, format string, args ...any) Violation {
		return Violation{File: path, Line: l.Num, Kind: kind, DilemmaID: id, Message: fmt.Sprintf(format, args...)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(l.Raw, &fields); err != nil || fields == nil {
		msg := "expected a JSON object"
		if err != nil {
			msg = err.Error()
		}
		return []Violation{at(KindMalformed, "", "JSON error: %s", msg)}
	}

	var out []Violation
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			out = append(out, at(KindMissingField, "", "missing field %q", name))
		}
	}

	var id string
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil || strings.TrimSpace(id) == "" {
			out = append(out, at(KindInvalidField, "", "field \"id\" must be a non-empty string"))
			id = ""
		}
	}
	for i := range out {
		out[i].DilemmaID = id
	}

	if raw, ok := fields["vignette"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			out = append(out, at(KindInvalidField, id, "field \"vignette\" must be a string"))
		}
	}

	if raw, ok := fields["options"]; ok {
		var opts []rawOption
		if err := json.Unmarshal(raw, &opts); err != nil {
			out = append(out, at(KindInvalidField, id, "field \"options\" must be an array of {id, text, tags}"))
		} else {
			out = append(out, c.checkOptions(id, opts, at)...)
		}
	}

	if id != "" {
		loc := fmt.Sprintf("%s:%d", path, l.Num)
		if first, dup := c.seen[id]; dup {
			out = append(out, at(KindDuplicateID, id, "duplicate id %s (first seen at %s)", id, first))
		} else {
			c.seen[id] = loc
		}
	}

	return out
}

func (c *Checker) checkOptions(id string, opts []rawOption, at func(Kind, string, string, ...any) Violation) []Violation {
	var out []Violation

	if len(opts) != 2 || !hasIDs(opts, domain.OptionA, domain.OptionB) {
		ids := make([]string, len(opts))
		for i, o := range opts {
			ids[i] = string(o.ID)
		}
		out = append(out, at(KindOptionShape, id, "options must be exactly A and B (got [%s])", strings.Join(ids, " ")))
	}

	for _, o := range opts {
		if unknown := c.vocab.Unknown(o.Tags); len(unknown) > 0 {
			out = append(out, at(KindUnknownTags, id, "unknown tags in option %s: %v", o.ID, unknown))
		}
	}
	return out
}

func hasIDs(opts []rawOption, want ...domain.OptionID) bool {
	for _, w := range want {
		found := false
		for _, o := range opts {
			if o.ID == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
