package checker

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilma-lab/dilma/internal/vocabulary"
)

func newTestChecker() *Checker {
	vocab := vocabulary.New("self_preservation", "other_life", "property_rights")
	return New(vocab, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const good = `{"id":"d1","vignette":"v","options":[{"id":"A","text":"a","tags":["self_preservation"]},{"id":"B","text":"b","tags":["other_life"]}]}`

func kinds(vs []Violation) []Kind {
	out := make([]Kind, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

func TestCheck_CleanStore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "nezikin", "bk.jsonl"), good+"\n\n")

	report, err := newTestChecker().Check(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Errors())
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 1, report.Records)
}

func TestCheck_LineViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		line  string
		kinds []Kind
	}{
		{
			name:  "malformed json",
			line:  `{"id": "x",`,
			kinds: []Kind{KindMalformed},
		},
		{
			name:  "non-object json",
			line:  `[1,2]`,
			kinds: []Kind{KindMalformed},
		},
		{
			name:  "null",
			line:  `null`,
			kinds: []Kind{KindMalformed},
		},
		{
			name:  "missing vignette and options",
			line:  `{"id":"x"}`,
			kinds: []Kind{KindMissingField, KindMissingField},
		},
		{
			name:  "missing everything",
			line:  `{}`,
			kinds: []Kind{KindMissingField, KindMissingField, KindMissingField},
		},
		{
			name:  "id wrong type",
			line:  `{"id":7,"vignette":"v","options":[{"id":"A","tags":[]},{"id":"B","tags":[]}]}`,
			kinds: []Kind{KindInvalidField},
		},
		{
			name:  "options not an array",
			line:  `{"id":"x","vignette":"v","options":"A or B"}`,
			kinds: []Kind{KindInvalidField},
		},
		{
			name:  "three options",
			line:  `{"id":"x","vignette":"v","options":[{"id":"A"},{"id":"B"},{"id":"C"}]}`,
			kinds: []Kind{KindOptionShape},
		},
		{
			name:  "unknown tag on both options",
			line:  `{"id":"x","vignette":"v","options":[{"id":"A","tags":["courage"]},{"id":"B","tags":["other_life","greed"]}]}`,
			kinds: []Kind{KindUnknownTags, KindUnknownTags},
		},
		{
			name:  "empty tags are fine",
			line:  `{"id":"x","vignette":"v","options":[{"id":"A","tags":[]},{"id":"B"}]}`,
			kinds: []Kind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			writeFile(t, filepath.Join(root, "f.jsonl"), tt.line+"\n")

			report, err := newTestChecker().Check(context.Background(), root)
			require.NoError(t, err)
			assert.Equal(t, tt.kinds, kinds(report.Violations))
			for _, v := range report.Violations {
				assert.Equal(t, 1, v.Line)
			}
		})
	}
}

func TestCheck_ContinuesPastErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "moed", "shabbat.jsonl")
	writeFile(t, path, "garbage\n"+good+"\n"+`{"id":"d2","vignette":"v"}`+"\n")
	writeFile(t, filepath.Join(root, "zeraim", "berakhot.jsonl"), good+"\n")

	report, err := newTestChecker().Check(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, 3, report.Errors())
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 4, report.Records)

	assert.Equal(t, KindMalformed, report.Violations[0].Kind)
	assert.Equal(t, path+":1: "+report.Violations[0].Message, report.Violations[0].String())

	assert.Equal(t, KindMissingField, report.Violations[1].Kind)
	assert.Equal(t, "d2", report.Violations[1].DilemmaID)
	assert.Equal(t, 3, report.Violations[1].Line)

	dup := report.Violations[2]
	assert.Equal(t, KindDuplicateID, dup.Kind)
	assert.Contains(t, dup.Message, path+":2")
}

func TestCheck_UnknownTagMessageNamesTags(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f.jsonl"),
		`{"id":"x","vignette":"v","options":[{"id":"A","tags":["courage","loyalty"]},{"id":"B","tags":[]}]}`+"\n")

	report, err := newTestChecker().Check(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 1, report.Errors())
	assert.Equal(t, "unknown tags in option A: [courage loyalty]", report.Violations[0].Message)
	assert.Equal(t, "x", report.Violations[0].DilemmaID)
}

func TestCheck_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := newTestChecker().Check(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestCheck_BlankAndOversizeLines(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	second := strings.Replace(good, `"d1"`, `"d2"`, 1)
	oversize := `{"id":"big","vignette":"` + strings.Repeat("x", 5<<20)
	writeFile(t, filepath.Join(root, "f.jsonl"), good+"\n\n   \n"+oversize+"\n"+second+"\n")

	report, err := newTestChecker().Check(context.Background(), root)
	require.NoError(t, err)

	// Blank lines are not records but still count towards line numbers.
	assert.Equal(t, 3, report.Records)
	require.Equal(t, 1, report.Errors())
	assert.Equal(t, KindMalformed, report.Violations[0].Kind)
	assert.Equal(t, 4, report.Violations[0].Line)
}
