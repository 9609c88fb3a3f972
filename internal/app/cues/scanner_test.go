package cues

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCueName(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{`\bShabbat\b`, "Shabbat"},
		{`R\.\s*Shimon`, "R.s*Shimon"},
		{`nezikin/`, "nezikin/"},
	}
	for _, tt := range tests {
		if got := CueName(tt.in); got != tt.want {
			t.Errorf("CueName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScanner_Matches(t *testing.T) {
	t.Parallel()

	s := MustDefault()
	tests := []struct {
		text string
		want bool
	}{
		{"The RABBI said so", true},
		{"a ritual of the bath", true},
		{"forget the milk", false}, // \bget\b must not match inside words
		{"a neighbour borrows a tool", false},
		{"data/dilemmas/moed/shabbat.jsonl", true},
	}
	for _, tt := range tests {
		if got := s.Matches(tt.text); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestScanner_ScanFile(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	res, err := MustDefault().ScanFile(context.Background(), filepath.Join("testdata", "answers.jsonl"), &out, newTestLogger())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Lines)
	assert.Equal(t, 1, res.Malformed)
	assert.Equal(t, 2, res.Matched)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"dilemma_type":"original"`)
	assert.Contains(t, lines[1], `"id":"bm-2"`)

	require.NotEmpty(t, res.Counts)
	assert.Equal(t, CueCount{Cue: "priest", Count: 2}, res.Counts[0])

	got := map[string]int{}
	for _, c := range res.Counts {
		got[c.Cue] = c.Count
	}
	assert.Equal(t, 1, got["rabbi"])
	assert.Equal(t, 1, got["Shabbat"])
	assert.Equal(t, 1, got["nezikin/"])
	assert.Equal(t, 1, got["Temple"])
}

func TestLoadPatterns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cues.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patterns:\n  - '\\bsynagogue\\b'\n  - kiddush\n"), 0o644))

	patterns, err := LoadPatterns(path)
	require.NoError(t, err)
	assert.Equal(t, []string{`\bsynagogue\b`, "kiddush"}, patterns)

	s, err := NewScanner(patterns)
	require.NoError(t, err)
	assert.True(t, s.Matches("the Synagogue"))
}

func TestNewScanner_BadPattern(t *testing.T) {
	t.Parallel()

	_, err := NewScanner([]string{"("})
	assert.Error(t, err)
}
