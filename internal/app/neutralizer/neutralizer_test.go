package neutralizer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	t.Parallel()

	n := MustDefault()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"high priest before priest", "The High Priest and a priest met.", "The high official and a senior professional met."},
		{"hyphenated high priest", "the high-priest entered", "the high official entered"},
		{"plural priests", "Two priests argued.", "Two senior professionals argued."},
		{"priesthood", "The priesthood ruled.", "The senior professional body ruled."},
		{"jerusalem of gold before jerusalem", "a Jerusalem-of-Gold crown in Jerusalem", "a ornate crown in designated zone"},
		{"non-kosher before kosher", "non-kosher meat and kosher wine", "non-approved meat and approved wine"},
		{"nonkosher without hyphen", "nonkosher", "non-approved"},
		{"zavim before zav", "the zavim and one zav", "the emission cases and one emission case"},
		{"case insensitive", "SHABBAT shabbat Shabbat", "rest day rest day rest day"},
		{"word boundary respected", "Leahy is not Leah", "Leahy is not Lena"},
		{"Israelite is not Israel", "an Israelite from Israel", "an mainstream group from head office"},
		{"multi-word names", "Beit Shammai disagrees with Beit Hillel", "School A disagrees with School B"},
		{"apostrophe term", "after ye'ush the finder keeps it", "after despair the finder keeps it"},
		{"no match", "A farmer finds a lost ox.", "A farmer finds a lost ox."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, n.Text(tt.in))
		})
	}
}

func TestText_FixedPointOnNeutralText(t *testing.T) {
	t.Parallel()

	n := MustDefault()
	inputs := []string{
		"A traveler finds a wallet on the road.",
		"The high official must decide before the rest day.",
		"Two neighbors share a wall; one wants to build higher.",
	}
	for _, in := range inputs {
		assert.Equal(t, in, n.Text(in))
		assert.Equal(t, n.Text(in), n.Text(n.Text(in)))
	}
}

func TestTableOrder_SpecificBeforeGeneral(t *testing.T) {
	t.Parallel()

	index := func(pattern string) int {
		for i, r := range DefaultTable {
			if r.Pattern == pattern {
				return i
			}
		}
		t.Fatalf("pattern %q not in table", pattern)
		return -1
	}

	pairs := [][2]string{
		{`\bHigh[- ]?Priest\b`, `\bPriest\b`},
		{`Jerusalem-of-Gold`, `\bJerusalem\b`},
		{`non[- ]?kosher`, `kosher`},
		{`\bzavim\b`, `\bzav\b`},
	}
	for _, p := range pairs {
		assert.Less(t, index(p[0]), index(p[1]), "%s must precede %s", p[0], p[1])
	}
}

func TestNew_EmptyTableIsIdentity(t *testing.T) {
	t.Parallel()

	n, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "Shabbat", n.Text("Shabbat"))
}

func TestNew_BadPattern(t *testing.T) {
	t.Parallel()

	_, err := New([]Replacement{{Pattern: `(unclosed`, Neutral: "x"}})
	require.Error(t, err)
}

func TestRecord_PreservesIDsAndUnknownFields(t *testing.T) {
	t.Parallel()

	n := MustDefault()
	in := `{"id":"bk-7","title":"The Priest & the Ox","vignette":"On Shabbat a kohen sees <an ox>.","options":[{"id":"A","text":"Tell the Sages","tags":["truth"]},{"id":"B","text":"Stay silent","tags":[]}],"strength":"okay","source":"Bava Kamma 2a"}`

	out, err := n.Record([]byte(in))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	assert.Equal(t, "bk-7", got["id"])
	assert.Equal(t, "The senior professional & the Ox", got["title"])
	assert.Equal(t, "On rest day a senior professional sees <an ox>.", got["vignette"])
	assert.Equal(t, "okay", got["strength"])
	assert.Equal(t, "Bava Kamma 2a", got["source"])

	opts := got["options"].([]any)
	require.Len(t, opts, 2)
	a := opts[0].(map[string]any)
	assert.Equal(t, "A", a["id"])
	assert.Equal(t, "Tell the experts", a["text"])
	assert.Equal(t, []any{"truth"}, a["tags"])

	assert.NotContains(t, string(out), `\u003c`, "output keeps HTML characters literal")
	assert.NotContains(t, string(out), "\n")
}

func TestRecord_Errors(t *testing.T) {
	t.Parallel()

	n := MustDefault()
	for _, in := range []string{`not json`, `null`, `{"title":7}`, `{"options":"x"}`} {
		_, err := n.Record([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestRun_MirrorsTree(t *testing.T) {
	t.Parallel()

	in := filepath.Join(t.TempDir(), "dilemmas")
	out := filepath.Join(t.TempDir(), "dilemmas-neutral")

	content := `{"id":"d1","title":"Torah study","vignette":"v","options":[{"id":"A","text":"a"},{"id":"B","text":"b"}]}` + "\n" +
		"broken line\n" +
		`{"id":"d2","title":"Plain","vignette":"v","options":[]}` + "\n"
	require.NoError(t, os.MkdirAll(filepath.Join(in, "nezikin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "nezikin", "bk.jsonl"), []byte(content), 0o644))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	result, err := MustDefault().Run(context.Background(), in, out, log)
	require.NoError(t, err)

	assert.Equal(t, Result{Files: 1, Records: 3, Changed: 2, Malformed: 1}, result)

	data, err := os.ReadFile(filepath.Join(out, "nezikin", "bk.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"title":"core law study"`)
	assert.Equal(t, "broken line", lines[1])
	assert.Contains(t, lines[2], `"id":"d2"`)

	_, err = os.Stat(filepath.Join(out, "nezikin", "bk.jsonl.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_InPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"d1","title":"Temple","vignette":"v","options":[]}`+"\n"), 0o644))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := MustDefault().Run(context.Background(), dir, dir, log)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title":"central complex"`)

	again, err := MustDefault().Run(context.Background(), dir, dir, log)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Changed, "second pass is a fixed point")
}
