package dilemma

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilma-lab/dilma/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree creates files relative to root; keys are slash-separated paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

const bavaKamma = `{"id":"bk-1","title":"The Ox","vignette":"An ox gores.","options":[{"id":"A","text":"Pay","tags":["property_rights"]},{"id":"B","text":"Refuse","tags":[]}],"strength":"prime"}

{"id":"bk-2","title":"The Pit","vignette":"A pit is dug.","options":[{"id":"A","text":"Fill","tags":["helping_other"]},{"id":"B","text":"Leave","tags":["self_preservation"]}]}
not json
`

func TestLoad(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"nezikin/bava_kamma.jsonl": bavaKamma,
		"zeraim/berakhot.jsonl":    `{"id":"sh-1","title":"Fire","vignette":"A fire.","options":[{"id":"A","text":"Save","tags":["other_life"]},{"id":"B","text":"Rest","tags":[]}]}` + "\n" + `{"id":"bk-1","title":"The Ox Again","vignette":"dup","options":[{"id":"A","text":"Pay twice","tags":["helping_other"]},{"id":"B","text":"Refuse","tags":[]}],"strength":"okay"}` + "\n",
		"notes.txt":                "ignored",
	})

	store, result, err := Load(context.Background(), root, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, LoadResult{Files: 2, Records: 3, Malformed: 1, Duplicates: 1}, result)
	assert.Equal(t, 3, store.Len())

	rec, ok := store.Get("bk-2")
	require.True(t, ok)
	assert.Equal(t, "nezikin", rec.Order)
	assert.Equal(t, "bava_kamma", rec.Tractate)
	assert.Equal(t, 3, rec.Line, "blank lines still advance the line counter")
	assert.Nil(t, rec.Strength)

	rec, ok = store.Get("bk-1")
	require.True(t, ok)
	require.NotNil(t, rec.Strength)
	assert.Equal(t, domain.StrengthOkay, *rec.Strength)
	assert.Equal(t, "The Ox Again", rec.Title, "last occurrence of a duplicate id wins")
	assert.Equal(t, "berakhot", rec.Tractate)

	opt, ok := rec.Option(domain.OptionA)
	require.True(t, ok)
	assert.Equal(t, []string{"helping_other"}, opt.Tags)

	assert.Equal(t, []string{"bava_kamma", "berakhot"}, store.Tractates())
	assert.Equal(t, []string{"nezikin", "zeraim"}, store.Orders())

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestLoad_MissingRoot(t *testing.T) {
	t.Parallel()

	_, _, err := Load(context.Background(), filepath.Join(t.TempDir(), "none"), discardLogger())
	require.Error(t, err)
}

func TestLoad_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.jsonl": bavaKamma})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Load(ctx, root, discardLogger())
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.jsonl":          "{}",
		"a.JSONL":          "{}",
		"c.json":           "{}",
		"sub/d.jsonl":      "{}",
		"sub/deep/e.jsonl": "{}",
	})

	flat, err := DiscoverFiles(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.JSONL"), filepath.Join(root, "b.jsonl")}, flat)

	all, err := DiscoverFiles(root, true)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	single, err := DiscoverFiles(filepath.Join(root, "b.jsonl"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.jsonl")}, single)

	_, err = DiscoverFiles(filepath.Join(root, "c.json"), false)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedInput))

	_, err = DiscoverFiles(filepath.Join(root, "missing"), false)
	assert.Error(t, err)
}

func TestProvenance(t *testing.T) {
	t.Parallel()

	root := filepath.Join("data", "dilemmas")
	tests := []struct {
		path, order, tractate string
	}{
		{filepath.Join(root, "nezikin", "bava_metzia.jsonl"), "nezikin", "bava_metzia"},
		{filepath.Join(root, "top.jsonl"), "", "top"},
		{filepath.Join("elsewhere", "x.jsonl"), "", "x"},
	}
	for _, tt := range tests {
		order, tractate := Provenance(root, tt.path)
		assert.Equal(t, tt.order, order, tt.path)
		assert.Equal(t, tt.tractate, tractate, tt.path)
	}
}

func TestScanReader_StopsOnCallbackError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	var seen []int
	err := ScanReader(strings.NewReader("a\n\nb\nc\n"), func(l Line) error {
		seen = append(seen, l.Num)
		if l.Num == 3 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, []int{1, 3}, seen)
}

func TestScanReader_LongLines(t *testing.T) {
	t.Parallel()

	long := `{"id":"big","vignette":"` + strings.Repeat("x", 5<<20) + `"}`
	input := `{"id":"a"}` + "\n" + long + "\n" + `{"id":"b"}` + "\r\n" + `{"id":"c"}`

	var (
		nums  []int
		sizes []int
	)
	err := ScanReader(strings.NewReader(input), func(l Line) error {
		nums = append(nums, l.Num)
		sizes = append(sizes, len(l.Raw))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, nums, "a line without a trailing newline is still delivered")
	assert.Equal(t, len(long), sizes[1])
	assert.Equal(t, len(`{"id":"b"}`), sizes[2], "CRLF is trimmed")
}

func TestLoad_OversizeLineDoesNotStopStore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.jsonl": strings.Repeat("y", 5<<20) + "\n" + `{"id":"a-1","vignette":"v","options":[]}` + "\n",
		"b.jsonl": `{"id":"b-1","vignette":"v","options":[]}` + "\n",
	})

	store, result, err := Load(context.Background(), root, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Files: 2, Records: 2, Malformed: 1}, result)

	_, ok := store.Get("a-1")
	assert.True(t, ok)
	_, ok = store.Get("b-1")
	assert.True(t, ok)
}

func TestNewStore_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	store := NewStore(
		domain.DilemmaRecord{ID: "x", Title: "first"},
		domain.DilemmaRecord{ID: "y", Title: "other"},
		domain.DilemmaRecord{ID: "x", Title: "second"},
	)

	assert.Equal(t, 2, store.Len())
	rec, ok := store.Get("x")
	require.True(t, ok)
	assert.Equal(t, "second", rec.Title)

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, "x", all[0].ID, "a replaced id keeps its original position")
}
