package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilma-lab/dilma/internal/domain"
)

type memorySink struct {
	rows []domain.ParsedChoiceRow
	err  error
}

func (m *memorySink) Append(row domain.ParsedChoiceRow) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, row)
	return nil
}

func newTestAggregator(sink rowSink) *Aggregator {
	return New(testStore(), sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const answerLog = `{"id":"d1","model":"gpt-4o","answer":"A. Save yourself."}
{"id":"d1","model":"gpt-4o","answer":"B","dilemma_type":"neutral"}
{"id":"","model":"gpt-4o","answer":"A"}
{"id":"d2","model":"gpt-4o","answer":""}
{broken
{"id":"d1","answer":"Perhaps"}
{"id":"nope","model":"grok-3","answer":"A"}
`

func TestFoldFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(answerLog), 0o644))

	sink := &memorySink{}
	result, err := newTestAggregator(sink).FoldFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, Result{Files: 1, Lines: 7, Rows: 4, Skipped: 2, Malformed: 1, Unparseable: 1, Unknown: 1}, result)

	want := []domain.ParsedChoiceRow{
		{DilemmaID: "d1", Choice: domain.ChoiceA, Labels: "self_preservation,property_rights", ModelName: "gpt-4o", DilemmaType: domain.DilemmaTypeOriginal},
		{DilemmaID: "d1", Choice: domain.ChoiceB, Labels: "other_life", ModelName: "gpt-4o", DilemmaType: domain.DilemmaTypeNeutral},
		{DilemmaID: "d1", Choice: domain.ChoiceUnparseable, Labels: domain.LabelUnparseable, ModelName: domain.UnknownModel, DilemmaType: domain.DilemmaTypeOriginal},
		{DilemmaID: "nope", Choice: domain.ChoiceUnknownDilemma, Labels: domain.LabelUnknownDilemma, ModelName: "grok-3", DilemmaType: domain.DilemmaTypeOriginal},
	}
	if diff := cmp.Diff(want, sink.rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFoldPath_DirectorySkipsCheckpoints(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	one := `{"id":"d1","model":"m","answer":"A"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte(one), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(one+one), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_checkpoint_original_bk.jsonl"), []byte(one), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	sink := &memorySink{}
	result, err := newTestAggregator(sink).FoldPath(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 3, result.Rows)
	assert.Len(t, sink.rows, 3)
}

func TestFoldFile_ToArtifactIsAppendOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.jsonl")
	require.NoError(t, os.WriteFile(logPath, []byte(answerLog), 0o644))
	csvPath := filepath.Join(dir, "labels.csv")

	fold := func() {
		art, err := OpenArtifact(csvPath)
		require.NoError(t, err)
		_, err = newTestAggregator(art).FoldFile(context.Background(), logPath)
		require.NoError(t, err)
		require.NoError(t, art.Close())
	}

	fold()
	first, err := ReadArtifact(csvPath)
	require.NoError(t, err)
	fold()
	second, err := ReadArtifact(csvPath)
	require.NoError(t, err)

	require.Len(t, second, 2*len(first))
	if diff := cmp.Diff(first, second[:len(first)]); diff != "" {
		t.Errorf("prior rows changed (-first +second):\n%s", diff)
	}
}

func TestFoldFile_SinkError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(answerLog), 0o644))

	boom := errors.New("disk full")
	_, err := newTestAggregator(&memorySink{err: boom}).FoldFile(context.Background(), path)
	require.ErrorIs(t, err, boom)
}

func TestFoldPath_Missing(t *testing.T) {
	t.Parallel()

	_, err := newTestAggregator(&memorySink{}).FoldPath(context.Background(), filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
}

func TestIsCheckpoint(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCheckpoint("results/run_checkpoint_neutral_bava_kamma.jsonl"))
	assert.False(t, IsCheckpoint("results/run.jsonl"))
}

func TestFoldPath_OversizeLineIsPerLineMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	one := `{"id":"d1","model":"m","answer":"A"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(strings.Repeat("z", 5<<20)+"\n"+one), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte(one), 0o644))

	sink := &memorySink{}
	result, err := newTestAggregator(sink).FoldPath(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 3, result.Lines)
	assert.Equal(t, 1, result.Malformed)
	assert.Equal(t, 2, result.Rows)
	assert.Len(t, sink.rows, 2)
}
