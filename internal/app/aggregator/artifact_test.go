package aggregator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilma-lab/dilma/internal/domain"
)

const headerLine = "dilemma_id,choice_id,chosen_value_labels,model_name,dilemma_type\n"

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOpenArtifact_CreatesWithHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results", "labels.csv")
	a, err := OpenArtifact(path)
	require.NoError(t, err)

	require.NoError(t, a.Append(domain.ParsedChoiceRow{
		DilemmaID: "d1", Choice: domain.ChoiceA, Labels: "x,y", ModelName: "m", DilemmaType: domain.DilemmaTypeOriginal,
	}))
	require.NoError(t, a.Close())

	assert.Equal(t, headerLine+"d1,A,\"x,y\",m,original\n", readFile(t, path))
	assert.Equal(t, 1, a.Rows())
}

func TestOpenArtifact_AppendsWithoutRewriting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "labels.csv")
	existing := headerLine + "d0,B,other_life,m,neutral\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	a, err := OpenArtifact(path)
	require.NoError(t, err)
	require.NoError(t, a.Append(domain.ParsedChoiceRow{
		DilemmaID: "d1", Choice: domain.ChoiceInvalid, Labels: domain.LabelInvalid, ModelName: "m", DilemmaType: domain.DilemmaTypeOriginal,
	}))
	require.NoError(t, a.Close())

	got := readFile(t, path)
	assert.True(t, strings.HasPrefix(got, existing), "prior rows must be preserved byte-for-byte")
	assert.Equal(t, 1, strings.Count(got, "dilemma_id"), "header written once")
}

func TestOpenArtifact_EmptyFileGetsHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "labels.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	a, err := OpenArtifact(path)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.Equal(t, headerLine, readFile(t, path))
}

func TestOpenArtifact_SchemaMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "labels.csv")
	legacy := "dilemma_id,choice_id,chosen_value_labels,model_name\nd0,A,x,m\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	_, err := OpenArtifact(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchemaMismatch))

	var sm *SchemaMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, path, sm.Path)
	assert.Contains(t, err.Error(), "missing dilemma_type")

	assert.Equal(t, legacy, readFile(t, path), "file must be left untouched")
}

func TestReadArtifact(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "labels.csv")
	a, err := OpenArtifact(path)
	require.NoError(t, err)

	want := []domain.ParsedChoiceRow{
		{DilemmaID: "d1", Choice: domain.ChoiceA, Labels: "a,b", ModelName: "gpt-4o", DilemmaType: domain.DilemmaTypeOriginal},
		{DilemmaID: "d1", Choice: domain.ChoiceB, Labels: "c", ModelName: "gpt-4o", DilemmaType: domain.DilemmaTypeNeutral},
		{DilemmaID: "d9", Choice: domain.ChoiceUnknownDilemma, Labels: domain.LabelUnknownDilemma, ModelName: domain.UnknownModel, DilemmaType: domain.DilemmaTypeOriginal},
	}
	for _, r := range want {
		require.NoError(t, a.Append(r))
	}
	require.NoError(t, a.Close())

	got, err := ReadArtifact(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeArtifact_LegacyWithoutDilemmaType(t *testing.T) {
	t.Parallel()

	rows, err := DecodeArtifact(strings.NewReader("model_name,dilemma_id,choice_id,chosen_value_labels\nm,d1,A,x|y\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.DilemmaTypeOriginal, rows[0].DilemmaType)
	assert.Equal(t, "m", rows[0].ModelName)
	assert.Equal(t, []string{"x", "y"}, domain.SplitLabels(rows[0].Labels))
}

func TestDecodeArtifact_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	_, err := DecodeArtifact(strings.NewReader("dilemma_id,labels\nd1,x\n"))
	require.ErrorIs(t, err, domain.ErrSchemaMismatch)
}
