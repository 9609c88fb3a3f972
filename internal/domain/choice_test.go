package domain

import (
	"slices"
	"testing"
)

func TestSplitLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cell string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "mercy", []string{"mercy"}},
		{"comma", "mercy,justice", []string{"mercy", "justice"}},
		{"pipe", "mercy|justice", []string{"mercy", "justice"}},
		{"mixed with spaces", " mercy | justice,truth ", []string{"mercy", "justice", "truth"}},
		{"duplicates collapse", "mercy,mercy", []string{"mercy"}},
		{"sentinel", LabelNoTags, []string{LabelNoTags}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitLabels(tt.cell)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitLabels(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestJoinLabels_RoundTripsThroughSplit(t *testing.T) {
	t.Parallel()

	labels := []string{"self_preservation", "other_life"}
	got := SplitLabels(JoinLabels(labels))
	if !slices.Equal(got, labels) {
		t.Errorf("got %v, want %v", got, labels)
	}
}

func TestStrengthAdmits(t *testing.T) {
	t.Parallel()

	prime, okay, weak := StrengthPrime, StrengthOkay, StrengthWeak
	bogus := Strength("strong")

	tests := []struct {
		level Strength
		item  *Strength
		want  bool
	}{
		{StrengthPrime, &prime, true},
		{StrengthPrime, &okay, false},
		{StrengthPrime, nil, false},
		{StrengthOkay, &prime, true},
		{StrengthOkay, &okay, true},
		{StrengthOkay, &weak, false},
		{StrengthOkay, &bogus, false},
		{StrengthWeak, &weak, true},
		{StrengthWeak, nil, true},
		{StrengthWeak, &bogus, true},
	}

	for _, tt := range tests {
		name := string(tt.level) + "/nil"
		if tt.item != nil {
			name = string(tt.level) + "/" + string(*tt.item)
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := tt.level.Admits(tt.item); got != tt.want {
				t.Errorf("Admits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStrengthFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Strength
		wantOK bool
	}{
		{"prime", StrengthPrime, true},
		{"strict", StrengthPrime, true},
		{"okay", StrengthOkay, true},
		{"medium", StrengthOkay, true},
		{"weak", StrengthWeak, true},
		{"all", StrengthWeak, true},
		{"", StrengthWeak, true},
		{"loose", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseStrengthFilter(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseStrengthFilter(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAnswerRecordDefaults(t *testing.T) {
	t.Parallel()

	var rec AnswerRecord
	if rec.ModelName() != UnknownModel {
		t.Errorf("ModelName() = %q, want %q", rec.ModelName(), UnknownModel)
	}
	if rec.Type() != DilemmaTypeOriginal {
		t.Errorf("Type() = %q, want %q", rec.Type(), DilemmaTypeOriginal)
	}

	model := "gpt-4o"
	neutral := DilemmaTypeNeutral
	rec = AnswerRecord{Model: &model, DilemmaType: &neutral}
	if rec.ModelName() != "gpt-4o" || rec.Type() != DilemmaTypeNeutral {
		t.Errorf("unexpected defaults: %q %q", rec.ModelName(), rec.Type())
	}
}
