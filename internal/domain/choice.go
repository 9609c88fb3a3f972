package domain

import (
	"slices"
	"strings"
)

// Choice is the classified outcome of one answer.
type Choice string

const (
	ChoiceA              Choice = "A"
	ChoiceB              Choice = "B"
	ChoiceInvalid        Choice = "INVALID"
	ChoiceUnparseable    Choice = "UNPARSEABLE"
	ChoiceUnknownDilemma Choice = "UNKNOWN_DILEMMA"
)

func (c Choice) String() string { return string(c) }

func (c Choice) IsValid() bool {
	switch c {
	case ChoiceA, ChoiceB, ChoiceInvalid, ChoiceUnparseable, ChoiceUnknownDilemma:
		return true
	}
	return false
}

// Sentinel labels written in place of value tags.
const (
	LabelNoTags         = "no_tags"
	LabelTagNotFound    = "error_tag_not_found"
	LabelInvalid        = "invalid"
	LabelUnparseable    = "unparseable"
	LabelUnknownDilemma = "error"
)

// LabelDelimiter joins multiple value labels in one artifact cell.
const LabelDelimiter = ","

// JoinLabels joins labels with LabelDelimiter.
func JoinLabels(labels []string) string {
	return strings.Join(labels, LabelDelimiter)
}

// SplitLabels splits a label cell into its members. It accepts both ","
// and "|" so artifacts written by older tooling still read as sets.
func SplitLabels(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == '|' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ParsedChoiceRow is one row of the tabular artifact.
type ParsedChoiceRow struct {
	DilemmaID   string
	Choice      Choice
	Labels      string
	ModelName   string
	DilemmaType DilemmaType
}

// LabelSet returns the row's labels as a set.
func (r ParsedChoiceRow) LabelSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, l := range SplitLabels(r.Labels) {
		set[l] = struct{}{}
	}
	return set
}

// Key identifies a (dilemma, model, variant) triple.
type Key struct {
	DilemmaID   string
	ModelName   string
	DilemmaType DilemmaType
}

func (r ParsedChoiceRow) Key() Key {
	return Key{DilemmaID: r.DilemmaID, ModelName: r.ModelName, DilemmaType: r.DilemmaType}
}
