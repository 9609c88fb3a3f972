package aggregator

import (
	"strings"

	"github.com/dilma-lab/dilma/internal/dilemma"
	"github.com/dilma-lab/dilma/internal/domain"
)

// diagnosticAnswerLen caps the answer excerpt carried by a diagnostic.
const diagnosticAnswerLen = 50

// Diagnostic describes an answer that produced a degraded row or no row.
type Diagnostic struct {
	DilemmaID string
	Model     string
	Answer    string
	Token     string
	Reason    string
}

// Reasons carried by diagnostics.
const (
	ReasonMissingID      = "missing id"
	ReasonEmptyAnswer    = "empty answer"
	ReasonUnparseable    = "unparseable answer"
	ReasonUnknownDilemma = "unknown dilemma"
)

// FirstToken extracts the choice token of an answer: the first
// whitespace-delimited token, uppercased, with trailing . , : ; removed.
// Leading punctuation is left in place.
func FirstToken(answer string) string {
	fields := strings.Fields(answer)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(strings.ToUpper(fields[0]), ".,:;")
}

// Classify maps a choice token to a Choice.
func Classify(token string) domain.Choice {
	switch token {
	case "A":
		return domain.ChoiceA
	case "B":
		return domain.ChoiceB
	case "INVALID", "I":
		return domain.ChoiceInvalid
	default:
		return domain.ChoiceUnparseable
	}
}

// ParseAnswer turns one answer record into one artifact row. It is pure: the
// same record and lookup always give the same row. ok is false when the
// record carries no id or an empty answer; such records produce no row.
// A non-nil diagnostic accompanies every skipped record, every UNPARSEABLE
// row and every UNKNOWN_DILEMMA row.
func ParseAnswer(rec domain.AnswerRecord, lookup dilemma.Lookup) (row domain.ParsedChoiceRow, diag *Diagnostic, ok bool) {
	model := rec.ModelName()
	answer := strings.TrimSpace(rec.Answer)

	if rec.ID == "" {
		return row, &Diagnostic{Model: model, Answer: excerpt(answer), Reason: ReasonMissingID}, false
	}
	if answer == "" {
		return row, &Diagnostic{DilemmaID: rec.ID, Model: model, Reason: ReasonEmptyAnswer}, false
	}

	token := FirstToken(answer)
	choice := Classify(token)

	row = domain.ParsedChoiceRow{
		DilemmaID:   rec.ID,
		Choice:      choice,
		ModelName:   model,
		DilemmaType: rec.Type(),
	}

	d, found := lookup.Get(rec.ID)
	if !found {
		row.Choice = domain.ChoiceUnknownDilemma
		row.Labels = domain.LabelUnknownDilemma
		return row, &Diagnostic{DilemmaID: rec.ID, Model: model, Answer: excerpt(answer), Token: token, Reason: ReasonUnknownDilemma}, true
	}

	switch choice {
	case domain.ChoiceA, domain.ChoiceB:
		row.Labels = optionLabels(d, domain.OptionID(choice))
	case domain.ChoiceInvalid:
		row.Labels = domain.LabelInvalid
	default:
		row.Labels = domain.LabelUnparseable
		diag = &Diagnostic{DilemmaID: rec.ID, Model: model, Answer: excerpt(answer), Token: token, Reason: ReasonUnparseable}
	}

	return row, diag, true
}

func optionLabels(d *domain.DilemmaRecord, id domain.OptionID) string {
	opt, ok := d.Option(id)
	if !ok {
		return domain.LabelTagNotFound
	}
	if len(opt.Tags) == 0 {
		return domain.LabelNoTags
	}
	return domain.JoinLabels(opt.Tags)
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= diagnosticAnswerLen {
		return s
	}
	return string(r[:diagnosticAnswerLen])
}
