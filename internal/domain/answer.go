package domain

// DilemmaType distinguishes the original wording of a dilemma from its
// neutralized variant.
type DilemmaType string

const (
	DilemmaTypeOriginal DilemmaType = "original"
	DilemmaTypeNeutral  DilemmaType = "neutral"
)

func (t DilemmaType) String() string { return string(t) }

func (t DilemmaType) IsValid() bool {
	return t == DilemmaTypeOriginal || t == DilemmaTypeNeutral
}

// UnknownModel is used when an answer record carries no model name.
const UnknownModel = "unknown_model"

// AnswerRecord is one line of the raw answer log: a model's free-text reply
// to one dilemma prompt. Optional fields are nil when absent from the log.
type AnswerRecord struct {
	ID          string       `json:"id"`
	Model       *string      `json:"model,omitempty"`
	Answer      string       `json:"answer"`
	DilemmaType *DilemmaType `json:"dilemma_type,omitempty"`
	Timestamp   *string      `json:"timestamp,omitempty"`
	SourceFile  *string      `json:"source_file,omitempty"`
	Prompt      *string      `json:"prompt,omitempty"`
	RunID       *string      `json:"run_id,omitempty"`
}

// ModelName returns the model name or UnknownModel.
func (a AnswerRecord) ModelName() string {
	if a.Model == nil || *a.Model == "" {
		return UnknownModel
	}
	return *a.Model
}

// Type returns the dilemma type, defaulting to original.
func (a AnswerRecord) Type() DilemmaType {
	if a.DilemmaType == nil || *a.DilemmaType == "" {
		return DilemmaTypeOriginal
	}
	return *a.DilemmaType
}
