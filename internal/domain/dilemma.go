package domain

// OptionID identifies one of the two answers of a dilemma.
type OptionID string

const (
	OptionA OptionID = "A"
	OptionB OptionID = "B"
)

func (o OptionID) String() string { return string(o) }

func (o OptionID) IsValid() bool {
	return o == OptionA || o == OptionB
}

// Strength grades how sharply a dilemma separates its two values.
type Strength string

const (
	StrengthPrime Strength = "prime"
	StrengthOkay  Strength = "okay"
	StrengthWeak  Strength = "weak"
)

func (s Strength) String() string { return string(s) }

func (s Strength) IsValid() bool {
	switch s {
	case StrengthPrime, StrengthOkay, StrengthWeak:
		return true
	}
	return false
}

// rank orders strengths from strictest (0) to loosest.
func (s Strength) rank() int {
	switch s {
	case StrengthPrime:
		return 0
	case StrengthOkay:
		return 1
	case StrengthWeak:
		return 2
	}
	return -1
}

// ParseStrengthFilter maps a CLI filter level to a Strength.
// The aliases strict, medium and all map to prime, okay and weak.
func ParseStrengthFilter(s string) (Strength, bool) {
	switch s {
	case "prime", "strict":
		return StrengthPrime, true
	case "okay", "medium":
		return StrengthOkay, true
	case "weak", "all", "":
		return StrengthWeak, true
	}
	return "", false
}

// Admits reports whether a dilemma of strength d passes a filter at level s.
// Level weak admits everything, including dilemmas without a strength.
func (s Strength) Admits(d *Strength) bool {
	if s == StrengthWeak {
		return true
	}
	if d == nil || !d.IsValid() {
		return false
	}
	return d.rank() <= s.rank()
}

// Option is one of the two answers of a dilemma.
type Option struct {
	ID   OptionID `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

// DilemmaRecord is one two-option scenario from the dilemma store.
type DilemmaRecord struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Vignette string    `json:"vignette"`
	Options  []Option  `json:"options"`
	Strength *Strength `json:"strength,omitempty"`

	// Provenance, filled by the store loader.
	Order    string `json:"-"`
	Tractate string `json:"-"`
	File     string `json:"-"`
	Line     int    `json:"-"`
}

// Option returns the option with the given id.
func (d *DilemmaRecord) Option(id OptionID) (Option, bool) {
	for _, o := range d.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// HasAnyTag reports whether either option carries a tag from set.
func (d *DilemmaRecord) HasAnyTag(set map[string]struct{}) bool {
	for _, o := range d.Options {
		for _, t := range o.Tags {
			if _, ok := set[t]; ok {
				return true
			}
		}
	}
	return false
}
