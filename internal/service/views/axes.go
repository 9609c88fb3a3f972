package views

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dilma-lab/dilma/internal/domain"
)

// Axis is a named bipolar value axis: two disjoint tag sets.
type Axis struct {
	Name  string   `yaml:"name"  json:"name"`
	Self  []string `yaml:"self"  json:"self"`
	Other []string `yaml:"other" json:"other"`

	selfSet  map[string]struct{}
	otherSet map[string]struct{}
}

func (a *Axis) index() {
	a.selfSet = toSet(a.Self)
	a.otherSet = toSet(a.Other)
}

// SelfSet returns the self-leaning tags as a set.
func (a *Axis) SelfSet() map[string]struct{} {
	if a.selfSet == nil {
		a.index()
	}
	return a.selfSet
}

// OtherSet returns the other-leaning tags as a set.
func (a *Axis) OtherSet() map[string]struct{} {
	if a.otherSet == nil {
		a.index()
	}
	return a.otherSet
}

// Touches reports whether any option of d carries a tag of either pole.
func (a *Axis) Touches(d *domain.DilemmaRecord) bool {
	return d.HasAnyTag(a.SelfSet()) || d.HasAnyTag(a.OtherSet())
}

func (a *Axis) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return domain.NewValidationError("name", "axis name is required")
	}
	if len(a.Self) == 0 || len(a.Other) == 0 {
		return domain.NewValidationError(a.Name, "both poles need at least one tag")
	}
	a.index()
	for t := range a.selfSet {
		if _, ok := a.otherSet[t]; ok {
			return domain.NewValidationError(a.Name, fmt.Sprintf("tag %q is on both poles", t))
		}
	}
	return nil
}

// DefaultAxes are the six built-in axes.
func DefaultAxes() []Axis {
	axes := []Axis{
		{
			Name:  "Survival / Welfare",
			Self:  []string{"self-preservation", "self-defense", "self-sacrifice", "self-control", "self-discipline", "financial-sacrifice"},
			Other: []string{"altruism", "duty-to-rescue", "defense-of-others", "compassion", "family-loyalty", "collective-responsibility"},
		},
		{
			Name:  "Entitlement / Obligation",
			Self:  []string{"property-rights", "legalism", "tradition", "simplification"},
			Other: []string{"responsibility", "restitution", "prudence", "fairness", "parental-responsibility", "environmental-stewardship"},
		},
		{
			Name:  "Even-split / Protection",
			Self:  []string{"reciprocity", "trust", "collaboration"},
			Other: []string{"worker-dignity", "prudence", "integrity", "humility"},
		},
		{
			Name:  "Sacred Life / Instrumental Life",
			Self:  []string{"sanctity-of-life", "life", "maternal-health", "potential-life", "self-sacrifice"},
			Other: []string{"utilitarian", "property-vs-life", "public-safety", "deterrence", "preemptive-justice"},
		},
		{
			Name:  "Legal Authority / Personal Agency",
			Self:  []string{"rule-of-law", "due-process", "authority", "public-safety"},
			Other: []string{"vigilantism", "personal-agency", "innovation", "peer-pressure"},
		},
		{
			Name:  "Transcendent Norm / Pragmatism",
			Self:  []string{"religious-duty", "public-sanctification", "absolutism", "defense-of-values", "tradition"},
			Other: []string{"proportionality", "prudence", "simplification", "innovation", "reconciliation", "hospitality"},
		},
	}
	for i := range axes {
		axes[i].index()
	}
	return axes
}

// LoadAxes reads axes from a YAML file of the form
// `axes: [{name, self: [...], other: [...]}]`. An empty path yields
// DefaultAxes.
func LoadAxes(path string) ([]Axis, error) {
	if path == "" {
		return DefaultAxes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("axes: read %s: %w", path, err)
	}

	var doc struct {
		Axes []Axis `yaml:"axes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("axes: parse %s: %w", path, err)
	}
	if len(doc.Axes) == 0 {
		return nil, fmt.Errorf("axes: %s defines no axes: %w", path, domain.ErrValidation)
	}

	seen := make(map[string]bool, len(doc.Axes))
	for i := range doc.Axes {
		if err := doc.Axes[i].validate(); err != nil {
			return nil, fmt.Errorf("axes: %s: %w", path, err)
		}
		if seen[doc.Axes[i].Name] {
			return nil, fmt.Errorf("axes: %s: duplicate axis %q: %w", path, doc.Axes[i].Name, domain.ErrValidation)
		}
		seen[doc.Axes[i].Name] = true
	}
	return doc.Axes, nil
}

// FindAxis returns the axis with the given name.
func FindAxis(axes []Axis, name string) (*Axis, bool) {
	for i := range axes {
		if axes[i].Name == name {
			return &axes[i], true
		}
	}
	return nil, false
}

func toSet(tags []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return m
}
