package views

import (
	"fmt"
	"sort"

	"github.com/dilma-lab/dilma/internal/domain"
)

// TagCount is one bar of the tag distribution.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagDistribution counts option tags over the dilemmas admitted by c,
// sorted by count descending then tag.
func (d *Dataset) TagDistribution(c Context) []TagCount {
	counts := make(map[string]int)
	for _, rec := range d.Dilemmas(c) {
		for _, o := range rec.Options {
			for _, t := range o.Tags {
				counts[t]++
			}
		}
	}

	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// AxisCount holds one model's counts on one axis.
type AxisCount struct {
	Axis    string `json:"axis"`
	Model   string `json:"model"`
	Self    int    `json:"self"`
	Other   int    `json:"other"`
	Invalid int    `json:"invalid"`
}

// AxisDistribution counts, per model and axis, the rows leaning to each
// pole and the INVALID rows on dilemmas the axis touches. An empty models
// list means every model admitted by c. Results are ordered by axis, then
// by the order of models.
func (d *Dataset) AxisDistribution(axes []Axis, c Context, models []string) []AxisCount {
	if len(models) == 0 {
		models = d.Models(c)
	}

	byModel := make(map[string][]domain.ParsedChoiceRow, len(models))
	for _, r := range d.Rows(c) {
		byModel[r.ModelName] = append(byModel[r.ModelName], r)
	}

	out := make([]AxisCount, 0, len(axes)*len(models))
	for i := range axes {
		ax := &axes[i]
		for _, m := range models {
			out = append(out, d.countAxis(ax, m, byModel[m]))
		}
	}
	return out
}

func (d *Dataset) countAxis(ax *Axis, model string, rows []domain.ParsedChoiceRow) AxisCount {
	ac := AxisCount{Axis: ax.Name, Model: model}
	self, other := ax.SelfSet(), ax.OtherSet()

	for _, r := range rows {
		labels := r.LabelSet()
		if intersects(labels, self) {
			ac.Self++
		}
		if intersects(labels, other) {
			ac.Other++
		}
		if r.Choice == domain.ChoiceInvalid {
			if rec, ok := d.store.Get(r.DilemmaID); ok && ax.Touches(rec) {
				ac.Invalid++
			}
		}
	}
	return ac
}

// AxisDelta is model B minus model A on one axis.
type AxisDelta struct {
	Axis         string    `json:"axis"`
	A            AxisCount `json:"a"`
	B            AxisCount `json:"b"`
	DeltaSelf    int       `json:"delta_self"`
	DeltaOther   int       `json:"delta_other"`
	DeltaInvalid int       `json:"delta_invalid"`
}

// Changed reports whether any count differs between the models.
func (a AxisDelta) Changed() bool {
	return a.DeltaSelf != 0 || a.DeltaOther != 0 || a.DeltaInvalid != 0
}

// Pole names for per-dilemma differences.
const (
	PoleSelf    = "self"
	PoleOther   = "other"
	PoleInvalid = "invalid"
	PoleNone    = "n/a"
)

// DilemmaDiff is one dilemma on which the two models chose differently.
type DilemmaDiff struct {
	DilemmaID   string             `json:"dilemma_id"`
	Title       string             `json:"title"`
	DilemmaType domain.DilemmaType `json:"dilemma_type"`
	ChoiceA     domain.Choice      `json:"choice_a"`
	ChoiceB     domain.Choice      `json:"choice_b"`
	PoleA       string             `json:"pole_a"`
	PoleB       string             `json:"pole_b"`
}

// Comparison is the result of Compare.
type Comparison struct {
	ModelA       string        `json:"model_a"`
	ModelB       string        `json:"model_b"`
	Axes         []AxisDelta   `json:"axes"`
	AxesWithDiff []string      `json:"axes_with_diff"`
	Dilemmas     []DilemmaDiff `json:"dilemmas"`
}

// Compare contrasts c.ModelA with c.ModelB. Per-dilemma differences are
// limited to dilemmas touching c.Axis when it is set; poles are then read
// from that axis, otherwise from the union of all axes.
func (d *Dataset) Compare(axes []Axis, c Context) (Comparison, error) {
	if c.ModelA == "" || c.ModelB == "" {
		return Comparison{}, domain.NewValidationError("model", "model_a and model_b are required")
	}
	if c.ModelA == c.ModelB {
		return Comparison{}, domain.NewValidationError("model", "model_a and model_b must differ")
	}

	var focus *Axis
	if c.Axis != "" {
		ax, ok := FindAxis(axes, c.Axis)
		if !ok {
			return Comparison{}, fmt.Errorf("axis %q: %w", c.Axis, domain.ErrNotFound)
		}
		focus = ax
	}

	cmp := Comparison{
		ModelA:       c.ModelA,
		ModelB:       c.ModelB,
		AxesWithDiff: []string{},
		Dilemmas:     []DilemmaDiff{},
	}

	counts := d.AxisDistribution(axes, c, []string{c.ModelA, c.ModelB})
	for i := 0; i+1 < len(counts); i += 2 {
		a, b := counts[i], counts[i+1]
		delta := AxisDelta{
			Axis:         a.Axis,
			A:            a,
			B:            b,
			DeltaSelf:    b.Self - a.Self,
			DeltaOther:   b.Other - a.Other,
			DeltaInvalid: b.Invalid - a.Invalid,
		}
		cmp.Axes = append(cmp.Axes, delta)
		if delta.Changed() {
			cmp.AxesWithDiff = append(cmp.AxesWithDiff, delta.Axis)
		}
	}

	self, other := poleSets(axes, focus)
	cmp.Dilemmas = d.dilemmaDiffs(c, focus, self, other)
	return cmp, nil
}

type pairKey struct {
	id  string
	typ domain.DilemmaType
}

func (d *Dataset) dilemmaDiffs(c Context, focus *Axis, self, other map[string]struct{}) []DilemmaDiff {
	choicesA := make(map[pairKey]domain.Choice)
	var order []pairKey
	choicesB := make(map[pairKey]domain.Choice)

	for _, r := range d.Rows(c) {
		k := pairKey{r.DilemmaID, r.DilemmaType}
		switch r.ModelName {
		case c.ModelA:
			if _, seen := choicesA[k]; !seen {
				order = append(order, k)
			}
			choicesA[k] = r.Choice
		case c.ModelB:
			choicesB[k] = r.Choice
		}
	}

	out := []DilemmaDiff{}
	for _, k := range order {
		a := choicesA[k]
		b, ok := choicesB[k]
		if !ok || a == b {
			continue
		}
		rec, found := d.store.Get(k.id)
		if !found {
			continue
		}
		if focus != nil && !focus.Touches(rec) {
			continue
		}
		out = append(out, DilemmaDiff{
			DilemmaID:   k.id,
			Title:       rec.Title,
			DilemmaType: k.typ,
			ChoiceA:     a,
			ChoiceB:     b,
			PoleA:       Pole(rec, a, self, other),
			PoleB:       Pole(rec, b, self, other),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DilemmaID != out[j].DilemmaID {
			return out[i].DilemmaID < out[j].DilemmaID
		}
		return out[i].DilemmaType < out[j].DilemmaType
	})
	return out
}

// Pole classifies a choice by the tags of the chosen option. Self wins over
// other when the option carries both.
func Pole(rec *domain.DilemmaRecord, choice domain.Choice, self, other map[string]struct{}) string {
	if choice == domain.ChoiceA || choice == domain.ChoiceB {
		if opt, ok := rec.Option(domain.OptionID(choice)); ok {
			for _, t := range opt.Tags {
				if _, hit := self[t]; hit {
					return PoleSelf
				}
			}
			for _, t := range opt.Tags {
				if _, hit := other[t]; hit {
					return PoleOther
				}
			}
		}
	}
	if choice == domain.ChoiceInvalid {
		return PoleInvalid
	}
	return PoleNone
}

func poleSets(axes []Axis, focus *Axis) (self, other map[string]struct{}) {
	if focus != nil {
		return focus.SelfSet(), focus.OtherSet()
	}
	self, other = make(map[string]struct{}), make(map[string]struct{})
	for i := range axes {
		for t := range axes[i].SelfSet() {
			self[t] = struct{}{}
		}
		for t := range axes[i].OtherSet() {
			other[t] = struct{}{}
		}
	}
	return self, other
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
