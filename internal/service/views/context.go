package views

import (
	"github.com/dilma-lab/dilma/internal/domain"
)

// Context is the filter state threaded through every view. Empty fields
// mean "all".
type Context struct {
	Tractate    string             `json:"tractate,omitempty"`
	Order       string             `json:"order,omitempty"`
	DilemmaType domain.DilemmaType `json:"dilemma_type,omitempty"`
	ModelA      string             `json:"model_a,omitempty"`
	ModelB      string             `json:"model_b,omitempty"`
	Axis        string             `json:"axis,omitempty"`
}

// Validate rejects malformed filter values.
func (c Context) Validate() error {
	if c.DilemmaType != "" && !c.DilemmaType.IsValid() {
		return domain.NewValidationError("dilemma_type", "must be original or neutral")
	}
	return nil
}

// admitsDilemma applies the tractate and order filters.
func (c Context) admitsDilemma(d *domain.DilemmaRecord) bool {
	if c.Tractate != "" && d.Tractate != c.Tractate {
		return false
	}
	if c.Order != "" && d.Order != c.Order {
		return false
	}
	return true
}

func (c Context) scoped() bool {
	return c.Tractate != "" || c.Order != ""
}

// WithTractate returns a copy of c filtered to tractate.
func (c Context) WithTractate(t string) Context {
	c.Tractate = t
	return c
}

// WithDilemmaType returns a copy of c filtered to t.
func (c Context) WithDilemmaType(t domain.DilemmaType) Context {
	c.DilemmaType = t
	return c
}

// WithModels returns a copy of c comparing a against b.
func (c Context) WithModels(a, b string) Context {
	c.ModelA, c.ModelB = a, b
	return c
}

// WithAxis returns a copy of c restricted to one axis.
func (c Context) WithAxis(name string) Context {
	c.Axis = name
	return c
}
