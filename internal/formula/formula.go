package formula

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a formula id is not in a catalog.
var ErrNotFound = errors.New("formula: not found")

// Formula is a single physics equation as served by the formulas API.
type Formula struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"formula_name" yaml:"formula_name"`
	Latex string `json:"latex" yaml:"latex"`
}

func (f Formula) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Latex)
}

// Catalog is the built-in set of formulas, in display order.
var Catalog = []Formula{
	{ID: 1, Name: "Momentum", Latex: `\vec{p} = m \vec{v}`},
	{ID: 2, Name: "Conservation of Momentum", Latex: `\vec{p}_{1,\text{initial}} + \vec{p}_{2,\text{initial}} = \vec{p}_{1,\text{final}} + \vec{p}_{2,\text{final}}`},
	{ID: 3, Name: "Newton's Second Law", Latex: `F = ma`},
	{ID: 4, Name: "Kinetic Energy", Latex: `E_k = \frac{1}{2} m v^2`},
	{ID: 5, Name: "Work", Latex: `W = F d`},
	{ID: 6, Name: "Power", Latex: `P = \frac{W}{t}`},
}

// Builtin returns a copy of Catalog so callers can't mutate the shared slice.
func Builtin() []Formula {
	out := make([]Formula, len(Catalog))
	copy(out, Catalog)
	return out
}

func Lookup(id int) (Formula, error) {
	for _, f := range Catalog {
		if f.ID == id {
			return f, nil
		}
	}
	return Formula{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}
