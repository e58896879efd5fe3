// Package calc evaluates the built-in physics calculators. Inputs are
// quantities such as "2 km/h" and are converted to SI base units before the
// formula is applied.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/physview/internal/formula"
	"github.com/san-kum/physview/internal/units"
)

var (
	// ErrUnknownFormula indicates a calculator name not in the registry.
	ErrUnknownFormula = errors.New("calc: unknown formula")

	// ErrMissingInput indicates a required input was not supplied.
	ErrMissingInput = errors.New("calc: missing input")

	// ErrDivideByZero indicates a zero denominator, e.g. power over zero time.
	ErrDivideByZero = errors.New("calc: division by zero")

	// ErrBadSweep indicates an unusable sweep range or sample count.
	ErrBadSweep = errors.New("calc: invalid sweep")
)

// Input is one named operand. Category names a units category; an empty
// Category means the value is given directly in Unit.
type Input struct {
	Name     string
	Category string
	Unit     string
}

// Calculator computes one quantity from SI inputs.
type Calculator struct {
	Name      string
	FormulaID int
	Inputs    []Input
	Unit      string

	fn func(in []float64) (float64, error)
}

// Formula returns the catalog entry the calculator implements.
func (c Calculator) Formula() formula.Formula {
	f, err := formula.Lookup(c.FormulaID)
	if err != nil {
		return formula.Formula{Name: c.Name}
	}
	return f
}

func (c Calculator) InputNames() []string {
	out := make([]string, len(c.Inputs))
	for i, in := range c.Inputs {
		out[i] = in.Name
	}
	return out
}

var registry = []Calculator{
	{
		Name: "momentum", FormulaID: 1, Unit: "kg*m/s",
		Inputs: []Input{{"mass", "Mass", ""}, {"velocity", "Speed", ""}},
		fn:     func(in []float64) (float64, error) { return in[0] * in[1], nil },
	},
	{
		Name: "force", FormulaID: 3, Unit: "N",
		Inputs: []Input{{"mass", "Mass", ""}, {"acceleration", "", "m/s^2"}},
		fn:     func(in []float64) (float64, error) { return in[0] * in[1], nil },
	},
	{
		Name: "kinetic_energy", FormulaID: 4, Unit: "J",
		Inputs: []Input{{"mass", "Mass", ""}, {"velocity", "Speed", ""}},
		fn:     func(in []float64) (float64, error) { return 0.5 * in[0] * in[1] * in[1], nil },
	},
	{
		Name: "work_done", FormulaID: 5, Unit: "J",
		Inputs: []Input{{"force", "Force", ""}, {"distance", "Length", ""}},
		fn:     func(in []float64) (float64, error) { return in[0] * in[1], nil },
	},
	{
		Name: "power", FormulaID: 6, Unit: "W",
		Inputs: []Input{{"work", "Energy", ""}, {"time", "Time", ""}},
		fn: func(in []float64) (float64, error) {
			if in[1] == 0 {
				return 0, ErrDivideByZero
			}
			return in[0] / in[1], nil
		},
	},
}

// Calculators returns the registry in menu order.
func Calculators() []Calculator {
	out := make([]Calculator, len(registry))
	copy(out, registry)
	return out
}

func Names() []string {
	out := make([]string, len(registry))
	for i, c := range registry {
		out[i] = c.Name
	}
	return out
}

func Get(name string) (Calculator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range registry {
		if c.Name == key {
			return c, nil
		}
	}
	return Calculator{}, fmt.Errorf("%w: %q", ErrUnknownFormula, name)
}

// Operand is an input after conversion to SI.
type Operand struct {
	Name  string
	Given string
	Unit  string
	SI    float64
}

type Result struct {
	Calculator string
	Value      float64
	Unit       string
	Operands   []Operand
	Warnings   []string
}

func (r Result) String() string {
	return fmt.Sprintf("%s = %s %s", r.Calculator, strconv.FormatFloat(r.Value, 'g', 6, 64), r.Unit)
}

// Compute evaluates the named calculator. values maps input names to
// quantities like "3 km/h"; a bare number is taken in the base unit. An
// unrecognized unit falls back to the base unit and adds a warning.
func Compute(name string, values map[string]string) (Result, error) {
	c, err := Get(name)
	if err != nil {
		return Result{}, err
	}
	return c.Compute(values)
}

func (c Calculator) Compute(values map[string]string) (Result, error) {
	res := Result{Calculator: c.Name, Unit: c.Unit}
	si := make([]float64, len(c.Inputs))

	for i, in := range c.Inputs {
		text, ok := values[in.Name]
		if !ok || strings.TrimSpace(text) == "" {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingInput, in.Name)
		}
		op, warning, err := convert(in, text)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", in.Name, err)
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		si[i] = op.SI
		res.Operands = append(res.Operands, op)
	}

	v, err := c.fn(si)
	if err != nil {
		return Result{}, err
	}
	res.Value = v
	return res, nil
}

func convert(in Input, text string) (Operand, string, error) {
	if in.Category == "" {
		value, symbol := splitValue(text)
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Operand{}, "", fmt.Errorf("%w: %q", units.ErrBadQuantity, text)
		}
		op := Operand{Name: in.Name, Given: text, Unit: in.Unit, SI: v}
		if symbol != "" && symbol != in.Unit {
			return op, fmt.Sprintf("invalid unit %q for %s, using %s", symbol, in.Name, in.Unit), nil
		}
		return op, "", nil
	}

	q, err := units.ParseIn(in.Category, text)
	if errors.Is(err, units.ErrUnknownUnit) {
		cat, cerr := units.Get(in.Category)
		if cerr != nil {
			return Operand{}, "", cerr
		}
		value, symbol := splitValue(text)
		v, perr := strconv.ParseFloat(value, 64)
		if perr != nil {
			return Operand{}, "", err
		}
		base := cat.BaseUnit()
		op := Operand{Name: in.Name, Given: text, Unit: base.Symbol, SI: v}
		return op, fmt.Sprintf("invalid unit %q for %s, using %s", symbol, in.Name, base.Symbol), nil
	}
	if err != nil {
		return Operand{}, "", err
	}
	return Operand{Name: in.Name, Given: text, Unit: q.Unit.Symbol, SI: q.Base()}, "", nil
}

// splitValue separates "12.5 furlongs" into "12.5" and "furlongs".
func splitValue(text string) (string, string) {
	text = strings.TrimSpace(text)
	if i := strings.IndexFunc(text, func(r rune) bool { return r == ' ' || r == '\t' }); i >= 0 {
		return text[:i], strings.TrimSpace(text[i:])
	}
	end := len(text)
	for i, r := range text {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			end = i
			break
		}
	}
	return text[:end], text[end:]
}

// Series is a sampled sweep of one input.
type Series struct {
	Input string
	Unit  string
	X     []float64
	Y     []float64
}

// Sweep evaluates name at n evenly spaced values of the vary input between
// from and to (in that input's base unit), holding the fixed inputs. Points
// where the formula divides by zero are skipped.
func Sweep(name string, fixed map[string]string, vary string, from, to float64, n int) (Series, error) {
	c, err := Get(name)
	if err != nil {
		return Series{}, err
	}
	if n < 2 || math.IsNaN(from) || math.IsNaN(to) || from == to {
		return Series{}, fmt.Errorf("%w: %d points over [%g, %g]", ErrBadSweep, n, from, to)
	}

	var varied *Input
	for i := range c.Inputs {
		if c.Inputs[i].Name == vary {
			varied = &c.Inputs[i]
		}
	}
	if varied == nil {
		return Series{}, fmt.Errorf("%w: %s has no input %q", ErrBadSweep, c.Name, vary)
	}

	unit := varied.Unit
	if varied.Category != "" {
		cat, err := units.Get(varied.Category)
		if err != nil {
			return Series{}, err
		}
		unit = cat.BaseUnit().Symbol
	}

	values := make(map[string]string, len(fixed)+1)
	for k, v := range fixed {
		values[k] = v
	}

	s := Series{Input: vary, Unit: unit}
	step := (to - from) / float64(n-1)
	for i := 0; i < n; i++ {
		x := from + float64(i)*step
		values[vary] = strconv.FormatFloat(x, 'g', -1, 64) + " " + unit
		res, err := c.Compute(values)
		if errors.Is(err, ErrDivideByZero) {
			continue
		}
		if err != nil {
			return Series{}, err
		}
		s.X = append(s.X, x)
		s.Y = append(s.Y, res.Value)
	}
	return s, nil
}
