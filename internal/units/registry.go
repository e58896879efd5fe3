// Package units holds the unit registry used by the calculator and the
// units listing: ten physical categories, each with a base unit and the
// compatible units that convert into it.
package units

import (
	"fmt"
	"strings"
)

// Unit converts to its category's base unit as (value + Offset) * Factor.
type Unit struct {
	Symbol string
	Name   string
	Factor float64
	Offset float64
}

func (u Unit) String() string {
	if u.Name == "" || u.Name == u.Symbol {
		return u.Symbol
	}
	return u.Symbol + " (" + u.Name + ")"
}

// Category groups units that measure the same dimension.
type Category struct {
	Name  string
	Base  string
	Units []Unit
}

// BaseUnit returns the unit whose symbol is Base.
func (c Category) BaseUnit() Unit {
	for _, u := range c.Units {
		if u.Symbol == c.Base {
			return u
		}
	}
	return Unit{Symbol: c.Base, Name: c.Base, Factor: 1}
}

// Lookup finds a unit by exact symbol, then by case-insensitive symbol or name.
func (c Category) Lookup(symbol string) (Unit, error) {
	symbol = strings.TrimSpace(symbol)
	for _, u := range c.Units {
		if u.Symbol == symbol {
			return u, nil
		}
	}
	for _, u := range c.Units {
		if strings.EqualFold(u.Symbol, symbol) || strings.EqualFold(u.Name, symbol) {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("%w: %q in %s", ErrUnknownUnit, symbol, c.Name)
}

// Symbols lists the unit symbols in registry order.
func (c Category) Symbols() []string {
	out := make([]string, len(c.Units))
	for i, u := range c.Units {
		out[i] = u.Symbol
	}
	return out
}

var registry = []Category{
	{Name: "Length", Base: "m", Units: []Unit{
		{"m", "meter", 1, 0},
		{"mm", "millimeter", 1e-3, 0},
		{"cm", "centimeter", 1e-2, 0},
		{"km", "kilometer", 1e3, 0},
		{"in", "inch", 0.0254, 0},
		{"ft", "foot", 0.3048, 0},
		{"yd", "yard", 0.9144, 0},
		{"mi", "mile", 1609.344, 0},
		{"nmi", "nautical_mile", 1852, 0},
		{"au", "astronomical_unit", 1.495978707e11, 0},
		{"ly", "light_year", 9.4607304725808e15, 0},
	}},
	{Name: "Mass", Base: "kg", Units: []Unit{
		{"kg", "kilogram", 1, 0},
		{"g", "gram", 1e-3, 0},
		{"mg", "milligram", 1e-6, 0},
		{"t", "tonne", 1e3, 0},
		{"lb", "pound", 0.45359237, 0},
		{"oz", "ounce", 0.028349523125, 0},
		{"Da", "dalton", 1.66053906660e-27, 0},
	}},
	{Name: "Time", Base: "s", Units: []Unit{
		{"s", "second", 1, 0},
		{"ms", "millisecond", 1e-3, 0},
		{"min", "minute", 60, 0},
		{"hr", "hour", 3600, 0},
		{"day", "day", 86400, 0},
		{"week", "week", 604800, 0},
		{"yr", "year", 31557600, 0},
	}},
	{Name: "Speed", Base: "m/s", Units: []Unit{
		{"m/s", "meter_per_second", 1, 0},
		{"km/h", "kilometer_per_hour", 1 / 3.6, 0},
		{"mph", "mile_per_hour", 0.44704, 0},
		{"kn", "knot", 1852.0 / 3600, 0},
		{"ft/s", "foot_per_second", 0.3048, 0},
		{"c", "speed_of_light", 299792458, 0},
	}},
	{Name: "Force", Base: "N", Units: []Unit{
		{"N", "newton", 1, 0},
		{"kN", "kilonewton", 1e3, 0},
		{"dyn", "dyne", 1e-5, 0},
		{"lbf", "pound_force", 4.4482216152605, 0},
		{"kgf", "kilogram_force", 9.80665, 0},
	}},
	{Name: "Energy", Base: "J", Units: []Unit{
		{"J", "joule", 1, 0},
		{"kJ", "kilojoule", 1e3, 0},
		{"MJ", "megajoule", 1e6, 0},
		{"cal", "calorie", 4.184, 0},
		{"kcal", "kilocalorie", 4184, 0},
		{"Wh", "watt_hour", 3600, 0},
		{"kWh", "kilowatt_hour", 3.6e6, 0},
		{"eV", "electron_volt", 1.602176634e-19, 0},
		{"erg", "erg", 1e-7, 0},
		{"BTU", "british_thermal_unit", 1055.05585262, 0},
	}},
	{Name: "Power", Base: "W", Units: []Unit{
		{"W", "watt", 1, 0},
		{"kW", "kilowatt", 1e3, 0},
		{"MW", "megawatt", 1e6, 0},
		{"hp", "horsepower", 745.69987158227022, 0},
		{"erg/s", "erg_per_second", 1e-7, 0},
		{"BTU/h", "btu_per_hour", 0.29307107017, 0},
	}},
	{Name: "Pressure", Base: "Pa", Units: []Unit{
		{"Pa", "pascal", 1, 0},
		{"kPa", "kilopascal", 1e3, 0},
		{"MPa", "megapascal", 1e6, 0},
		{"bar", "bar", 1e5, 0},
		{"atm", "atmosphere", 101325, 0},
		{"psi", "pound_per_square_inch", 6894.757293168, 0},
		{"mmHg", "millimeter_Hg", 133.322387415, 0},
		{"torr", "torr", 101325.0 / 760, 0},
	}},
	{Name: "Temperature", Base: "K", Units: []Unit{
		{"K", "kelvin", 1, 0},
		{"degC", "celsius", 1, 273.15},
		{"degF", "fahrenheit", 5.0 / 9, 459.67},
		{"degR", "rankine", 5.0 / 9, 0},
	}},
	{Name: "Volume", Base: "L", Units: []Unit{
		{"L", "liter", 1, 0},
		{"mL", "milliliter", 1e-3, 0},
		{"m^3", "cubic_meter", 1e3, 0},
		{"cm^3", "cubic_centimeter", 1e-3, 0},
		{"ft^3", "cubic_foot", 28.316846592, 0},
		{"gal", "gallon", 3.785411784, 0},
		{"qt", "quart", 0.946352946, 0},
		{"pt", "pint", 0.473176473, 0},
	}},
}

// Categories returns the registry in display order.
func Categories() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}

// Names returns category names in display order.
func Names() []string {
	out := make([]string, len(registry))
	for i, c := range registry {
		out[i] = c.Name
	}
	return out
}

// Get returns the named category, matched case-insensitively.
func Get(name string) (Category, error) {
	for _, c := range registry {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

func Lookup(category, symbol string) (Unit, error) {
	c, err := Get(category)
	if err != nil {
		return Unit{}, err
	}
	return c.Lookup(symbol)
}

// Find searches every category for symbol, exact matches first.
func Find(symbol string) (Category, Unit, error) {
	for _, c := range registry {
		for _, u := range c.Units {
			if u.Symbol == symbol {
				return c, u, nil
			}
		}
	}
	for _, c := range registry {
		if u, err := c.Lookup(symbol); err == nil {
			return c, u, nil
		}
	}
	return Category{}, Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
}

func ToBase(value float64, u Unit) float64 {
	return (value + u.Offset) * u.Factor
}

func FromBase(value float64, u Unit) float64 {
	return value/u.Factor - u.Offset
}

// Convert converts value between two units of the named category.
func Convert(category string, value float64, from, to string) (float64, error) {
	c, err := Get(category)
	if err != nil {
		return 0, err
	}
	fu, err := c.Lookup(from)
	if err != nil {
		return 0, err
	}
	tu, err := c.Lookup(to)
	if err != nil {
		return 0, err
	}
	return FromBase(ToBase(value, fu), tu), nil
}
