package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Quantity is a parsed "<value> <unit>" pair.
type Quantity struct {
	Value    float64
	Unit     Unit
	Category string
}

func (q Quantity) Base() float64 {
	return ToBase(q.Value, q.Unit)
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit.Symbol
}

// ParseQuantity parses text such as "2.5 km/h" or "10kg". The space between
// number and unit is optional.
func ParseQuantity(text string) (Quantity, error) {
	text = strings.TrimSpace(text)
	value, rest, ok := splitNumber(text)
	if !ok {
		return Quantity{}, fmt.Errorf("%w: %q", ErrBadQuantity, text)
	}
	symbol := strings.TrimSpace(rest)
	if symbol == "" {
		return Quantity{}, fmt.Errorf("%w: %q has no unit", ErrBadQuantity, text)
	}
	c, u, err := Find(symbol)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: value, Unit: u, Category: c.Name}, nil
}

// ParseIn parses text whose unit must belong to category.
func ParseIn(category, text string) (Quantity, error) {
	c, err := Get(category)
	if err != nil {
		return Quantity{}, err
	}
	text = strings.TrimSpace(text)
	value, rest, ok := splitNumber(text)
	if !ok {
		return Quantity{}, fmt.Errorf("%w: %q", ErrBadQuantity, text)
	}
	symbol := strings.TrimSpace(rest)
	if symbol == "" {
		return Quantity{Value: value, Unit: c.BaseUnit(), Category: c.Name}, nil
	}
	u, err := c.Lookup(symbol)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: value, Unit: u, Category: c.Name}, nil
}

// splitNumber takes the longest prefix of text that parses as a float.
// "5eV" parses as 5 and "eV", not as the invalid exponent "5e".
func splitNumber(text string) (float64, string, bool) {
	end := 0
	for end < len(text) && strings.IndexByte("0123456789+-.eE", text[end]) >= 0 {
		end++
	}
	for ; end > 0; end-- {
		if v, err := strconv.ParseFloat(text[:end], 64); err == nil {
			return v, text[end:], true
		}
	}
	return 0, text, false
}
