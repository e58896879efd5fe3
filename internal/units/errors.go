package units

import "errors"

var (
	// ErrUnknownCategory indicates a category name not in the registry.
	ErrUnknownCategory = errors.New("units: unknown category")

	// ErrUnknownUnit indicates a unit symbol not registered under the category.
	ErrUnknownUnit = errors.New("units: unknown unit")

	// ErrBadQuantity indicates text that is not "<number> <unit>".
	ErrBadQuantity = errors.New("units: malformed quantity")
)
