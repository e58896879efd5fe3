package view

import "github.com/san-kum/physview/internal/formula"

// State is one of Loading, Loaded or Errored.
type State interface {
	isState()
}

// Loading is the initial state, before the fetch resolves.
type Loading struct{}

// Loaded holds the fetched formulas in the order the API returned them.
type Loaded struct {
	Formulas []formula.Formula
}

// Errored holds the message of the failed fetch.
type Errored struct {
	Message string
}

func (Loading) isState() {}
func (Loaded) isState()  {}
func (Errored) isState() {}

// Terminal reports whether s can no longer change.
func Terminal(s State) bool {
	switch s.(type) {
	case Loaded, Errored:
		return true
	}
	return false
}
