package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physview/internal/formula"
)

// ErrInvalidFormula is returned for records missing a name or latex body.
var ErrInvalidFormula = errors.New("store: invalid formula")

// Store lists the formulas served by the API.
type Store interface {
	List(ctx context.Context) ([]formula.Formula, error)
}

// MemoryStore serves a fixed slice.
type MemoryStore struct {
	formulas []formula.Formula
}

func NewMemory(formulas []formula.Formula) *MemoryStore {
	cp := make([]formula.Formula, len(formulas))
	copy(cp, formulas)
	return &MemoryStore{formulas: cp}
}

func (s *MemoryStore) List(ctx context.Context) ([]formula.Formula, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]formula.Formula, len(s.formulas))
	copy(out, s.formulas)
	return out, nil
}

// FileStore reads a YAML list of formulas on every List, so edits to the
// file are picked up without a restart.
type FileStore struct {
	path string
}

func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) List(ctx context.Context) ([]formula.Formula, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var formulas []formula.Formula
	if err := yaml.Unmarshal(data, &formulas); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	for i, f := range formulas {
		if err := Validate(f); err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", s.path, i, err)
		}
	}
	if formulas == nil {
		formulas = []formula.Formula{}
	}
	return formulas, nil
}

// SaveFile writes formulas as YAML.
func SaveFile(path string, formulas []formula.Formula) error {
	data, err := yaml.Marshal(formulas)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate enforces the column constraints of the formula table.
func Validate(f formula.Formula) error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty formula_name", ErrInvalidFormula)
	}
	if len(f.Name) > MaxNameLen {
		return fmt.Errorf("%w: formula_name longer than %d", ErrInvalidFormula, MaxNameLen)
	}
	if f.Latex == "" {
		return fmt.Errorf("%w: empty latex", ErrInvalidFormula)
	}
	return nil
}
