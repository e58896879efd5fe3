package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physview/internal/formula"
)

// Export formats understood by ExportTo.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

func ExportJSON(w io.Writer, formulas []formula.Formula) error {
	if formulas == nil {
		formulas = []formula.Formula{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(formulas)
}

func ExportCSV(w io.Writer, formulas []formula.Formula) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "formula_name", "latex"}); err != nil {
		return err
	}
	for _, f := range formulas {
		if err := cw.Write([]string{strconv.Itoa(f.ID), f.Name, f.Latex}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportYAML(w io.Writer, formulas []formula.Formula) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(formulas); err != nil {
		return err
	}
	return enc.Close()
}

func ExportTo(w io.Writer, format string, formulas []formula.Formula) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return ExportJSON(w, formulas)
	case FormatCSV:
		return ExportCSV(w, formulas)
	case FormatYAML, "yml":
		return ExportYAML(w, formulas)
	}
	return fmt.Errorf("unknown export format: %s", format)
}

// ExportFile writes formulas to path, choosing the format from its extension.
func ExportFile(path string, formulas []formula.Formula) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := ExportTo(file, format, formulas); err != nil {
		return err
	}
	return file.Close()
}
