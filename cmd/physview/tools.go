package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/physview/internal/calc"
	"github.com/san-kum/physview/internal/mathrender"
	"github.com/san-kum/physview/internal/units"
)

func listUnits(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		printHeader(os.Stdout, "unit categories:")
		for i, c := range units.Categories() {
			fmt.Printf("  %2d. %-12s %s\n", i+1, c.Name, mutedStyle.Sprint("base: "+c.BaseUnit().String()))
		}
		return nil
	}

	c, err := units.Get(args[0])
	if err != nil {
		// accept the menu number as well as the name
		n, nerr := strconv.Atoi(args[0])
		cats := units.Categories()
		if nerr != nil || n < 1 || n > len(cats) {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(units.Names(), ", "))
		}
		c = cats[n-1]
	}

	items := make([]string, len(c.Units))
	for i, u := range c.Units {
		items[i] = u.String()
	}
	printHeader(os.Stdout, "%s units (base %s):\n", c.Name, c.Base)
	for _, line := range units.Columns(items, 3, 28) {
		fmt.Println(line)
	}
	return nil
}

func listCalculators(cmd *cobra.Command, args []string) error {
	r := mathrender.NewUnicode()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINPUTS\tRESULT\tFORMULA")
	for _, c := range calc.Calculators() {
		var in []string
		for _, i := range c.Inputs {
			unit := i.Unit
			if i.Category != "" {
				cat, err := units.Get(i.Category)
				if err != nil {
					return err
				}
				unit = strings.Join(cat.Symbols(), "|")
			}
			in = append(in, fmt.Sprintf("%s[%s]", i.Name, unit))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, strings.Join(in, " "), c.Unit, r.Render(mathrender.Inline(c.Formula().Latex)))
	}
	return w.Flush()
}

// parseInputs turns repeated name=value flags into a map.
func parseInputs(raw []string) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid input %q: want name=value", kv)
		}
		values[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return values, nil
}

func runCalc(cmd *cobra.Command, args []string) error {
	values, err := parseInputs(inputs)
	if err != nil {
		return err
	}
	res, err := calc.Compute(args[0], values)
	if err != nil {
		if c, gerr := calc.Get(args[0]); gerr == nil {
			return fmt.Errorf("%w (inputs: %s)", err, strings.Join(c.InputNames(), ", "))
		}
		return fmt.Errorf("%w (available: %s)", err, strings.Join(calc.Names(), ", "))
	}

	for _, warning := range res.Warnings {
		logger.Warn(warning, zap.String("formula", res.Calculator))
		printWarning(os.Stderr, warning)
	}
	for _, op := range res.Operands {
		fmt.Printf("  %-13s %s = %g %s\n", op.Name, op.Given, op.SI, op.Unit)
	}
	resultStyle.Println(res)
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	values, err := parseInputs(inputs)
	if err != nil {
		return err
	}
	s, err := calc.Sweep(args[0], values, vary, sweepFrom, sweepTo, sweepSteps)
	if err != nil {
		return err
	}
	if len(s.Y) == 0 {
		return fmt.Errorf("no plottable points in [%g, %g]", sweepFrom, sweepTo)
	}

	c, _ := calc.Get(args[0])
	caption := fmt.Sprintf("%s (%s) vs %s [%g, %g] %s", c.Name, c.Unit, s.Input, sweepFrom, sweepTo, s.Unit)
	graph := asciigraph.Plot(s.Y,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}
