package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/ratechart/pkg/dataset"
)

// parseYears expands year arguments. An argument is a single year ("1990")
// or an inclusive range ("1990-2000"); order is preserved.
func parseYears(args []string) ([]int, error) {
	var years []int
	for _, arg := range args {
		lo, hi, isRange := strings.Cut(arg, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", arg)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || to < from {
				return nil, fmt.Errorf("invalid year range %q", arg)
			}
		}
		for y := from; y <= to; y++ {
			years = append(years, y)
		}
	}
	return years, nil
}

// loadSelection builds a selection from an optional data file followed by
// year arguments looked up in the built-in table.
func loadSelection(input string, args []string) (*dataset.Selection, error) {
	years, err := parseYears(args)
	if err != nil {
		return nil, err
	}

	var imported []dataset.Point
	if input != "" {
		if imported, err = dataset.ImportFile(input); err != nil {
			return nil, err
		}
	}
	sel, err := dataset.NewSelection(imported...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	for _, y := range years {
		if _, err := sel.Add(y); err != nil {
			return nil, err
		}
	}
	return sel, nil
}
