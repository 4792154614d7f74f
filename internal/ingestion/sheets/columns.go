// Package sheets fetches tabular snapshots from a Google Sheets spreadsheet
// through the values.get REST endpoint and turns them into header-keyed
// records for the reconciliation engine.
package sheets

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedRange reports a column selector that could not be parsed.
var ErrMalformedRange = errors.New("malformed column range")

// ParseColumnRanges parses a column selector like "0:9" or "3, 5" into the
// sorted, de-duplicated set of zero-based column indices it covers.
// Selectors are comma-separated tokens; each token is either a single index
// or an inclusive "start:end" range.
func ParseColumnRanges(selector string) ([]int, error) {
	seen := make(map[int]bool)
	for _, token := range strings.Split(selector, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("%w: empty token in %q", ErrMalformedRange, selector)
		}

		if start, end, ok := strings.Cut(token, ":"); ok {
			lo, err := parseColumnIndex(start)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrMalformedRange, token)
			}
			hi, err := parseColumnIndex(end)
			if err != nil || hi < lo {
				return nil, fmt.Errorf("%w: %q", ErrMalformedRange, token)
			}
			for i := lo; i <= hi; i++ {
				seen[i] = true
			}
			continue
		}

		idx, err := parseColumnIndex(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRange, token)
		}
		seen[idx] = true
	}

	cols := make([]int, 0, len(seen))
	for i := range seen {
		cols = append(cols, i)
	}
	sort.Ints(cols)
	return cols, nil
}

func parseColumnIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid column index %q", s)
	}
	return n, nil
}
