package reconcile

import (
	"strconv"
	"strings"
)

// Chapter bounds used for the open-ended "Less than" / "More than" buckets of
// the source spreadsheet.
const (
	lessThanMax  = 100
	moreThanMin  = 100
	lessThanText = "Less than"
	moreThanText = "More than"
)

// deriveChapterRange turns the free-text chapter descriptor into the
// (chapter_min, chapter_max) pair stored alongside it:
//
//	"Less than 50"  -> (0, 100)
//	"More than 200" -> (100, nil)
//	"75"            -> (75, nil)
//
// The bool result reports whether the text parsed; unparsable text yields
// (0, nil) and false so the caller can log and keep going.
func deriveChapterRange(chapters string) (int, *int, bool) {
	text := strings.TrimSpace(chapters)
	if strings.HasPrefix(text, lessThanText) {
		max := lessThanMax
		return 0, &max, true
	}
	if strings.HasPrefix(text, moreThanText) {
		return moreThanMin, nil, true
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, nil, false
	}
	return n, nil, true
}
