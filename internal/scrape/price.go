package scrape

import (
	"strconv"
	"strings"
)

// ParsePrice extracts a positive amount from loosely formatted price text.
//
// Both decimal conventions are accepted: "1.234,56" (Brazilian/European) and
// "1,234.56". Currency symbols and surrounding text are ignored.
func ParsePrice(raw string) (float64, bool) {
	// Keep only digits and separators.
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), ".,")
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the rightmost one is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Comma only: decimal when followed by exactly 2 digits and it is the
		// only comma; otherwise a thousands separator.
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 == 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		// Dot only: same rule, mirrored. "1.234" is a thousand, "12.34" a price.
		if !(strings.Count(s, ".") == 1 && (len(s)-lastDot-1 == 2 || len(s)-lastDot-1 == 1)) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
