package extraction

import (
	"regexp"
	"strings"
)

const (
	// UnknownBrand is reported when no card brand keyword is present.
	UnknownBrand = "Unknown"
	// UnknownLast4 is reported when no card suffix is found.
	UnknownLast4 = "0000"
)

var (
	reBracketLast4 = regexp.MustCompile(`\[(\d{4})\]`)
	reMaskedLast4  = regexp.MustCompile(`(?i)(?:\*{4,}|x{4,})(\d{4})`)
	reBareLast4    = regexp.MustCompile(`\b(\d{4})\b`)
)

// DetectCardBrand returns the first brand in table order whose keyword occurs
// in the text.
func (e *Extractor) DetectCardBrand(raw string) string {
	lower := strings.ToLower(raw)
	for _, b := range e.tables.Brands {
		if containsAny(lower, b.Keywords) {
			return b.Name
		}
	}
	return UnknownBrand
}

// DetectLast4 scans line by line for the last four digits of a card number.
// Address and phone lines are skipped entirely.
func (e *Extractor) DetectLast4(raw string) string {
	for _, line := range SplitLines(raw) {
		if line.Kind != Signal || containsAny(line.Lower, e.tables.CardNoise) {
			continue
		}
		if last4, ok := e.lineLast4(line); ok {
			return last4
		}
	}
	return UnknownLast4
}

func (e *Extractor) lineLast4(line Line) (string, bool) {
	return firstOf[string](
		func() (string, bool) { return submatch(reBracketLast4, line.Text) },
		func() (string, bool) { return submatch(reMaskedLast4, line.Text) },
		func() (string, bool) {
			// A bare group is only trusted next to card wording; zip codes
			// and store numbers look the same.
			if !containsAny(line.Lower, e.tables.CardContext) {
				return "", false
			}
			return submatch(reBareLast4, line.Text)
		},
	)
}

func submatch(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}
