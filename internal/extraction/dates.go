package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UnknownDate is reported when no purchase date could be determined.
const UnknownDate = "Unknown"

var (
	reSlashDate = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	reNamedDate = regexp.MustCompile(`(?i)\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t|tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+(\d{1,2}),\s+(\d{2,4})`)
	reDashDate  = regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{2,4})`)
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// DetectDate finds a purchase date in raw text and renders it as
// "Mon D, YYYY". It reports false when nothing date-shaped is present.
//
// Numeric dates are disambiguated by range: a first part above 12 must be
// the day, then a second part above 12 must be the day, otherwise the
// US month/day order is assumed.
func DetectDate(raw string) (string, bool) {
	return firstOf[string](
		func() (string, bool) { return slashDate(raw) },
		func() (string, bool) { return namedMonthDate(raw) },
		func() (string, bool) { return dashDate(raw) },
	)
}

func slashDate(raw string) (string, bool) {
	m := reSlashDate.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	p1, _ := strconv.Atoi(m[1])
	p2, _ := strconv.Atoi(m[2])
	year := parseYear(m[3])

	var day, month int
	switch {
	case p1 > 12:
		day, month = p1, p2
	case p2 > 12:
		day, month = p2, p1
	default:
		month, day = p1, p2
	}
	return formatDate(year, month, day), true
}

func namedMonthDate(raw string) (string, bool) {
	m := reNamedDate.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[2])
	return formatDate(parseYear(m[3]), monthNumber(m[1]), day), true
}

// dashDate reads day-month-year with no reordering.
func dashDate(raw string) (string, bool) {
	m := reDashDate.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return formatDate(parseYear(m[3]), month, day), true
}

// parseYear expands two-digit years into the 2000s.
func parseYear(s string) int {
	n, _ := strconv.Atoi(s)
	if len(s) == 2 {
		return 2000 + n
	}
	return n
}

func monthNumber(name string) int {
	prefix := strings.ToLower(name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	for i, m := range monthNames {
		if strings.ToLower(m) == prefix {
			return i + 1
		}
	}
	return 1
}

func formatDate(year, month, day int) string {
	label := fmt.Sprintf("M%d", month)
	if month >= 1 && month <= 12 {
		label = monthNames[month-1]
	}
	return fmt.Sprintf("%s %d, %d", label, day, year)
}
