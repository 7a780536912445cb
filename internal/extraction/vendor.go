package extraction

import "strings"

// UnknownVendor is reported when no vendor could be resolved.
const UnknownVendor = "Unknown"

// minVendorLen and maxVendorDigits bound what a vendor line may look like.
const (
	minVendorLen    = 3
	maxVendorDigits = 4
)

// ResolveVendor picks a vendor name from the text alone: first a known
// vendor dictionary, then the first line that reads like a business name.
func (e *Extractor) ResolveVendor(raw string) string {
	name, ok := firstOf[string](
		func() (string, bool) { return e.dictionaryVendor(raw) },
		func() (string, bool) { return e.headerVendor(raw) },
	)
	if !ok {
		return UnknownVendor
	}
	return name
}

func (e *Extractor) dictionaryVendor(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, v := range e.tables.Vendors {
		if strings.Contains(lower, v.Match) {
			return v.Name, true
		}
	}
	return "", false
}

// headerVendor returns the first line that is not boilerplate, not a code
// or amount, and long enough to be a name.
func (e *Extractor) headerVendor(raw string) (string, bool) {
	for _, line := range SplitLines(raw) {
		if line.Kind != Signal {
			continue
		}
		if len(line.Text) < minVendorLen || countDigits(line.Text) >= maxVendorDigits {
			continue
		}
		if containsAny(line.Lower, e.tables.VendorBoilerplate) {
			continue
		}
		return line.Text, true
	}
	return "", false
}
