package extraction

import (
	"regexp"
	"strings"
)

// maxItemPrice rejects prices that are really totals, codes or misreads.
const maxItemPrice = 99999

var (
	reItemLine    = regexp.MustCompile(`^(.*?)\s*\$?(\d+\.\d{1,2})$`)
	reTaxAmount   = regexp.MustCompile(`\d+\.\d{1,2}`)
	reNumericDesc = regexp.MustCompile(`^[\d.]+$`)
)

// LineItem is a single purchased item.
type LineItem struct {
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ExtractLineItems walks the text line by line, collecting priced item lines
// in order and summing amounts found on tax lines. Summary lines (totals,
// subtotals, tenders) never become items.
func (e *Extractor) ExtractLineItems(raw string) (items []LineItem, extraTax float64) {
	items = []LineItem{}
	var taxes []float64
	for _, line := range SplitLines(raw) {
		if line.Kind != Signal {
			continue
		}
		if tax, ok := e.taxLine(line); ok {
			taxes = append(taxes, tax)
			continue
		}
		if item, ok := e.itemLine(line); ok {
			items = append(items, item)
		}
	}
	return items, SumAmounts(taxes...)
}

// taxLine reports the amount on a line that names a tax. The amount is the
// last decimal value after the tax keyword, so rates and registration
// numbers ahead of it are ignored.
func (e *Extractor) taxLine(line Line) (float64, bool) {
	at := -1
	for _, kw := range e.tables.TaxKeywords {
		if i := strings.Index(line.Lower, kw); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		return 0, false
	}
	amounts := reTaxAmount.FindAllString(line.Lower[at:], -1)
	if len(amounts) == 0 {
		return 0, false
	}
	v, ok := parseAmount(amounts[len(amounts)-1])
	if !ok {
		return 0, false
	}
	return v, true
}

func (e *Extractor) itemLine(line Line) (LineItem, bool) {
	m := reItemLine.FindStringSubmatch(line.Text)
	if m == nil {
		return LineItem{}, false
	}
	desc := strings.TrimSpace(m[1])
	if desc == "" || reNumericDesc.MatchString(desc) {
		return LineItem{}, false
	}
	if containsAny(strings.ToLower(desc), e.tables.ItemExclusions) {
		return LineItem{}, false
	}
	price, ok := parseAmount(m[2])
	if !ok || price >= maxItemPrice {
		return LineItem{}, false
	}
	return LineItem{Description: desc, Price: price}, true
}
