package extraction

import "regexp"

// amountCeiling bounds plausible receipt amounts; anything at or above it is
// an OCR artifact (a barcode or card number run together with a decimal).
const amountCeiling = 999999

var reAmount = regexp.MustCompile(`\$?\d+\.\d{1,2}`)

// AmountScan is every currency-shaped value found in a text.
type AmountScan struct {
	Values []float64
	Max    float64
}

// ScanAmounts finds all decimal currency tokens (an optional "$", digits, a
// dot and one or two digits) in text order. Tokens glued to a hyphen belong
// to phone numbers, dates or references and are skipped.
func ScanAmounts(raw string) AmountScan {
	var scan AmountScan
	for _, loc := range reAmount.FindAllStringIndex(raw, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && raw[start-1] == '-' {
			continue
		}
		if end < len(raw) && raw[end] == '-' {
			continue
		}
		v, ok := parseAmount(raw[start:end])
		if !ok || v >= amountCeiling {
			continue
		}
		scan.Values = append(scan.Values, v)
		if v > scan.Max {
			scan.Max = v
		}
	}
	return scan
}
