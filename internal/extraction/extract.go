// Package extraction turns raw receipt text, plus optional hints from a
// document-understanding service, into a normalized expense record.
//
// Everything here is a pure function of its input: no I/O, no clock, no
// shared mutable state. An Extractor may be used from many goroutines.
package extraction

// NormalizedReceipt is the extracted expense record.
type NormalizedReceipt struct {
	VendorName    string     `json:"vendorName"`
	TotalAmount   float64    `json:"totalAmount"`
	BaseDocAmount float64    `json:"baseDocAmount"`
	TaxAmount     float64    `json:"taxAmount"`
	PurchaseDate  string     `json:"purchaseDate"`
	CardBrand     string     `json:"cardBrand"`
	Last4         string     `json:"last4"`
	Category      string     `json:"category"`
	LineItems     []LineItem `json:"lineItems"`
	RawText       string     `json:"rawText"`
}

// Extractor runs the detectors against a fixed set of keyword tables.
type Extractor struct {
	tables *Tables
}

// New creates an Extractor. A nil tables value selects DefaultTables.
func New(tables *Tables) *Extractor {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Extractor{tables: tables}
}

// Tables returns the keyword tables in use.
func (e *Extractor) Tables() *Tables {
	return e.tables
}

var defaultExtractor = New(nil)

// Extract runs the pipeline with the default tables.
func Extract(raw string, hints Hints) NormalizedReceipt {
	return defaultExtractor.Extract(raw, hints)
}

// Extract reconciles hints with what the detectors find in raw. It never
// fails: every field falls back to its documented default.
func (e *Extractor) Extract(raw string, hints Hints) NormalizedReceipt {
	vendor, ok := hints.merchant()
	if !ok {
		vendor = e.ResolveVendor(raw)
	}

	date, ok := firstOf[string](
		hints.date,
		func() (string, bool) { return DetectDate(raw) },
	)
	if !ok {
		date = UnknownDate
	}

	category := e.Classify(raw)
	brand := e.DetectCardBrand(raw)
	last4 := e.DetectLast4(raw)

	items, extraTax := e.ExtractLineItems(raw)

	total, base := ReconcileTotal(hints.total(), ScanAmounts(raw).Max)

	return NormalizedReceipt{
		VendorName:    vendor,
		TotalAmount:   total,
		BaseDocAmount: base,
		TaxAmount:     SumAmounts(hints.tax(), extraTax),
		PurchaseDate:  date,
		CardBrand:     brand,
		Last4:         last4,
		Category:      category,
		LineItems:     items,
		RawText:       raw,
	}
}
