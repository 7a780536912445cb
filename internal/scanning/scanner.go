package scanning

import "github.com/zombor/expense-ocr/internal/extraction"

// Document is what a scanner read from a receipt file: the full
// transcription plus any labeled entities it recognized.
type Document struct {
	Text  string
	Hints []extraction.EntityHint
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt transcribes a receipt image/PDF/text file
	ScanReceipt(data []byte, contentType string) (*Document, error)
	// Close closes the scanner and releases resources
	Close() error
}
