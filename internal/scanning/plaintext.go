package scanning

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"
)

// PlainText is a Scanner for receipts that are already text, such as the
// output of an external OCR service saved to a file.
type PlainText struct{}

// NewPlainText creates a new PlainText Scanner instance
func NewPlainText() *PlainText {
	return &PlainText{}
}

// ScanReceipt returns the file contents as the transcription
func (p *PlainText) ScanReceipt(data []byte, contentType string) (*Document, error) {
	if contentType != "" && !IsPlainText(contentType) {
		return nil, fmt.Errorf("plain text scanner cannot read %s", contentType)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("receipt text is not valid UTF-8")
	}
	return &Document{Text: string(data)}, nil
}

// Close is a no-op
func (p *PlainText) Close() error {
	return nil
}

// IsPlainText reports whether contentType names a text/plain document.
func IsPlainText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType == "text/plain"
}
