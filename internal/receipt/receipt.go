package receipt

import (
	"time"

	"github.com/zombor/expense-ocr/internal/extraction"
)

// Receipt is a stored receipt: the uploaded file plus the record extracted
// from it.
type Receipt struct {
	ID          string                       `json:"id"`
	Result      extraction.NormalizedReceipt `json:"result"`
	Hints       extraction.Hints             `json:"hints"`
	Filename    string                       `json:"filename"`
	ContentType string                       `json:"content_type"`
	BatchID     string                       `json:"batch_id,omitempty"` // ID of the batch this receipt was submitted in
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

// Batch groups receipts that were submitted together
type Batch struct {
	ID          string             `json:"id"`
	ReceiptIDs  []string           `json:"receipt_ids"`
	TotalAmount float64            `json:"total_amount"`
	TaxAmount   float64            `json:"tax_amount"`
	ByCategory  map[string]float64 `json:"by_category"` // summed totals keyed by category
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TextInput is a receipt that is already text, optionally with hints from a
// document-understanding service. Hints take precedence over Entities field
// by field.
type TextInput struct {
	Filename string                  `json:"filename,omitempty"`
	RawText  string                  `json:"rawText"`
	Hints    extraction.Hints        `json:"hints"`
	Entities []extraction.EntityHint `json:"entities,omitempty"`
}

func (t TextInput) hints() extraction.Hints {
	return t.Hints.Merge(extraction.HintsFromEntities(t.Entities))
}
