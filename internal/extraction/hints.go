package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// HintKind names the entity types a document-understanding service labels.
type HintKind string

const (
	MerchantName    HintKind = "merchant_name"
	TotalAmount     HintKind = "total_amount"
	TransactionDate HintKind = "transaction_date"
	TaxAmount       HintKind = "tax_amount"
)

// EntityHint is one labeled entity as reported by an upstream service. Value
// is the mention text and may be malformed.
type EntityHint struct {
	Kind  HintKind `json:"type"`
	Value string   `json:"mention_text"`
}

// Hints are the optional structured values that accompany raw text. A nil
// field means the hint is absent.
type Hints struct {
	MerchantName    *string  `json:"merchantName,omitempty"`
	TotalAmount     *float64 `json:"totalAmount,omitempty"`
	TransactionDate *string  `json:"transactionDate,omitempty"`
	TaxAmount       *float64 `json:"taxAmount,omitempty"`
}

// HintsFromEntities folds a list of entity hints into Hints. Malformed
// values are dropped and the first usable value of each kind wins.
func HintsFromEntities(entities []EntityHint) Hints {
	var h Hints
	for _, ent := range entities {
		kind := HintKind(strings.ToLower(strings.TrimSpace(string(ent.Kind))))
		switch kind {
		case MerchantName:
			if h.MerchantName == nil {
				h.MerchantName = usableText(ent.Value)
			}
		case TransactionDate:
			if h.TransactionDate == nil {
				h.TransactionDate = usableDate(ent.Value)
			}
		case TotalAmount:
			if h.TotalAmount == nil {
				h.TotalAmount = usableAmount(ent.Value)
			}
		case TaxAmount:
			if h.TaxAmount == nil {
				h.TaxAmount = usableAmount(ent.Value)
			}
		}
	}
	return h
}

// UnmarshalJSON accepts amounts as JSON numbers or numeric strings. Values
// of the wrong shape decode as absent rather than failing the whole request.
func (h *Hints) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding hints: %w", err)
	}
	*h = Hints{
		MerchantName:    usableText(stringValue(raw["merchantName"])),
		TransactionDate: usableDate(stringValue(raw["transactionDate"])),
		TotalAmount:     amountValue(raw["totalAmount"]),
		TaxAmount:       amountValue(raw["taxAmount"]),
	}
	return nil
}

// merchant returns the hinted merchant name, if usable.
func (h Hints) merchant() (string, bool) {
	if p := usableText(deref(h.MerchantName)); p != nil {
		return *p, true
	}
	return "", false
}

func (h Hints) date() (string, bool) {
	if p := usableDate(deref(h.TransactionDate)); p != nil {
		return *p, true
	}
	return "", false
}

// total returns the hinted total, or 0 when absent or unusable.
func (h Hints) total() float64 {
	return validAmount(h.TotalAmount)
}

func (h Hints) tax() float64 {
	return validAmount(h.TaxAmount)
}

func validAmount(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return 0
	}
	return *p
}

func usableText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, UnknownVendor) {
		return nil
	}
	return &s
}

// usableDate keeps a date hint verbatim as long as it could be a date at
// all: every rendering of a calendar date carries a day or year digit.
func usableDate(s string) *string {
	p := usableText(s)
	if p == nil || countDigits(*p) == 0 {
		return nil
	}
	return p
}

func usableAmount(s string) *float64 {
	v, ok := parseAmount(s)
	if !ok {
		return nil
	}
	return amountPtr(v)
}

func amountValue(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return amountPtr(t)
	case string:
		return usableAmount(t)
	default:
		return nil
	}
}

func amountPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Merge returns h with every absent field filled in from other.
func (h Hints) Merge(other Hints) Hints {
	if h.MerchantName == nil {
		h.MerchantName = other.MerchantName
	}
	if h.TotalAmount == nil {
		h.TotalAmount = other.TotalAmount
	}
	if h.TransactionDate == nil {
		h.TransactionDate = other.TransactionDate
	}
	if h.TaxAmount == nil {
		h.TaxAmount = other.TaxAmount
	}
	return h
}
