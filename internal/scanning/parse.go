package scanning

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zombor/expense-ocr/internal/extraction"
)

type scanEntity struct {
	Type        string `json:"type"`
	MentionText any    `json:"mention_text"`
}

type scanResponse struct {
	Text     string       `json:"text"`
	Entities []scanEntity `json:"entities"`
}

// parseScanJSON parses the JSON response from a vision model
func parseScanJSON(text string) (*Document, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var generic any
	if err := json.Unmarshal([]byte(text), &generic); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}
	if err := validateScanResponse(generic); err != nil {
		return nil, fmt.Errorf("response does not match schema: %w", err)
	}

	var resp scanResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	doc := &Document{Text: strings.TrimSpace(resp.Text)}
	for _, ent := range resp.Entities {
		value, ok := mentionText(ent.MentionText)
		if !ok {
			continue
		}
		doc.Hints = append(doc.Hints, extraction.EntityHint{
			Kind:  extraction.HintKind(ent.Type),
			Value: value,
		})
	}

	return doc, nil
}

// mentionText renders a mention as text. Models sometimes answer amounts as
// bare numbers.
func mentionText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}
