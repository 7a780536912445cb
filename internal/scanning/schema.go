package scanning

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// scanResponseSchema describes the JSON every vision model must answer with.
const scanResponseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string"},
    "entities": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "mention_text": {"type": ["string", "number", "null"]}
        }
      }
    }
  }
}`

var scanSchema = jsonschema.MustCompileString("scan_response.json", scanResponseSchema)

// validateScanResponse checks a decoded response against scanResponseSchema.
func validateScanResponse(v any) error {
	return scanSchema.Validate(v)
}
