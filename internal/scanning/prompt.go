package scanning

// receiptScanPrompt is the shared prompt used by all LLM providers for scanning receipts
const receiptScanPrompt = `You are transcribing a receipt or invoice document. Carefully read all text in the image.

1. **Transcription**: Copy every line of text exactly as printed, top to bottom, one printed line per output line. Keep prices, dates, card numbers and masking characters (****) as they appear. Do not summarize, translate or reorder.

2. **Entities**: Where you can identify them, label these values:
   - merchant_name: the store or business name, usually in the header
   - total_amount: the final total or amount due, digits and decimal point only (e.g. 42.75)
   - transaction_date: the purchase date exactly as printed
   - tax_amount: the total tax charged, digits and decimal point only

Return ONLY valid JSON in this exact format:
{
  "text": "LINE ONE\nLINE TWO\n...",
  "entities": [
    {"type": "merchant_name", "mention_text": "Store Name"},
    {"type": "total_amount", "mention_text": "42.75"}
  ]
}

Important:
- "text" must contain the complete transcription with newline characters between lines
- Leave an entity out instead of guessing it
- Do not include any text before or after the JSON
- Do not use markdown code blocks`
