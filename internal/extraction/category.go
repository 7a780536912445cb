package extraction

import "strings"

// Classify scores the text against each category's keywords and returns the
// category with the most distinct keyword hits. Ties go to the category
// listed first in the table; no hits at all yields OtherCategory.
func (e *Extractor) Classify(raw string) string {
	lower := strings.ToLower(raw)
	best, bestScore := OtherCategory, 0
	for _, c := range e.tables.Categories {
		score := 0
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = c.Name, score
		}
	}
	return best
}
