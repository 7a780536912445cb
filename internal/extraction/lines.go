package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// LineKind tags a line for the downstream scanners.
type LineKind int

const (
	// Blank lines are empty after trimming.
	Blank LineKind = iota
	// Noise lines carry no letters or digits (rules, dashes, stray symbols).
	Noise
	// Signal lines are everything else.
	Signal
)

func (k LineKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Noise:
		return "noise"
	default:
		return "signal"
	}
}

// Line is a single trimmed line of receipt text.
type Line struct {
	Number int // 1-based position in the raw text
	Text   string
	Lower  string
	Kind   LineKind
}

var reLineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits raw text into classified lines. Every input line is
// returned, including blank ones, so Number always matches the source.
func SplitLines(raw string) []Line {
	if raw == "" {
		return nil
	}
	parts := reLineBreak.Split(raw, -1)
	lines := make([]Line, 0, len(parts))
	for i, p := range parts {
		text := strings.TrimSpace(p)
		lines = append(lines, Line{
			Number: i + 1,
			Text:   text,
			Lower:  strings.ToLower(text),
			Kind:   classify(text),
		})
	}
	return lines
}

func classify(text string) LineKind {
	if text == "" {
		return Blank
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return Signal
		}
	}
	return Noise
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
