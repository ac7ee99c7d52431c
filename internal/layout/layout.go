package layout

import "strings"

// MeasureFunc reports the rendered width of a string in pixels.
type MeasureFunc func(s string) float64

// Wrap splits text into lines no wider than maxWidth using greedy word
// wrapping. Words are separated by single spaces. A word wider than maxWidth
// is never split: it is emitted alone on its own line. Empty input yields
// exactly one empty line.
func Wrap(text string, maxWidth float64, measure MeasureFunc) []string {
	words := strings.Split(text, " ")

	lines := []string{}
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && measure(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
