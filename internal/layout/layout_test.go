package layout

import (
	"strings"
	"testing"
)

// charMeasure treats every character as 10px wide.
func charMeasure(s string) float64 {
	return float64(len(s) * 10)
}

func TestWrapEmptyInput(t *testing.T) {
	lines := Wrap("", 100, charMeasure)
	if len(lines) != 1 || lines[0] != "" {
		t.Fatalf("Wrap(\"\") = %q, want exactly one empty line", lines)
	}
}

func TestWrapRespectsMaxWidth(t *testing.T) {
	text := "premium plywood for spaces that last a lifetime"
	lines := Wrap(text, 150, charMeasure)

	for _, line := range lines {
		if charMeasure(line) > 150 && strings.Contains(line, " ") {
			t.Errorf("line %q (%.0fpx) exceeds 150px and is not a single word", line, charMeasure(line))
		}
	}

	// No words lost, order preserved.
	if joined := strings.Join(lines, " "); joined != text {
		t.Errorf("rejoined %q != input %q", joined, text)
	}
}

func TestWrapOverlongWordAlone(t *testing.T) {
	lines := Wrap("ok delamination no", 100, charMeasure)

	found := false
	for _, line := range lines {
		if line == "delamination" {
			found = true
		}
	}
	if !found {
		t.Errorf("overlong word not emitted alone: %q", lines)
	}
}

func TestWrapSingleShortLine(t *testing.T) {
	lines := Wrap("one two", 1000, charMeasure)
	if len(lines) != 1 || lines[0] != "one two" {
		t.Errorf("Wrap short = %q, want single line", lines)
	}
}

func TestWrapRestartable(t *testing.T) {
	a := Wrap("alpha beta gamma delta", 110, charMeasure)
	b := Wrap("alpha beta gamma delta", 110, charMeasure)
	if strings.Join(a, "|") != strings.Join(b, "|") {
		t.Errorf("Wrap not deterministic: %q vs %q", a, b)
	}
}
