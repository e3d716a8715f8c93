package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// truncateEnd shortens s to at most limit runes, ending in an ellipsis when
// anything was cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which suits URLs.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if left == 0 {
		return "…" + string(r[n-right:])
	}
	return string(r[:left]) + "…" + string(r[n-right:])
}

// sanitizeQuery trims input, folds line breaks and tabs into spaces and
// collapses runs of spaces. It caps the result at 256 runes.
func sanitizeQuery(input string) string {
	input = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(input)
	input = strings.Join(strings.Fields(input), " ")
	if r := []rune(input); len(r) > 256 {
		input = string(r[:256])
	}
	return input
}

// lineOfHeading returns the first line of rendered output whose visible
// text contains heading, ignoring case. It reports -1 when none does.
func lineOfHeading(rendered, heading string) int {
	needle := strings.ToLower(strings.Join(strings.Fields(heading), " "))
	if needle == "" {
		return -1
	}
	for i, line := range strings.Split(rendered, "\n") {
		visible := strings.ToLower(strings.Join(strings.Fields(ansi.Strip(line)), " "))
		if strings.Contains(visible, needle) {
			return i
		}
	}
	return -1
}
