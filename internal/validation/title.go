package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxTitleBytes is the MediaWiki limit on a page title.
const MaxTitleBytes = 255

// illegalTitleChars cannot appear in any MediaWiki page title.
const illegalTitleChars = "#<>[]|{}"

// ValidateTitle trims an article title and rejects ones MediaWiki could
// never resolve. Underscores become spaces, as they do in article URLs.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))

	if title == "" {
		return "", fmt.Errorf("title cannot be empty")
	}
	if len(title) > MaxTitleBytes {
		return "", fmt.Errorf("title too long (max %d bytes)", MaxTitleBytes)
	}
	if strings.ContainsAny(title, illegalTitleChars) {
		return "", fmt.Errorf("title contains one of %q", illegalTitleChars)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("title contains control characters")
		}
	}

	return strings.Join(strings.Fields(title), " "), nil
}
