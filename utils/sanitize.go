package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// SanitizeText strips every HTML tag and returns plain text.
func SanitizeText(input string) string {
	return html.UnescapeString(sanitizer.Sanitize(input))
}
