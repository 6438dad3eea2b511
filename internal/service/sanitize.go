package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// cleanText strips markup from user or oracle supplied text. Entities escaped by the
// policy are decoded again because values are stored and rendered as JSON, not HTML.
func cleanText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}

func cleanList(policy *bluemonday.Policy, values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if v := cleanText(policy, value); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}
