package enhance

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

// Pre-compiled patterns for JSON recovery from model responses.
var (
	// fencePattern matches JSON inside markdown code blocks: ```json { ... } ```
	fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON recovers a JSON object from a model response. It strips
// markdown fences, trims leading prose before the first '{', and treats a
// trailing character other than '}' as truncation.
func ExtractJSON(content string) (string, error) {
	text := content

	if matches := fencePattern.FindStringSubmatch(text); len(matches) > 1 {
		text = matches[1]
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errors.New(errors.ErrCodeEnhanceNoJSON,
			"model response contained no JSON object").
			WithSuggestion("Retry the enhancement call")
	}
	text = strings.TrimSpace(text[start:])

	if text[len(text)-1] != '}' {
		return "", errors.New(errors.ErrCodeEnhanceTruncated,
			"model response appears truncated").
			WithSuggestion("Raise the max token limit").
			WithSuggestion("Retry with the simplified response schema")
	}

	// Models commonly emit trailing commas; strip them before parsing.
	return trailingCommaPattern.ReplaceAllString(text, "$1"), nil
}
