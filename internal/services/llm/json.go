package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?\s*` + "```" + `\s*$`)

// CleanMarkdownFences robustly removes markdown code fences from a
// model response.
func CleanMarkdownFences(s string) string {
	s = strings.TrimSpace(s)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = matches[1]
	}

	// Fallback: simple prefix/suffix trimming
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// ExtractJSONObject locates and unmarshals a JSON object in a model
// response. Resolution order: fenced code block, the whole response,
// then the first balanced object embedded in surrounding prose.
func ExtractJSONObject(response string, target interface{}) error {
	cleaned := CleanMarkdownFences(response)

	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	embedded := firstBalancedObject(cleaned)
	if embedded == "" {
		return fmt.Errorf("no JSON object found in response")
	}

	if err := json.Unmarshal([]byte(embedded), target); err != nil {
		return fmt.Errorf("failed to parse embedded JSON object: %w", err)
	}

	return nil
}

// firstBalancedObject returns the first brace-balanced substring,
// ignoring braces inside string literals.
func firstBalancedObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
