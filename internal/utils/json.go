package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Repairs for the mistakes chat models make most often when asked for a
// single flat JSON object.
var (
	// ,} or ,] -> } or ]
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

	// {'action': -> {"action":
	singleQuoteKeyRegex = regexp.MustCompile(`([{,]\s*)'(\w+)'(\s*:)`)

	// : 'add' -> : "add"
	singleQuoteValueRegex = regexp.MustCompile(`(:\s*)'((?:[^'\\]|\\.)*)'(\s*[,}\]])`)

	// "list" "taskId": -> "list", "taskId":
	missingCommaRegex = regexp.MustCompile(`("|\d|true|false|null)\s*\n\s*("\w+"\s*:)`)
)

// ExtractAndParseJSON extracts the first JSON value from a model response and
// unmarshals it into T. Markdown fences and trailing prose are ignored.
func ExtractAndParseJSON[T any](response string) (T, error) {
	var result T

	cleaned := cleanLLMResponse(response)
	if cleaned == "" {
		return result, fmt.Errorf("no JSON found in response")
	}

	idx := strings.IndexAny(cleaned, "{[")
	if idx == -1 {
		return result, fmt.Errorf("no JSON start ({ or [) found")
	}

	jsonPart := cleaned[idx:]
	err := json.NewDecoder(strings.NewReader(jsonPart)).Decode(&result)
	if err == nil {
		return result, nil
	}

	repaired := repairJSON(jsonPart)
	if repaired != jsonPart {
		var retry T
		if err2 := json.NewDecoder(strings.NewReader(repaired)).Decode(&retry); err2 == nil {
			return retry, nil
		}
	}
	return result, fmt.Errorf("parse JSON: %w", err)
}

func repairJSON(input string) string {
	result := sanitizeControlChars(input)
	result = missingCommaRegex.ReplaceAllString(result, `$1, $2`)
	result = trailingCommaRegex.ReplaceAllString(result, `$1`)
	result = singleQuoteKeyRegex.ReplaceAllString(result, `$1"$2"$3`)
	result = singleQuoteValueRegex.ReplaceAllStringFunc(result, func(match string) string {
		parts := singleQuoteValueRegex.FindStringSubmatch(match)
		if len(parts) != 4 {
			return match
		}
		value := strings.ReplaceAll(parts[2], `\'`, `'`)
		value = strings.ReplaceAll(value, `"`, `\"`)
		return parts[1] + `"` + value + `"` + parts[3]
	})
	return result
}

// sanitizeControlChars escapes raw control characters that appear inside
// string literals.
func sanitizeControlChars(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	inString, escaped := false, false
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString && c == '\n':
			b.WriteString(`\n`)
			continue
		case inString && c == '\t':
			b.WriteString(`\t`)
			continue
		case inString && c == '\r':
			b.WriteString(`\r`)
			continue
		case inString && c < 0x20:
			fmt.Fprintf(&b, `\u%04x`, c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func cleanLLMResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
