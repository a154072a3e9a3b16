package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// thinkTagPattern matches <think>...</think> blocks some models emit before the answer.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSONObject pulls a JSON object out of free-form model output. It first
// trims to the outermost {...} span, then falls back to the first balanced
// object; each candidate gets trailing commas repaired before validation.
func ExtractJSONObject(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end < start {
		return "", NewParseError("no JSON object found", response, nil)
	}

	if candidate, ok := validOrRepaired(cleaned[start : end+1]); ok {
		return candidate, nil
	}

	if balanced, ok := extractBalancedJSON(cleaned[start:], '{', '}'); ok {
		if candidate, ok := validOrRepaired(balanced); ok {
			return candidate, nil
		}
	}

	return "", NewParseError("malformed or truncated JSON object", response, nil)
}

func validOrRepaired(s string) (string, bool) {
	if json.Valid([]byte(s)) {
		return s, true
	}
	repaired := RepairTrailingCommas(s)
	if json.Valid([]byte(repaired)) {
		return repaired, true
	}
	return "", false
}

// RepairTrailingCommas removes commas that directly precede a closing brace or
// bracket (ignoring whitespace). String contents are left untouched.
func RepairTrailingCommas(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			sb.WriteByte(c)
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
		if c == '"' {
			inString = true
			sb.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// extractBalancedJSON finds the first balanced structure starting with openChar.
func extractBalancedJSON(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseJSONLenient extracts and repairs a JSON object from model output and
// decodes it into T. Every failure is a *ParseError.
func ParseJSONLenient[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSONObject(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, NewParseError("unexpected JSON shape", response, err)
	}
	return result, nil
}
