package validation

import "encoding/json"

// ExtractJSONObject returns the first balanced {...} span in text that parses
// as a JSON object. Surrounding prose and code fences are ignored. Braces
// inside JSON strings do not count towards the balance. A truncated object
// yields false.
func ExtractJSONObject(text string) (string, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' || !opensObject(text, start) {
			continue
		}
		end, balanced := matchBrace(text, start)
		if !balanced {
			// Every later '{' sits inside this unterminated object.
			return "", false
		}
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// opensObject reports whether the '{' at start is followed by a key or a
// closing brace, the only ways a JSON object can begin. Prose braces such
// as "{curly}" are passed over.
func opensObject(text string, start int) bool {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '"', '}':
			return true
		default:
			return false
		}
	}
	return false
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
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
				return i, true
			}
		}
	}
	return -1, false
}
