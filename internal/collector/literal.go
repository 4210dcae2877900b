package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// bareTokens maps identifiers that may appear unquoted in the embedded data
// to their JSON spelling. Any other bare identifier is rejected.
var bareTokens = map[string]string{
	"true":      "true",
	"false":     "false",
	"null":      "null",
	"True":      "true",
	"False":     "false",
	"None":      "null",
	"undefined": "null",
	"NaN":       "null",
	"Infinity":  "null",
	"-Infinity": "null",
}

// NormalizeLiteral rewrites a JavaScript/Python style literal into strict JSON.
// Bare tokens listed in bareTokens are translated and single-quoted strings
// become double-quoted. Text inside double-quoted strings is never touched.
func NormalizeLiteral(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"':
			end, err := scanString(s, i, '"')
			if err != nil {
				return "", err
			}
			b.WriteString(s[i:end])
			i = end
		case c == '\'':
			end, err := scanString(s, i, '\'')
			if err != nil {
				return "", err
			}
			b.WriteString(requote(s[i+1 : end-1]))
			i = end
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(s) && isNumberPart(s[j]) {
				j++
			}
			b.WriteString(s[i:j])
			i = j
		case isIdentStart(c) || (c == '-' && i+1 < len(s) && s[i+1] == 'I'):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			tok := s[i:j]
			repl, ok := bareTokens[tok]
			if !ok {
				return "", fmt.Errorf("unexpected bare token %q at offset %d", tok, i)
			}
			b.WriteString(repl)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// scanString returns the offset just past the closing quote of the string starting at s[start].
func scanString(s string, start int, quote byte) (int, error) {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated string at offset %d", start)
}

// requote converts the body of a single-quoted string into a double-quoted JSON string.
func requote(body string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			b.WriteByte(c)
			b.WriteByte(body[i+1])
			i++
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isNumberPart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

// DecodeLiteral parses the payload as a list of objects. A bare
// comma-separated sequence of objects is accepted as if it were bracketed.
func DecodeLiteral(payload string) ([]map[string]any, error) {
	norm, err := NormalizeLiteral(strings.TrimSpace(payload))
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(norm, "[") {
		norm = "[" + norm + "]"
	}

	dec := json.NewDecoder(strings.NewReader(norm))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode literal: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode literal: trailing data after payload")
	}
	return rows, nil
}
