// Package jsonpointer resolves RFC 6901 pointers against decoded JSON values
// and reports absence explicitly instead of failing.
package jsonpointer

import (
	"encoding/json"
	jsonptr "github.com/go-openapi/jsonpointer"
	"strconv"
	"strings"
)

// Lookup returns the value at pointer and whether it exists. The empty
// pointer designates the whole document. Array indices must be written
// without sign or leading zero.
func Lookup(document interface{}, pointer string) (interface{}, bool) {
	p, err := jsonptr.New(pointer)
	if err != nil {
		return nil, false
	}
	current := document
	for _, token := range p.DecodedTokens() {
		if _, isArray := current.([]interface{}); isArray && !isIndex(token) {
			return nil, false
		}
		next, _, err := jsonptr.GetForToken(current, token)
		if err != nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

func isIndex(token string) bool {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return false
	}
	for _, c := range token {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func String(document interface{}, pointer string) (string, bool) {
	v, ok := Lookup(document, pointer)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func Object(document interface{}, pointer string) (map[string]interface{}, bool) {
	v, ok := Lookup(document, pointer)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func Array(document interface{}, pointer string) ([]interface{}, bool) {
	v, ok := Lookup(document, pointer)
	if !ok {
		return nil, false
	}
	a, ok := v.([]interface{})
	return a, ok
}

func Number(document interface{}, pointer string) (json.Number, bool) {
	v, ok := Lookup(document, pointer)
	if !ok {
		return "", false
	}
	switch n := v.(type) {
	case json.Number:
		return n, true
	case float64:
		return json.Number(strconv.FormatFloat(n, 'f', -1, 64)), true
	}
	return "", false
}

// Strings returns the string members of the array at pointer. Non-string
// members are skipped.
func Strings(document interface{}, pointer string) ([]string, bool) {
	arr, ok := Array(document, pointer)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// Shape is the JSON type name of v: object, array, string, number, boolean
// or null.
func Shape(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return "unknown"
}

// Join appends escaped reference tokens to pointer.
func Join(pointer string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(pointer)
	for _, t := range tokens {
		b.WriteString("/")
		b.WriteString(jsonptr.Escape(t))
	}
	return b.String()
}
