package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// JSONCache maps response content to its parsed value, keyed by the SHA-256
// of the content. Numbers are kept as json.Number. Returned values are shared
// between callers and must not be modified.
type JSONCache struct {
	store *store
}

func NewJSONCache(maxEntries int) *JSONCache {
	return &JSONCache{store: newStore(maxEntries)}
}

func ContentKey(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Parse returns the object ([]interface{} or map[string]interface{}) held in
// content. Identical content yields the identical value.
func (c *JSONCache) Parse(content []byte) (interface{}, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, &ParseError{Err: ErrEmptyContent}
	}
	return c.store.load(ContentKey(content), func() (interface{}, error) {
		return ParseStrict(content)
	})
}

// Object is Parse restricted to a top-level JSON object.
func (c *JSONCache) Object(content []byte) (map[string]interface{}, bool) {
	v, err := c.Parse(content)
	if err != nil {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func (c *JSONCache) Clear() {
	c.store.clear()
}

func (c *JSONCache) Stats() Stats {
	return c.store.stats()
}

// ParseStrict decodes content, rejecting duplicate object keys and trailing
// data.
func ParseStrict(content []byte) (interface{}, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, &ParseError{Err: ErrEmptyContent}
	}
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	value, err := decodeValue(decoder, "")
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: ErrTrailingContent}
	}
	switch value.(type) {
	case map[string]interface{}, []interface{}:
		return value, nil
	}
	return nil, &ParseError{Err: ErrNotContainer}
}

func decodeValue(decoder *json.Decoder, pointer string) (interface{}, error) {
	token, err := decoder.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}
	switch delim {
	case '{':
		object := make(map[string]interface{})
		for decoder.More() {
			keyToken, err := decoder.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyToken.(string)
			path := pointer + "/" + escapePointer(key)
			if _, duplicated := object[key]; duplicated {
				return nil, DuplicateKeyError(path)
			}
			value, err := decodeValue(decoder, path)
			if err != nil {
				return nil, err
			}
			object[key] = value
		}
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return object, nil
	case '[':
		array := make([]interface{}, 0)
		for decoder.More() {
			value, err := decodeValue(decoder, pointer+"/"+strconv.Itoa(len(array)))
			if err != nil {
				return nil, err
			}
			array = append(array, value)
		}
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return array, nil
	}
	return nil, errors.New("unexpected delimiter " + delim.String())
}

func escapePointer(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
}
