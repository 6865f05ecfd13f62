package transform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// decodeLenient parses JSON the way the upstream relays emit it:
// trailing commas (and comments) are tolerated. Everything else must
// be valid JSON.
func decodeLenient(data []byte) (interface{}, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("lenient json: %w", err)
	}

	var value interface{}
	if err := json.Unmarshal(std, &value); err != nil {
		return nil, fmt.Errorf("lenient json: %w", err)
	}
	return value, nil
}

func decodeLenientObject(data []byte) (map[string]interface{}, error) {
	value, err := decodeLenient(data)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("lenient json: payload is %T, not an object", value)
	}
	return obj, nil
}

// ToSingleLine collapses one rendered template output into a single
// line of JSON. It round-trips through a real parser instead of text
// surgery: whitespace and newlines outside string literals disappear,
// trailing commas are dropped, and quoted content is never touched.
// The rendered output must be one syntactically valid (lenient) JSON
// document.
func ToSingleLine(rendered string) (string, error) {
	std, err := hujson.Standardize([]byte(rendered))
	if err != nil {
		return "", fmt.Errorf("minify rendered output: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, std); err != nil {
		return "", fmt.Errorf("minify rendered output: %w", err)
	}
	return buf.String(), nil
}

// deepCopy clones a decoded JSON value through a marshal round trip
// so templates can reference the unmodified original event.
func deepCopy(msg map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("deep copy: %w", err)
	}
	var clone map[string]interface{}
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("deep copy: %w", err)
	}
	return clone, nil
}
