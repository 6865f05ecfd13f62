package templates

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"lakehose/internal/logger"
)

// jsonEscaper rewrites the characters that would break a JSON string
// literal when a serialized object is inlined into a larger document.
var jsonEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`/`, `\/`,
	"\b", `\b`,
	"\f", `\f`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Registry is the fixed set of helper functions templates may call.
// All members are pure; fetchAccountId reads static configuration.
type Registry struct {
	accountID string
	logger    logger.Logger
}

func NewRegistry(accountID string, log logger.Logger) *Registry {
	return &Registry{
		accountID: accountID,
		logger:    log,
	}
}

func (r *Registry) FuncMap() template.FuncMap {
	return template.FuncMap{
		"toEscapedJson":       r.toEscapedJSON,
		"toJson":              r.toJSON,
		"retrieveItemFromRaw": r.retrieveItemFromRaw,
		"convertTime":         r.convertTime,
		"formatPhoneNumber":   r.formatPhoneNumber,
		"fetchAccountId":      r.fetchAccountID,
		"determineChannel":    r.determineChannel,
		"formatSESTags":       r.formatSESTags,
	}
}

func (r *Registry) toJSON(value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("toJson: %w", err)
	}
	return string(data), nil
}

func (r *Registry) toEscapedJSON(value interface{}) (string, error) {
	data, err := r.toJSON(value)
	if err != nil {
		return "", err
	}
	return jsonEscaper.Replace(data), nil
}

// retrieveItemFromRaw pulls one top-level property out of a raw JSON
// string. A missing property yields an empty value with a warning;
// unparseable input fails the render.
func (r *Registry) retrieveItemFromRaw(jsonText, property string) (interface{}, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("retrieveItemFromRaw: %w", err)
	}

	value, ok := parsed[property]
	if !ok {
		r.logger.Warnw("retrieveItemFromRaw: property not found in JSON data",
			"property", property,
		)
		return "", nil
	}
	return value, nil
}

// convertTime parses a date/time value and returns epoch milliseconds.
// Numbers are already epoch milliseconds. Numeric strings below 1e12
// are taken as epoch seconds, which is what WhatsApp webhooks carry.
func (r *Registry) convertTime(value interface{}) (int64, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UnixMilli(), nil
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		return parseTimeString(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("convertTime: unsupported value %T", value)
	}
}

func parseTimeString(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 1_000_000_000_000 {
			return n * 1000, nil
		}
		return n, nil
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.RFC1123,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}

	return 0, fmt.Errorf("convertTime: unparseable time %q", s)
}

func (r *Registry) formatPhoneNumber(value interface{}) string {
	var digits strings.Builder
	for _, c := range fmt.Sprint(value) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	return "+" + digits.String()
}

func (r *Registry) fetchAccountID() string {
	return r.accountID
}

// determineChannel lowercases the segment before the first underscore
// of an event-type string, e.g. "TEXT_DELIVERED" -> "text".
func (r *Registry) determineChannel(value interface{}) string {
	s, ok := value.(string)
	if !ok {
		r.logger.Warnw("determineChannel: value is not a string")
		return "unknown"
	}
	return strings.ToLower(strings.SplitN(s, "_", 2)[0])
}

// formatSESTags flattens the SES tag map (key -> list of values) to
// key -> first value and serializes it. Keys whose value is not a
// non-empty list are omitted, matching how the tags render upstream.
func (r *Registry) formatSESTags(value interface{}) string {
	tagMap, ok := value.(map[string]interface{})
	if !ok {
		r.logger.Warnw("formatSESTags: value is not a tag map")
		return "unknown"
	}

	flat := make(map[string]interface{}, len(tagMap))
	for key, raw := range tagMap {
		values, ok := raw.([]interface{})
		if !ok || len(values) == 0 {
			continue
		}
		flat[key] = values[0]
	}

	data, err := json.Marshal(flat)
	if err != nil {
		r.logger.Warnw("formatSESTags: failed to serialize tags", "error", err)
		return "unknown"
	}
	return string(data)
}
