package templates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehose/internal/logger"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry("123456789012", logger.NopLogger())
}

func TestToJSON(t *testing.T) {
	r := newTestRegistry(t)

	out, err := r.toJSON(map[string]interface{}{"a": 1.0, "b": "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":"x"}`, out)
}

func TestToEscapedJSON(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("escapes quotes slashes and control characters", func(t *testing.T) {
		out, err := r.toEscapedJSON(map[string]interface{}{"msg": `say "hi"`})
		require.NoError(t, err)
		assert.Equal(t, `{\"msg\":\"say \\\"hi\\\"\"}`, out)
	})

	t.Run("escaped output survives embedding in a JSON string", func(t *testing.T) {
		out, err := r.toEscapedJSON(map[string]interface{}{"path": "a/b", "note": "line1\nline2"})
		require.NoError(t, err)

		doc := `{"wrapped":"` + out + `"}`
		var outer map[string]string
		require.NoError(t, json.Unmarshal([]byte(doc), &outer))

		var inner map[string]string
		require.NoError(t, json.Unmarshal([]byte(outer["wrapped"]), &inner))
		assert.Equal(t, "a/b", inner["path"])
		assert.Equal(t, "line1\nline2", inner["note"])
	})
}

func TestRetrieveItemFromRaw(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("returns the property value", func(t *testing.T) {
		value, err := r.retrieveItemFromRaw(`{"id":"wamid.1","type":"text"}`, "id")
		require.NoError(t, err)
		assert.Equal(t, "wamid.1", value)
	})

	t.Run("missing property yields empty string", func(t *testing.T) {
		value, err := r.retrieveItemFromRaw(`{"id":"wamid.1"}`, "absent")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})

	t.Run("unparseable input fails", func(t *testing.T) {
		_, err := r.retrieveItemFromRaw(`not json`, "id")
		assert.Error(t, err)
	})
}

func TestConvertTime(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name  string
		input interface{}
		want  int64
	}{
		{"epoch milliseconds number", float64(1700000000000), 1700000000000},
		{"epoch seconds string", "1700000000", 1700000000000},
		{"epoch milliseconds string", "1700000000000", 1700000000000},
		{"rfc3339 string", "2023-11-14T22:13:20Z", 1700000000000},
		{"int64", int64(42), 42},
		{"time value", time.UnixMilli(1700000000000), 1700000000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.convertTime(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unparseable string fails", func(t *testing.T) {
		_, err := r.convertTime("yesterday")
		assert.Error(t, err)
	})

	t.Run("unsupported type fails", func(t *testing.T) {
		_, err := r.convertTime([]string{"2023"})
		assert.Error(t, err)
	})
}

func TestFormatPhoneNumber(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"plain digits", "15551234567", "+15551234567"},
		{"formatted number", "+1 (555) 123-4567", "+15551234567"},
		{"numeric input", float64(15551234567), "+15551234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.formatPhoneNumber(tt.input))
		})
	}
}

func TestFetchAccountID(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, "123456789012", r.fetchAccountID())
}

func TestDetermineChannel(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"event type with underscore", "TEXT_DELIVERED", "text"},
		{"event type without underscore", "VOICE", "voice"},
		{"already lowercase", "media_received", "media"},
		{"non-string", float64(7), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.determineChannel(tt.input))
		})
	}
}

func TestFormatSESTags(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("flattens value lists to first value", func(t *testing.T) {
		out := r.formatSESTags(map[string]interface{}{
			"ses:source-ip":   []interface{}{"1.2.3.4"},
			"ses:caller-id":   []interface{}{"AIDACK", "ignored"},
			"ses:empty":       []interface{}{},
			"ses:not-a-list":  "scalar",
			"ses:from-domain": []interface{}{"example.com"},
		})
		assert.JSONEq(t, `{"ses:source-ip":"1.2.3.4","ses:caller-id":"AIDACK","ses:from-domain":"example.com"}`, out)
	})

	t.Run("non-map input yields unknown", func(t *testing.T) {
		assert.Equal(t, "unknown", r.formatSESTags("tags"))
	})
}
