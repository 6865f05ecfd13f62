package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLenientObject(t *testing.T) {
	t.Run("accepts strict JSON", func(t *testing.T) {
		obj, err := decodeLenientObject([]byte(`{"a": 1}`))
		require.NoError(t, err)
		assert.EqualValues(t, 1, obj["a"])
	})

	t.Run("accepts trailing commas", func(t *testing.T) {
		obj, err := decodeLenientObject([]byte(`{"a": 1, "b": [2, 3,],}`))
		require.NoError(t, err)
		assert.EqualValues(t, 1, obj["a"])
	})

	t.Run("rejects truncated input", func(t *testing.T) {
		_, err := decodeLenientObject([]byte(`{"a": `))
		assert.Error(t, err)
	})

	t.Run("rejects non-object documents", func(t *testing.T) {
		_, err := decodeLenientObject([]byte(`"just a string"`))
		assert.Error(t, err)
	})
}

func TestToSingleLine(t *testing.T) {
	t.Run("collapses rendered output to one line", func(t *testing.T) {
		rendered := `{
			"id": "wamid.1",
			"body": "line one\nline two",
			"nested": {
				"k": [1, 2,],
			},
		}`

		out, err := ToSingleLine(rendered)
		require.NoError(t, err)

		assert.NotContains(t, out, "\n")
		assert.NotContains(t, out, "\t")
		assert.JSONEq(t, `{"id":"wamid.1","body":"line one\nline two","nested":{"k":[1,2]}}`, out)
	})

	t.Run("escaped newline inside a string survives", func(t *testing.T) {
		out, err := ToSingleLine(`{"note": "a\nb"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"note":"a\nb"}`, out)
	})

	t.Run("invalid rendered output is rejected", func(t *testing.T) {
		_, err := ToSingleLine(`{"id": "unterminated`)
		assert.Error(t, err)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		msg  map[string]interface{}
		want Channel
	}{
		{"webhook entry wins", map[string]interface{}{"whatsAppWebhookEntry": "{}", "messageId": "m", "mail": "x"}, ChannelWhatsApp},
		{"message id before mail", map[string]interface{}{"messageId": "m", "mail": "x"}, ChannelMessaging},
		{"mail alone", map[string]interface{}{"mail": map[string]interface{}{}}, ChannelSES},
		{"nothing recognized", map[string]interface{}{"foo": "bar"}, ChannelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.msg))
		})
	}
}
