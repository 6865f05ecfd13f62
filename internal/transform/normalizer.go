package transform

import (
	"bytes"
	"context"
	"text/template"

	"lakehose/internal/constants"
	"lakehose/internal/logger"
	"lakehose/pkg/metrics"
)

// TemplateProvider hands out compiled templates by object key.
type TemplateProvider interface {
	Get(ctx context.Context, key string) (*template.Template, error)
}

// TemplateKeys maps each channel to its template object key.
type TemplateKeys struct {
	WhatsAppStatus  string
	WhatsAppMessage string
	Messaging       string
	SES             string
}

// Normalizer turns one raw provider payload into zero or more
// canonical single-line JSON records. It is pure with respect to its
// input: the same bytes always produce the same (status, records).
type Normalizer struct {
	templates TemplateProvider
	keys      TemplateKeys
	reporter  metrics.ErrorReporter
	logger    logger.Logger
}

func NewNormalizer(provider TemplateProvider, keys TemplateKeys, reporter metrics.ErrorReporter, log logger.Logger) *Normalizer {
	return &Normalizer{
		templates: provider,
		keys:      keys,
		reporter:  reporter,
		logger:    log,
	}
}

// Normalize decodes, classifies and renders one payload. Failed
// records never contribute partial output; intentionally dropped
// units are excluded without marking the record failed.
func (n *Normalizer) Normalize(ctx context.Context, payload []byte) (Status, []string) {
	msg, err := n.decode(ctx, payload)
	if err != nil {
		n.reporter.Emit(ctx, constants.MetricJSONParsingError)
		n.logger.ErrorwCtx(ctx, "JSON parsing error", "error", err)
		return StatusFailed, nil
	}

	switch channel := Classify(msg); channel {
	case ChannelWhatsApp:
		return n.normalizeWhatsApp(ctx, msg)
	case ChannelMessaging:
		return n.normalizeWithOriginal(ctx, msg, n.keys.Messaging, channel)
	case ChannelSES:
		return n.normalizeWithOriginal(ctx, msg, n.keys.SES, channel)
	default:
		n.logger.WarnwCtx(ctx, "Unknown record shape")
		return StatusFailed, nil
	}
}

// decode parses the payload and unwraps the pub/sub relay envelope:
// payloads delivered via SNS arrive with the provider event re-encoded
// as a JSON string under "Message".
func (n *Normalizer) decode(ctx context.Context, payload []byte) (map[string]interface{}, error) {
	msg, err := decodeLenientObject(payload)
	if err != nil {
		return nil, err
	}

	if inner, ok := msg[fieldEnvelopeMessage].(string); ok {
		unwrapped, err := decodeLenientObject([]byte(inner))
		if err != nil {
			return nil, err
		}
		return unwrapped, nil
	}
	return msg, nil
}

func (n *Normalizer) normalizeWhatsApp(ctx context.Context, msg map[string]interface{}) (Status, []string) {
	entryRaw, _ := msg[fieldWebhookEntry].(string)
	parsed, err := decodeLenientObject([]byte(entryRaw))
	if err != nil {
		// The entry string is template input; a bad one fails the
		// record the same way a render fault does.
		n.reporter.Emit(ctx, constants.MetricTemplateError)
		n.logger.ErrorwCtx(ctx, "Failed to parse webhook entry", "error", err)
		return StatusFailed, nil
	}
	msg[fieldParsedEntry] = parsed

	records := []string{}
	for _, unit := range ExpandWebhookEntry(msg) {
		key := n.keys.WhatsAppMessage
		if unit.Kind == UnitStatus {
			if id, _ := unit.Item["id"].(string); id == "" {
				n.logger.WarnwCtx(ctx, "Status record with no id, dropping")
				continue
			}
			key = n.keys.WhatsAppStatus
		}

		record, err := n.render(ctx, key, unit.Context)
		if err != nil {
			return StatusFailed, nil
		}
		records = append(records, record)
	}

	return StatusOk, records
}

// normalizeWithOriginal handles the flat messaging/SES shapes: the
// event gets a deep copy of itself attached under originalEvent so
// templates can project processed fields and still embed the raw
// form.
func (n *Normalizer) normalizeWithOriginal(ctx context.Context, msg map[string]interface{}, key string, channel Channel) (Status, []string) {
	original, err := deepCopy(msg)
	if err != nil {
		n.reporter.Emit(ctx, constants.MetricTemplateError)
		n.logger.ErrorwCtx(ctx, "Failed to copy event", "error", err, "channel", channel.String())
		return StatusFailed, nil
	}
	msg[fieldOriginalEvent] = original

	record, err := n.render(ctx, key, msg)
	if err != nil {
		return StatusFailed, nil
	}
	return StatusOk, []string{record}
}

func (n *Normalizer) render(ctx context.Context, key string, data map[string]interface{}) (string, error) {
	tmpl, err := n.templates.Get(ctx, key)
	if err != nil {
		n.reporter.Emit(ctx, constants.MetricTemplateError)
		n.logger.ErrorwCtx(ctx, "Template unavailable", "error", err, "key", key)
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		n.reporter.Emit(ctx, constants.MetricTemplateError)
		n.logger.ErrorwCtx(ctx, "Template render error", "error", err, "key", key)
		return "", err
	}

	record, err := ToSingleLine(buf.String())
	if err != nil {
		n.reporter.Emit(ctx, constants.MetricTemplateError)
		n.logger.ErrorwCtx(ctx, "Rendered output is not valid JSON", "error", err, "key", key)
		return "", err
	}
	return record, nil
}
