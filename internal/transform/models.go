package transform

// Wire field names the classifier and expander key on. The payloads
// are produced by external webhook relays; these names are their
// contract, not ours.
const (
	fieldEnvelopeMessage = "Message"
	fieldWebhookEntry    = "whatsAppWebhookEntry"
	fieldParsedEntry     = "parsedWhatsAppWebhookEntry"
	fieldMessageID       = "messageId"
	fieldMail            = "mail"
	fieldOriginalEvent   = "originalEvent"
)

// Status is the per-record processing outcome reported back to the
// delivery stream.
type Status string

const (
	StatusOk      Status = "Ok"
	StatusDropped Status = "Dropped"
	StatusFailed  Status = "ProcessingFailed"
)

// Channel identifies which provider shape a decoded payload matched.
type Channel int

const (
	ChannelUnknown Channel = iota
	ChannelWhatsApp
	ChannelMessaging
	ChannelSES
)

func (c Channel) String() string {
	switch c {
	case ChannelWhatsApp:
		return "whatsapp"
	case ChannelMessaging:
		return "messaging"
	case ChannelSES:
		return "ses"
	default:
		return "unknown"
	}
}

// Classify decides the channel from field presence alone; payloads
// carry no type tag. The order is the canonical dispatch order: a
// payload that structurally satisfies more than one predicate must
// resolve to the first match.
func Classify(msg map[string]interface{}) Channel {
	if _, ok := msg[fieldWebhookEntry]; ok {
		return ChannelWhatsApp
	}
	if _, ok := msg[fieldMessageID]; ok {
		return ChannelMessaging
	}
	if _, ok := msg[fieldMail]; ok {
		return ChannelSES
	}
	return ChannelUnknown
}

// UnitKind says whether an expanded unit carries a status or a
// message; a unit never carries both.
type UnitKind int

const (
	UnitStatus UnitKind = iota
	UnitMessage
)

// ExpandedUnit is one (base properties, single status-or-message)
// pair fanned out of a WhatsApp envelope. Item is the single status
// or message object; Context is the full render context handed to the
// template.
type ExpandedUnit struct {
	Kind    UnitKind
	Item    map[string]interface{}
	Context map[string]interface{}
}
