package transform

// ExpandWebhookEntry fans a WhatsApp envelope out into one unit per
// status and one unit per message across all changes. A change can
// contribute to both lists independently. Each unit's context carries
// the envelope's shared fields plus a single-element statuses or
// messages array, so the same template works for every unit.
func ExpandWebhookEntry(msg map[string]interface{}) []ExpandedUnit {
	parsed, ok := msg[fieldParsedEntry].(map[string]interface{})
	if !ok {
		return nil
	}
	changes, ok := parsed["changes"].([]interface{})
	if !ok {
		return nil
	}

	var units []ExpandedUnit
	for _, rawChange := range changes {
		change, ok := rawChange.(map[string]interface{})
		if !ok {
			continue
		}
		value, ok := change["value"].(map[string]interface{})
		if !ok {
			continue
		}

		if statuses, ok := value["statuses"].([]interface{}); ok {
			for _, rawStatus := range statuses {
				status, ok := rawStatus.(map[string]interface{})
				if !ok {
					continue
				}
				units = append(units, ExpandedUnit{
					Kind:    UnitStatus,
					Item:    status,
					Context: unitContext(msg, parsed, change, value, "statuses", status),
				})
			}
		}

		if messages, ok := value["messages"].([]interface{}); ok {
			for _, rawMessage := range messages {
				message, ok := rawMessage.(map[string]interface{})
				if !ok {
					continue
				}
				units = append(units, ExpandedUnit{
					Kind:    UnitMessage,
					Item:    message,
					Context: unitContext(msg, parsed, change, value, "messages", message),
				})
			}
		}
	}

	return units
}

func unitContext(msg, parsed, change, value map[string]interface{}, itemField string, item map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context":           msg["context"],
		"aws_account_id":    msg["aws_account_id"],
		"message_timestamp": msg["message_timestamp"],
		fieldWebhookEntry:   msg[fieldWebhookEntry],
		fieldParsedEntry: map[string]interface{}{
			"id": parsed["id"],
			"changes": []interface{}{
				map[string]interface{}{
					"field": change["field"],
					"value": map[string]interface{}{
						"metadata":          value["metadata"],
						"messaging_product": value["messaging_product"],
						itemField:           []interface{}{item},
					},
				},
			},
		},
	}
}
