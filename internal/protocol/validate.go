package protocol

import "strings"

// Validation is the result of a structural message check. Err is empty when
// Valid is true.
type Validation struct {
	Valid bool
	Err   string
}

func invalid(reason string) Validation {
	return Validation{Valid: false, Err: reason}
}

// ValidateMessage checks the structural shape of a decoded but untrusted
// message. It is pure, never panics, and short-circuits on the first
// violated rule so the reported reason matches check precedence:
// object, string type, notification passthrough, id presence and UUID shape,
// numeric timestamp, non-empty response payload, error object shape.
func ValidateMessage(v any) Validation {
	obj, ok := asObject(v)
	if !ok {
		return invalid("message must be an object")
	}

	msgType, ok := obj["type"].(string)
	if !ok {
		return invalid("message must have a string type property")
	}

	// Notifications are fire-and-forget and skip the id and timestamp rules.
	if IsNotificationMessage(v) {
		return Validation{Valid: true}
	}

	id, present := obj["id"]
	if !present || !truthy(id) {
		return invalid("message must have an id property")
	}
	idStr, ok := id.(string)
	if !ok || !IsValidUUID(idStr) {
		return invalid("message id must be a valid UUID")
	}

	if ts, present := obj["timestamp"]; present && !isNumeric(ts) {
		return invalid("message timestamp must be a number")
	}

	if strings.HasSuffix(msgType, responseSuffix) && !truthy(obj["payload"]) {
		return invalid("response messages must have a payload")
	}

	if msgType == TypeError {
		detail, ok := asObject(obj["error"])
		if !ok {
			return invalid("error response must have an error object")
		}
		if _, ok := detail["code"].(string); !ok {
			return invalid("error response must have an error.code string")
		}
		if _, ok := detail["message"].(string); !ok {
			return invalid("error response must have an error.message string")
		}
	}

	return Validation{Valid: true}
}

// truthy mirrors the peer's notion of a usable value: present, non-null,
// and not an empty string, zero, or false. Empty objects and arrays count
// as truthy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return true
	}
}
