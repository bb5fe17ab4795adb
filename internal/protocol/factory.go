package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResponseTypeFor derives the success-response discriminant for a request
// type by appending the response suffix.
func ResponseTypeFor(requestType string) string {
	return requestType + responseSuffix
}

// NewRequest builds a well-formed request with a fresh UUID id and a
// millisecond timestamp. A nil payload produces a request without one.
func NewRequest(msgType string, payload any) (*Message, error) {
	if !IsRequestType(msgType) {
		return nil, fmt.Errorf("unknown request type %q", msgType)
	}
	raw, err := marshalPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   raw,
	}, nil
}

// NewResponse builds the success response answering req, carrying payload.
func NewResponse(req *Message, payload any) (*Message, error) {
	raw, err := marshalPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", ResponseTypeFor(req.Type), err)
	}
	return &Message{
		Type:      ResponseTypeFor(req.Type),
		ID:        req.ID,
		Timestamp: time.Now().UnixMilli(),
		Payload:   raw,
	}, nil
}

// NewNotification builds a fire-and-forget notification. Notifications carry
// no id and are never matched to a pending request.
func NewNotification(msgType string, payload any) (*Message, error) {
	if !IsNotificationType(msgType) {
		return nil, fmt.Errorf("unknown notification type %q", msgType)
	}
	raw, err := marshalPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	return &Message{Type: msgType, Payload: raw}, nil
}

// NewErrorResponse builds the generic error response for the request
// identified by requestID.
func NewErrorResponse(requestID, code, message string, details map[string]any) *Message {
	return &Message{
		Type: TypeError,
		ID:   requestID,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// IsResponseFor reports whether resp answers req: the id must match and the
// type must be either the error discriminant or exactly the request type
// with the response suffix appended.
func IsResponseFor(resp, req *Message) bool {
	if resp == nil || req == nil || resp.ID != req.ID {
		return false
	}
	if resp.IsError() {
		return true
	}
	return resp.Type == ResponseTypeFor(req.Type)
}

// Decode parses and validates raw bytes from the trust boundary. The bytes
// are treated as untyped until ValidateMessage passes; only then is the
// typed Message produced.
func Decode(data []byte) (*Message, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if result := ValidateMessage(v); !result.Valid {
		return nil, fmt.Errorf("invalid message: %s", result.Err)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &m, nil
}

// Encode serializes the message for the wire.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

func marshalPayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	if raw, ok := payload.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(payload)
}
