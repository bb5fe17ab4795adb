package protocol

import (
	"encoding/json"
	"testing"
)

func decodeAny(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return v
}

func TestValidateMessageAcceptsWellFormedRequest(t *testing.T) {
	v := decodeAny(t, `{
		"type": "startSession",
		"id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"timestamp": 1700000000000,
		"payload": {"project": "tally"}
	}`)
	result := ValidateMessage(v)
	if !result.Valid {
		t.Fatalf("expected valid, got %q", result.Err)
	}
	if result.Err != "" {
		t.Fatalf("valid result must carry an empty reason, got %q", result.Err)
	}
}

func TestValidateMessageReasons(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"not an object", `"startSession"`, "message must be an object"},
		{"array", `[1, 2]`, "message must be an object"},
		{"missing type", `{"id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`, "message must have a string type property"},
		{"numeric type", `{"type": 7, "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`, "message must have a string type property"},
		{"missing id", `{"type": "startSession"}`, "message must have an id property"},
		{"empty id", `{"type": "startSession", "id": ""}`, "message must have an id property"},
		{"malformed id", `{"type": "startSession", "id": "not-a-uuid"}`, "message id must be a valid UUID"},
		{"string timestamp", `{"type": "startSession", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "timestamp": "now"}`, "message timestamp must be a number"},
		{"response without payload", `{"type": "startSessionResponse", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`, "response messages must have a payload"},
		{"error without error object", `{"type": "error", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`, "error response must have an error object"},
		{"error without code", `{"type": "error", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "error": {"message": "boom"}}`, "error response must have an error.code string"},
		{"error without message", `{"type": "error", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "error": {"code": "E1"}}`, "error response must have an error.message string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateMessage(decodeAny(t, tc.raw))
			if result.Valid {
				t.Fatalf("expected invalid")
			}
			if result.Err != tc.want {
				t.Fatalf("reason = %q, want %q", result.Err, tc.want)
			}
		})
	}
}

func TestValidateMessageNotificationSkipsIDRules(t *testing.T) {
	v := decodeAny(t, `{"type": "statusUpdate", "payload": {"status": "active"}}`)
	if result := ValidateMessage(v); !result.Valid {
		t.Fatalf("notification without id should validate, got %q", result.Err)
	}
}

func TestValidateMessageUnknownTypeNeedsID(t *testing.T) {
	v := decodeAny(t, `{"type": "selfDestruct"}`)
	if result := ValidateMessage(v); result.Valid {
		t.Fatal("unknown type without id should be invalid")
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
		"00000000-0000-0000-0000-000000000000",
	}
	for _, s := range valid {
		if !IsValidUUID(s) {
			t.Errorf("IsValidUUID(%q) = false, want true", s)
		}
	}
	invalid := []string{
		"",
		"6ba7b810-9dad-11d1-80b4",
		"6ba7b8109dad11d180b400c04fd430c8",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8 ",
		"zba7b810-9dad-11d1-80b4-00c04fd430c8",
	}
	for _, s := range invalid {
		if IsValidUUID(s) {
			t.Errorf("IsValidUUID(%q) = true, want false", s)
		}
	}
}

func TestTypeGuards(t *testing.T) {
	req := decodeAny(t, `{"type": "getDailyStats", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`)
	if !IsRequestMessage(req) {
		t.Error("request not recognized")
	}
	if IsResponseMessage(req) || IsNotificationMessage(req) {
		t.Error("request misclassified")
	}

	resp := decodeAny(t, `{"type": "getDailyStatsResponse", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "payload": {}}`)
	if !IsResponseMessage(resp) {
		t.Error("response not recognized")
	}
	if IsRequestMessage(resp) {
		t.Error("response misclassified as request")
	}

	errResp := decodeAny(t, `{"type": "error", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "error": {"code": "E1", "message": "boom"}}`)
	if !IsErrorResponse(errResp) || !IsResponseMessage(errResp) {
		t.Error("error response not recognized")
	}

	note := decodeAny(t, `{"type": "pomodoroUpdate"}`)
	if !IsNotificationMessage(note) {
		t.Error("notification not recognized")
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		msg  *Message
		want Kind
	}{
		{nil, KindUnknown},
		{&Message{Type: TypeStartSession}, KindRequest},
		{&Message{Type: "startSessionResponse"}, KindResponse},
		{&Message{Type: TypeError}, KindResponse},
		{&Message{Type: TypeGoalReached}, KindNotification},
		{&Message{Type: "selfDestruct"}, KindUnknown},
	}
	for _, tc := range cases {
		if got := tc.msg.Kind(); got != tc.want {
			t.Errorf("Kind() = %v, want %v", got, tc.want)
		}
	}
}

func TestEveryRequestTypeHasResponseType(t *testing.T) {
	for _, reqType := range RequestTypes {
		if !IsResponseType(ResponseTypeFor(reqType)) {
			t.Errorf("no response discriminant registered for %q", reqType)
		}
	}
}
