package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewRequestShape(t *testing.T) {
	req, err := NewRequest(TypeStartSession, map[string]any{"project": "tally"})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.Type != TypeStartSession {
		t.Errorf("type = %q", req.Type)
	}
	if !IsValidUUID(req.ID) {
		t.Errorf("id %q is not a UUID", req.ID)
	}
	if req.Timestamp == 0 {
		t.Error("timestamp not set")
	}

	var payload map[string]any
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["project"] != "tally" {
		t.Errorf("payload = %v", payload)
	}
}

func TestNewRequestRejectsUnknownType(t *testing.T) {
	if _, err := NewRequest("selfDestruct", nil); err == nil {
		t.Fatal("expected error for unknown request type")
	}
}

func TestNewRequestIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		req, err := NewRequest(TypeGetSettings, nil)
		if err != nil {
			t.Fatalf("NewRequest: %v", err)
		}
		if _, dup := seen[req.ID]; dup {
			t.Fatalf("duplicate id %q", req.ID)
		}
		seen[req.ID] = struct{}{}
	}
}

func TestNewResponseEchoesRequestID(t *testing.T) {
	req, err := NewRequest(TypeGetProjects, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := NewResponse(req, map[string]any{"projects": []string{}})
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	if resp.Type != "getProjectsResponse" {
		t.Errorf("type = %q", resp.Type)
	}
	if resp.ID != req.ID {
		t.Errorf("id %q does not echo request id %q", resp.ID, req.ID)
	}
	if !IsResponseFor(resp, req) {
		t.Error("IsResponseFor rejected matching response")
	}
}

func TestNewNotificationCarriesNoID(t *testing.T) {
	note, err := NewNotification(TypeStatusUpdate, map[string]any{"status": "active"})
	if err != nil {
		t.Fatalf("NewNotification: %v", err)
	}
	if note.ID != "" {
		t.Errorf("notification id = %q, want empty", note.ID)
	}
	if _, err := NewNotification("startSession", nil); err == nil {
		t.Fatal("request type accepted as notification")
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("6ba7b810-9dad-11d1-80b4-00c04fd430c8", "NOT_FOUND", "no such session", nil)
	if !resp.IsError() {
		t.Fatal("error response not error-typed")
	}
	if resp.Error.Code != "NOT_FOUND" || resp.Error.Message != "no such session" {
		t.Errorf("detail = %+v", resp.Error)
	}
}

func TestIsResponseForRejectsMismatches(t *testing.T) {
	req, _ := NewRequest(TypeStartSession, nil)
	other, _ := NewRequest(TypeStartSession, nil)

	resp, err := NewResponse(req, map[string]any{"ok": true})
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	if IsResponseFor(resp, other) {
		t.Error("response matched a request with a different id")
	}

	wrongType := &Message{Type: "stopSessionResponse", ID: req.ID}
	if IsResponseFor(wrongType, req) {
		t.Error("response of the wrong type matched")
	}

	errResp := NewErrorResponse(req.ID, "E1", "boom", nil)
	if !IsResponseFor(errResp, req) {
		t.Error("error response with matching id should match any request type")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	req, err := NewRequest(TypeTagSession, map[string]any{"sessionId": "abc", "tags": []string{"deep"}})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	data, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Type != req.Type || decoded.ID != req.ID {
		t.Errorf("round trip changed identity: %+v", decoded)
	}
}

func TestDecodeRejectsInvalidBytes(t *testing.T) {
	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Fatal("malformed JSON accepted")
	}
	_, err := Decode([]byte(`{"type": "startSession", "id": "nope"}`))
	if err == nil {
		t.Fatal("invalid message accepted")
	}
	if !strings.Contains(err.Error(), "message id must be a valid UUID") {
		t.Errorf("error %q does not carry the validation reason", err)
	}
}
