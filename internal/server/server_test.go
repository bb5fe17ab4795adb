package server_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tally/internal/protocol"
	"tally/internal/server"
	"tally/internal/service"
	"tally/internal/testsupport"
	"tally/internal/track"
)

func newTestServer(t *testing.T) (*server.Server, *service.Service) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := service.New(cfg, st, nil, nil)
	t.Cleanup(svc.Close)
	return server.New(svc, 5*time.Second, nil), svc
}

func TestRequestRoundTripOverPipe(t *testing.T) {
	srv, _ := newTestServer(t)

	serverEnd, clientEnd := protocol.Pipe()
	detach, err := srv.Attach(serverEnd)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer detach()

	mgr, err := protocol.NewManager(clientEnd, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer mgr.Dispose()

	ctx := context.Background()
	resp, err := mgr.Request(ctx, protocol.TypeStartSession, track.StartSessionPayload{})
	if err != nil {
		t.Fatalf("startSession: %v", err)
	}
	if resp.Type != "startSessionResponse" {
		t.Fatalf("response type = %q", resp.Type)
	}

	var result track.SessionResult
	if err := json.Unmarshal(resp.Payload, &result); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if result.Session.Status != track.SessionActive {
		t.Fatalf("session status = %q", result.Session.Status)
	}

	statusResp, err := mgr.Request(ctx, protocol.TypeGetSessionStatus, nil)
	if err != nil {
		t.Fatalf("getSessionStatus: %v", err)
	}
	var status track.SessionResult
	if err := json.Unmarshal(statusResp.Payload, &status); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if status.Session.ID != result.Session.ID {
		t.Fatalf("status session id = %q, want %q", status.Session.ID, result.Session.ID)
	}
}

func TestErrorResponseCarriesCode(t *testing.T) {
	srv, _ := newTestServer(t)

	serverEnd, clientEnd := protocol.Pipe()
	detach, err := srv.Attach(serverEnd)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer detach()

	mgr, err := protocol.NewManager(clientEnd, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer mgr.Dispose()

	_, err = mgr.Request(context.Background(), protocol.TypePauseSession,
		track.PauseSessionPayload{SessionID: uuid.NewString()})
	if err == nil {
		t.Fatalf("expected an error for an unknown session")
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Fatalf("err = %v, want NOT_FOUND code", err)
	}
}

func TestUnknownRequestTypeAnswered(t *testing.T) {
	srv, _ := newTestServer(t)

	req := &protocol.Message{
		Type:      "selfDestruct",
		ID:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	}
	resp := srv.Handle(context.Background(), req)
	if resp.Type != protocol.TypeError {
		t.Fatalf("response type = %q, want error", resp.Type)
	}
	if resp.ID != req.ID {
		t.Fatalf("response id = %q, want %q", resp.ID, req.ID)
	}
	if resp.Error == nil || resp.Error.Code != "UNKNOWN_REQUEST" {
		t.Fatalf("error detail = %+v", resp.Error)
	}
}

func TestMalformedPayloadRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	req := &protocol.Message{
		Type:      protocol.TypePauseSession,
		ID:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   json.RawMessage(`{"sessionId": 42}`),
	}
	resp := srv.Handle(context.Background(), req)
	if resp.Type != protocol.TypeError {
		t.Fatalf("response type = %q, want error", resp.Type)
	}
	if resp.Error == nil || resp.Error.Code != "INVALID_PAYLOAD" {
		t.Fatalf("error detail = %+v", resp.Error)
	}
}

func TestGetSettingsWithoutPayload(t *testing.T) {
	srv, _ := newTestServer(t)

	req := &protocol.Message{
		Type:      protocol.TypeGetSettings,
		ID:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	}
	resp := srv.Handle(context.Background(), req)
	if resp.Type != "getSettingsResponse" {
		t.Fatalf("response type = %q", resp.Type)
	}
	var result track.SettingsActionResult
	if err := json.Unmarshal(resp.Payload, &result); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !result.Success || result.Settings.PomodoroLength == 0 {
		t.Fatalf("result = %+v", result)
	}
}
