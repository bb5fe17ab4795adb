package protocol

import (
	"context"
	"errors"
	"testing"
	"time"
)

// echoResponder answers every request arriving on end with a success
// response carrying the request's own payload back.
func echoResponder(t *testing.T, end Bridge) {
	t.Helper()
	_, err := end.OnMessage(func(msg *Message) {
		if msg.Kind() != KindRequest {
			return
		}
		resp, err := NewResponse(msg, msg.Payload)
		if err != nil {
			t.Errorf("build response: %v", err)
			return
		}
		if err := end.Send(resp); err != nil {
			t.Errorf("send response: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("attach responder: %v", err)
	}
}

func TestManagerRequestRoundTrip(t *testing.T) {
	local, remote := Pipe()
	echoResponder(t, remote)

	m, err := NewManager(local, time.Second, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Dispose()

	resp, err := m.Request(context.Background(), TypeStartSession, map[string]any{"project": "tally"})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if resp.Type != "startSessionResponse" {
		t.Errorf("type = %q", resp.Type)
	}
	if string(resp.Payload) != `{"project":"tally"}` {
		t.Errorf("payload = %s", resp.Payload)
	}
}

func TestManagerRoutesErrorResponse(t *testing.T) {
	local, remote := Pipe()
	_, err := remote.OnMessage(func(msg *Message) {
		if msg.Kind() == KindRequest {
			remote.Send(NewErrorResponse(msg.ID, "NOT_FOUND", "no session", nil))
		}
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	m, err := NewManager(local, time.Second, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Dispose()

	_, err = m.Request(context.Background(), TypePauseSession, map[string]any{"sessionId": "x"})
	if err == nil || err.Error() != "NOT_FOUND: no session" {
		t.Fatalf("err = %v", err)
	}
}

func TestManagerDispatchesNotifications(t *testing.T) {
	local, remote := Pipe()

	m, err := NewManager(local, time.Second, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Dispose()

	got := make(chan *Message, 1)
	m.SubscribeToNotification(TypeGoalReached, func(n *Message) { got <- n })

	note, _ := NewNotification(TypeGoalReached, map[string]any{"goalType": "daily"})
	if err := remote.Send(note); err != nil {
		t.Fatalf("send notification: %v", err)
	}

	select {
	case n := <-got:
		if n.Type != TypeGoalReached {
			t.Errorf("type = %q", n.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("notification never delivered")
	}
}

func TestManagerDisposeFailsPending(t *testing.T) {
	local, _ := Pipe()

	m, err := NewManager(local, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	req, _ := NewRequest(TypeGetSessions, nil)
	call := m.SendRequest(req)
	m.Dispose()

	_, err = call.Wait(context.Background())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}

	// Dispose is idempotent.
	m.Dispose()
}

func TestManagerIgnoresUnroutableMessages(t *testing.T) {
	local, remote := Pipe()
	echoResponder(t, remote)

	m, err := NewManager(local, time.Second, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Dispose()

	// Noise before a legitimate round trip must not disturb routing.
	remote.Send(nil)
	remote.Send(&Message{Type: "selfDestruct", ID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	remote.Send(NewErrorResponse("6ba7b810-9dad-11d1-80b4-00c04fd430c8", "E1", "stray", nil))

	if _, err := m.Request(context.Background(), TypeGetSettings, nil); err != nil {
		t.Fatalf("Request after noise: %v", err)
	}
}

func TestManagerRequiresBridge(t *testing.T) {
	if _, err := NewManager(nil, time.Second, nil); err == nil {
		t.Fatal("nil bridge accepted")
	}
}
