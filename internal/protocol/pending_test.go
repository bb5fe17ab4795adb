package protocol

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func sendOK(*Message) error { return nil }

func TestTrackerSettlesOnMatchingResponse(t *testing.T) {
	tr := NewTracker(time.Second, nil)

	req, _ := NewRequest(TypeStartSession, nil)
	call := tr.Send(req, sendOK)
	if tr.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", tr.PendingCount())
	}

	resp, _ := NewResponse(req, map[string]any{"ok": true})
	if !tr.HandleResponse(resp) {
		t.Fatal("matching response not consumed")
	}

	got, err := call.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got.ID != req.ID {
		t.Errorf("settled with wrong response %+v", got)
	}
	if tr.PendingCount() != 0 {
		t.Errorf("pending = %d after settle", tr.PendingCount())
	}
}

func TestTrackerErrorResponseRejects(t *testing.T) {
	tr := NewTracker(time.Second, nil)

	req, _ := NewRequest(TypeStopSession, nil)
	call := tr.Send(req, sendOK)
	tr.HandleResponse(NewErrorResponse(req.ID, "E1", "boom", nil))

	_, err := call.Wait(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "E1: boom" {
		t.Errorf("err = %q, want %q", err.Error(), "E1: boom")
	}
}

func TestTrackerTimesOut(t *testing.T) {
	tr := NewTracker(20*time.Millisecond, nil)

	req, _ := NewRequest(TypeGetSessions, nil)
	call := tr.Send(req, sendOK)

	_, err := call.Wait(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %q", err)
	}
	if tr.PendingCount() != 0 {
		t.Errorf("timed-out entry still pending")
	}

	// A late response for the timed-out id is unmatched and ignored.
	resp, _ := NewResponse(req, map[string]any{})
	if tr.HandleResponse(resp) {
		t.Error("late response consumed after timeout")
	}
}

func TestTrackerSettlesAtMostOnce(t *testing.T) {
	tr := NewTracker(time.Second, nil)

	req, _ := NewRequest(TypeGetSettings, nil)
	call := tr.Send(req, sendOK)

	first, _ := NewResponse(req, map[string]any{"n": 1})
	second, _ := NewResponse(req, map[string]any{"n": 2})
	if !tr.HandleResponse(first) {
		t.Fatal("first response not consumed")
	}
	if tr.HandleResponse(second) {
		t.Fatal("duplicate response consumed")
	}

	got, err := call.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if string(got.Payload) != `{"n":1}` {
		t.Errorf("settled with %s, want first response", got.Payload)
	}
}

func TestTrackerSendFailureSettlesCall(t *testing.T) {
	tr := NewTracker(time.Second, nil)

	req, _ := NewRequest(TypeStartPomodoro, nil)
	call := tr.Send(req, func(*Message) error { return errors.New("wire down") })

	_, err := call.Wait(context.Background())
	if err == nil || !strings.Contains(err.Error(), "wire down") {
		t.Fatalf("err = %v", err)
	}
	if tr.PendingCount() != 0 {
		t.Error("failed send left a pending entry")
	}
}

func TestTrackerSynchronousResponseDuringSend(t *testing.T) {
	tr := NewTracker(time.Second, nil)

	req, _ := NewRequest(TypeGetDailyStats, nil)
	call := tr.Send(req, func(m *Message) error {
		resp, _ := NewResponse(m, map[string]any{})
		if !tr.HandleResponse(resp) {
			t.Error("entry not registered before egress")
		}
		return nil
	})

	if _, err := call.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestTrackerRejectsRequestWithoutID(t *testing.T) {
	tr := NewTracker(time.Second, nil)
	call := tr.Send(&Message{Type: TypeStartSession}, sendOK)
	if _, err := call.Wait(context.Background()); err == nil {
		t.Fatal("expected error for id-less request")
	}
}

func TestTrackerClearFailsAllPending(t *testing.T) {
	tr := NewTracker(time.Minute, nil)

	calls := make([]*Call, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := NewRequest(TypeGetProjects, nil)
		calls = append(calls, tr.Send(req, sendOK))
	}
	tr.Clear()

	for _, call := range calls {
		_, err := call.Wait(context.Background())
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("err = %v, want ErrCancelled", err)
		}
	}
	if tr.PendingCount() != 0 {
		t.Errorf("pending = %d after Clear", tr.PendingCount())
	}
}

func TestTrackerIgnoresUnmatchedResponse(t *testing.T) {
	tr := NewTracker(time.Second, nil)
	resp := NewErrorResponse("6ba7b810-9dad-11d1-80b4-00c04fd430c8", "E1", "boom", nil)
	if tr.HandleResponse(resp) {
		t.Error("unmatched response reported as consumed")
	}
	if tr.HandleResponse(nil) {
		t.Error("nil response reported as consumed")
	}
}

func TestCallWaitHonorsContext(t *testing.T) {
	tr := NewTracker(time.Minute, nil)
	req, _ := NewRequest(TypeGetSessionStatus, nil)
	call := tr.Send(req, sendOK)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := call.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestTrackerConcurrentSettlement(t *testing.T) {
	tr := NewTracker(time.Second, nil)

	const n = 50
	var settled atomic.Int32
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		req, _ := NewRequest(TypeGetWeeklyStats, nil)
		call := tr.Send(req, sendOK)
		go func(req *Message, call *Call) {
			resp, _ := NewResponse(req, map[string]any{})
			tr.HandleResponse(resp)
			if _, err := call.Wait(context.Background()); err == nil {
				settled.Add(1)
			}
			done <- struct{}{}
		}(req, call)
	}
	for i := 0; i < n; i++ {
		<-done
	}
	if settled.Load() != n {
		t.Errorf("settled %d of %d calls", settled.Load(), n)
	}
	close(done)
}
