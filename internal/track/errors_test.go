package track

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarker(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrStorage, "store", "insertSession", "write failed", cause)
	if !errors.Is(err, ErrStorage) {
		t.Error("marker lost")
	}
	if !errors.Is(err, cause) {
		t.Error("cause lost")
	}
	want := "storage error: store: insertSession: write failed: disk full"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToInternal(t *testing.T) {
	err := Wrap(nil, "service", "", "", nil)
	if !errors.Is(err, ErrInternal) {
		t.Error("nil marker should classify as internal")
	}
}

func TestWrapWithoutContext(t *testing.T) {
	err := Wrap(ErrInternal, "", "", "", nil)
	if err.Error() != "internal error: service failure" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Wrap(ErrValidation, "server", "decode", "bad payload", nil), "INVALID_PAYLOAD"},
		{Wrap(ErrNotFound, "service", "pause", "no session", nil), "NOT_FOUND"},
		{Wrap(ErrConflict, "service", "startPomodoro", "already running", nil), "CONFLICT"},
		{Wrap(ErrStorage, "store", "query", "", nil), "STORAGE_ERROR"},
		{Wrap(ErrUnavailable, "service", "healthMetrics", "disabled", nil), "FEATURE_DISABLED"},
		{errors.New("anything else"), "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
