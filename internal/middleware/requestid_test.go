package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWithRequestID(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/videos", nil)
	if header != "" {
		req.Header.Set("X-Request-ID", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	rec, seen := serveWithRequestID(t, "")
	if seen == "" {
		t.Fatal("no request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("echoed id %q differs from context id %q", got, seen)
	}
}

func TestRequestIDKeepsCallerID(t *testing.T) {
	rec, seen := serveWithRequestID(t, "scheduler-7f3a")
	if seen != "scheduler-7f3a" {
		t.Fatalf("context id = %q, want caller's id", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "scheduler-7f3a" {
		t.Fatalf("echoed id = %q", got)
	}
}

func TestRequestIDReplacesOversizedCallerID(t *testing.T) {
	long := strings.Repeat("a", maxInboundIDLength+1)
	_, seen := serveWithRequestID(t, long)
	if seen == long || seen == "" {
		t.Fatalf("oversized caller id not replaced: %q", seen)
	}
}
