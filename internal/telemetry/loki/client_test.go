package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

type capturedPush struct {
	path string
	body pushRequest
}

func newCaptureServer(t *testing.T, status int, out *capturedPush) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out.path = r.URL.Path
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(raw, &out.body); err != nil {
			t.Errorf("decode body %q: %v", raw, err)
		}
		w.WriteHeader(status)
	}))
}

func TestPush(t *testing.T) {
	var got capturedPush
	srv := newCaptureServer(t, http.StatusNoContent, &got)
	defer srv.Close()

	c := NewClient(srv.URL)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := c.Push(context.Background(), ts, `{"eventType":"login_success"}`, map[string]string{
		"event_type": "login_success",
		"user_id":    "user with spaces",
		"empty":      "   ",
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if got.path != "/loki/api/v1/push" {
		t.Errorf("path = %q, want /loki/api/v1/push", got.path)
	}
	if len(got.body.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(got.body.Streams))
	}
	s := got.body.Streams[0]
	if s.Stream["job"] != "taskhub" {
		t.Errorf("job label = %q, want taskhub", s.Stream["job"])
	}
	if s.Stream["event_type"] != "login_success" {
		t.Errorf("event_type label = %q", s.Stream["event_type"])
	}
	if s.Stream["user_id"] != "user_with_spaces" {
		t.Errorf("user_id label = %q, want sanitized value", s.Stream["user_id"])
	}
	if _, ok := s.Stream["empty"]; ok {
		t.Error("blank label value should be dropped")
	}
	if len(s.Values) != 1 || len(s.Values[0]) != 2 {
		t.Fatalf("values = %+v, want one [ts, line] pair", s.Values)
	}
	if s.Values[0][1] != `{"eventType":"login_success"}` {
		t.Errorf("line = %q", s.Values[0][1])
	}
}

func TestPush_Non2xx(t *testing.T) {
	var got capturedPush
	srv := newCaptureServer(t, http.StatusInternalServerError, &got)
	defer srv.Close()

	if err := NewClient(srv.URL).Push(context.Background(), time.Now(), "line", nil); err == nil {
		t.Fatal("Push should fail on a 500 response")
	}
}

func TestPushEventJSON(t *testing.T) {
	var got capturedPush
	srv := newCaptureServer(t, http.StatusNoContent, &got)
	defer srv.Close()

	raw := []byte(`{"userId":"u1","eventType":"login_success","source":"auth","createdAt":"2026-01-02T03:04:05Z"}`)
	if err := NewClient(srv.URL).PushEventJSON(context.Background(), raw); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}

	s := got.body.Streams[0]
	if s.Stream["user_id"] != "u1" || s.Stream["event_type"] != "login_success" || s.Stream["source"] != "auth" {
		t.Errorf("labels = %+v", s.Stream)
	}
	wantNanos := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).UnixNano()
	if s.Values[0][0] != strconv.FormatInt(wantNanos, 10) {
		t.Errorf("timestamp = %s, want %d", s.Values[0][0], wantNanos)
	}
	if s.Values[0][1] != string(raw) {
		t.Errorf("line = %q, want raw event JSON", s.Values[0][1])
	}
}

func TestPushEventJSON_UnparsableLine(t *testing.T) {
	var got capturedPush
	srv := newCaptureServer(t, http.StatusNoContent, &got)
	defer srv.Close()

	if err := NewClient(srv.URL).PushEventJSON(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	s := got.body.Streams[0]
	if len(s.Stream) != 1 || s.Stream["job"] != "taskhub" {
		t.Errorf("labels = %+v, want only job", s.Stream)
	}
	if s.Values[0][1] != "not json" {
		t.Errorf("line = %q", s.Values[0][1])
	}
}
