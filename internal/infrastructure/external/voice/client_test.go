package voice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voxdesk-app/voxdesk/pkg/config"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.VoiceConfig{
		APIKey:        "test-key",
		BaseURL:       baseURL,
		RetentionDays: RetentionDays,
	})
}

func TestListCallsNotConfigured(t *testing.T) {
	c := NewClient(&config.VoiceConfig{})
	if c.IsConfigured() {
		t.Fatal("client without API key must not report configured")
	}

	_, err := c.ListCalls(context.Background(), time.Now(), 10)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestListCallsClampsLookbackWindow(t *testing.T) {
	var gotSince string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("createdAtGe")
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":"call-1","status":"ended"}]`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	since := time.Now().AddDate(0, 0, -90)
	calls, err := c.ListCalls(context.Background(), since, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(calls) != 1 || calls[0].ID != "call-1" {
		t.Fatalf("unexpected calls: %+v", calls)
	}

	parsed, err := time.Parse(time.RFC3339, gotSince)
	if err != nil {
		t.Fatalf("createdAtGe %q is not RFC3339: %v", gotSince, err)
	}
	oldest := time.Now().AddDate(0, 0, -(RetentionDays + 1))
	if parsed.Before(oldest) {
		t.Errorf("lookback not clamped to retention: got %s", gotSince)
	}
}

func TestListCallsDoesNotRetryAuthFailures(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	_, err := c.ListCalls(context.Background(), time.Now(), 10)
	if err == nil {
		t.Fatal("expected error on rejected credentials")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected a single request on auth failure, got %d", n)
	}
}

func TestListCallsRejectsBadPayload(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		io.WriteString(w, `{"not":"a list"}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	_, err := c.ListCalls(context.Background(), time.Now(), 10)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected no retry on malformed payload, got %d requests", n)
	}
}

func TestFetchRecording(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		io.WriteString(w, "audio-bytes")
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	body, size, contentType, err := c.FetchRecording(context.Background(), srv.URL+"/rec.mp3")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("unexpected body %q", data)
	}
	if size != int64(len("audio-bytes")) {
		t.Errorf("unexpected size %d", size)
	}
	if contentType != "audio/mpeg" {
		t.Errorf("unexpected content type %q", contentType)
	}
}

func TestFetchRecordingErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	if _, _, _, err := c.FetchRecording(context.Background(), srv.URL+"/missing.wav"); err == nil {
		t.Error("expected error on 404")
	}
}
