package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestLoadScriptFetchesOnce(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("// library"))
	}))
	defer server.Close()

	l := New()
	ctx := context.Background()

	if err := l.LoadScript(ctx, server.URL+"/client.min.js", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.LoadScript(ctx, server.URL+"/client.min.js", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected one fetch for repeat loads, got %d", got)
	}
}

func TestLoadScriptFailureIsRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("// library"))
	}))
	defer server.Close()

	l := New()
	ctx := context.Background()

	if err := l.LoadScript(ctx, server.URL+"/wallet.min.js", nil); err == nil {
		t.Fatal("expected error for the failed fetch")
	}
	if err := l.LoadScript(ctx, server.URL+"/wallet.min.js", nil); err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("expected two fetches, got %d", got)
	}
}

func TestLoadRequiresURL(t *testing.T) {
	l := New()
	if err := l.LoadScript(context.Background(), "", nil); err == nil {
		t.Error("expected error for an empty URL")
	}
}
