package serverlist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "pathprobe/pkg/errors"
)

func testFetcher() *Fetcher {
	cfg := DefaultFetcherConfig()
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	return NewFetcher(cfg)
}

func TestFetchAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		w.Write([]byte("IP/HOST,PORT\n1.1.1.1,5201\n"))
	}))
	defer srv.Close()

	addrs, err := testFetcher().FetchAddresses(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchAddresses: %v", err)
	}
	if len(addrs) != 1 || addrs[0] != "1.1.1.1" {
		t.Errorf("got %v", addrs)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	content, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(content) != "ok" {
		t.Errorf("got %q", content)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestFetchNoRetryOnClientError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("4xx must not be retried, got %d attempts", attempts)
	}

	var fetchErr *pkgerrors.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("expected FetchError, got %T", err)
	}
	var httpErr *pkgerrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected wrapped 404 HTTPError, got %v", err)
	}
}
