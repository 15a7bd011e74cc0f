package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/choplin/scorerelay/internal/score"
)

func TestSubmitAccepted(t *testing.T) {
	var got Payload
	var contentType, userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		userAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	httpClient, err := NewHTTPClient(HTTPOptions{UserAgent: "scorerelay-test"})
	if err != nil {
		t.Fatalf("NewHTTPClient error: %v", err)
	}
	c := NewClient(srv.URL, httpClient)

	out := c.Submit(context.Background(), "Pac-Man", score.Record{Player: "ABC", Score: 123456}, "arcade")
	if out.Kind != Accepted {
		t.Fatalf("expected Accepted, got %v", out)
	}

	want := Payload{GameName: "Pac-Man", Player: "ABC", Score: 123456, Cabinet: "arcade"}
	if got != want {
		t.Fatalf("expected payload %+v, got %+v", want, got)
	}
	if contentType != "application/json" {
		t.Fatalf("expected application/json, got %q", contentType)
	}
	if userAgent != "scorerelay-test" {
		t.Fatalf("expected user agent to be stamped, got %q", userAgent)
	}
}

func TestSubmitRejected(t *testing.T) {
	cases := []struct {
		name   string
		status int
	}{
		{"ok is not created", http.StatusOK},
		{"bad request", http.StatusBadRequest},
		{"server error", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			out := NewClient(srv.URL, srv.Client()).Submit(context.Background(), "Galaga", score.Record{Player: "X", Score: 1}, "arcade")
			if out.Kind != Rejected {
				t.Fatalf("expected Rejected, got %v", out)
			}
			if out.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, out.Status)
			}
			if out.Body != `{"error":"nope"}` {
				t.Fatalf("unexpected body %q", out.Body)
			}
			if !strings.Contains(out.String(), "nope") {
				t.Fatalf("expected body in rendering, got %q", out.String())
			}
		})
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	url := srv.URL
	srv.Close()

	out := NewClient(url, srv.Client()).Submit(context.Background(), "Galaga", score.Record{Player: "X", Score: 1}, "arcade")
	if out.Kind != TransportFailure {
		t.Fatalf("expected TransportFailure, got %v", out)
	}
	if out.Err == nil {
		t.Fatalf("expected underlying error")
	}
}

func TestSubmitTimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()
	defer close(release)

	httpClient, err := NewHTTPClient(HTTPOptions{Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewHTTPClient error: %v", err)
	}

	out := NewClient(srv.URL, httpClient).Submit(context.Background(), "Galaga", score.Record{Player: "X", Score: 1}, "arcade")
	if out.Kind != TransportFailure {
		t.Fatalf("expected TransportFailure, got %v", out)
	}
}

type countingDoer struct {
	calls int
	err   error
}

func (d *countingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls++
	return nil, d.err
}

func TestSubmitDoesNotRetry(t *testing.T) {
	d := &countingDoer{err: errors.New("connection refused")}
	out := NewClient("http://scores.invalid/api", d).Submit(context.Background(), "G", score.Record{Player: "P", Score: 1}, "c")
	if out.Kind != TransportFailure {
		t.Fatalf("expected TransportFailure, got %v", out)
	}
	if d.calls != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", d.calls)
	}
}

func TestNewHTTPClientProxy(t *testing.T) {
	c, err := NewHTTPClient(HTTPOptions{ProxyURL: "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("expected *Transport, got %T", c.Transport)
	}
	base, ok := tr.Base.(*http.Transport)
	if !ok || base.Proxy == nil {
		t.Fatalf("expected proxy to be configured")
	}
	if c.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout %v, got %v", defaultTimeout, c.Timeout)
	}

	if _, err := NewHTTPClient(HTTPOptions{ProxyURL: "127.0.0.1"}); err == nil {
		t.Fatalf("expected error for proxy without scheme")
	}
}
