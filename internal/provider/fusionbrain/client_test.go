package fusionbrain

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mandalnilabja/inkgate/internal/types"
)

// fakeAPI serves the three Fusion Brain endpoints. Status polls report
// PROCESSING until pendingPolls reaches zero.
func fakeAPI(t *testing.T, pendingPolls int32, final string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	polls := &atomic.Int32{}
	remaining := &atomic.Int32{}
	remaining.Store(pendingPolls)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /key/api/v1/pipelines", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Key") != "Key k" || r.Header.Get("X-Secret") != "Secret s" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"pipe-1","name":"Kandinsky"}]`))
	})
	mux.HandleFunc("POST /key/api/v1/pipeline/run", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("pipeline_id"); got != "pipe-1" {
			t.Errorf("pipeline_id = %q", got)
		}
		if r.FormValue("params") == "" {
			t.Error("expected params field")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"uuid":"job-1","status":"INITIAL"}`))
	})
	mux.HandleFunc("GET /key/api/v1/pipeline/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		if remaining.Add(-1) >= 0 {
			_, _ = w.Write([]byte(`{"uuid":"job-1","status":"PROCESSING"}`))
			return
		}
		_, _ = w.Write([]byte(final))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, polls
}

func newTestProvider(url string) *Provider {
	p := New("Kandinsky", url, "k", "s", nil)
	p.pollInterval = 5 * time.Millisecond
	return p
}

func TestAttempt_PollsUntilDone(t *testing.T) {
	payload := []byte("jpeg-bytes")
	final := `{"uuid":"job-1","status":"DONE","result":{"files":["` + base64.StdEncoding.EncodeToString(payload) + `"],"censored":false}}`
	srv, polls := fakeAPI(t, 2, final)

	img, err := newTestProvider(srv.URL).Attempt(context.Background(), "phoenix rising")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(img.Data) != string(payload) {
		t.Errorf("unexpected image data %q", img.Data)
	}
	if polls.Load() != 3 {
		t.Errorf("expected 3 status polls, got %d", polls.Load())
	}
}

func TestAttempt_Failures(t *testing.T) {
	tests := []struct {
		name  string
		final string
		want  types.AttemptKind
	}{
		{"job failed", `{"uuid":"job-1","status":"FAIL","errorDescription":"boom"}`, types.KindUnavailable},
		{"censored", `{"uuid":"job-1","status":"DONE","result":{"files":[],"censored":true}}`, types.KindRejected},
		{"no files", `{"uuid":"job-1","status":"DONE","result":{"files":[]}}`, types.KindMalformed},
		{"bad base64", `{"uuid":"job-1","status":"DONE","result":{"files":["***"]}}`, types.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeAPI(t, 0, tt.final)

			_, err := newTestProvider(srv.URL).Attempt(context.Background(), "phoenix rising")
			if got := types.KindOf(err); got != tt.want {
				t.Errorf("kind = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestAttempt_StopsPollingOnDeadline(t *testing.T) {
	srv, _ := fakeAPI(t, 1<<20, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestProvider(srv.URL).Attempt(ctx, "phoenix rising")
	if got := types.KindOf(err); got != types.KindTimeout {
		t.Errorf("kind = %q, want timeout (err: %v)", got, err)
	}
}

func TestAttempt_WrongCredentials(t *testing.T) {
	srv, _ := fakeAPI(t, 0, "")
	p := New("Kandinsky", srv.URL, "wrong", "s", nil)

	_, err := p.Attempt(context.Background(), "phoenix rising")
	var ae *types.AttemptError
	if !errors.As(err, &ae) || ae.Kind != types.KindNotFound || ae.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected not_found with 401, got %v", err)
	}
}

func TestAttempt_Unconfigured(t *testing.T) {
	p := New("Kandinsky", "", "k", "", nil)
	if p.Configured() {
		t.Fatal("expected provider without secret to be unconfigured")
	}
	_, err := p.Attempt(context.Background(), "phoenix rising")
	if !errors.Is(err, types.ErrUnconfigured) {
		t.Errorf("expected ErrUnconfigured, got %v", err)
	}
}
