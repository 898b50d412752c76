package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPModel_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/detect" {
			t.Errorf("got %s %s, want POST /detect", r.Method, r.URL.Path)
		}
		var req detectReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "what a day" {
			t.Errorf("text = %q", req.Text)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"emotions":[{"label":"joy","score":0.8},{"label":"neutral","score":0.2}],"dominant_emotion":"joy"}`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL+"/", nil)
	scores, err := m.Classify(context.Background(), "what a day")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(scores) != 2 || scores[0].Label != "joy" || scores[0].Score != 0.8 {
		t.Errorf("scores = %+v", scores)
	}
}

func TestHTTPModel_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not ready", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPModel(srv.URL, srv.Client()).Classify(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if !strings.Contains(err.Error(), "model not ready") {
		t.Errorf("error = %v, want body in message", err)
	}
}

func TestHTTPLoader_WarmsService(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"emotions":[{"label":"neutral","score":1}]}`))
	}))
	defer srv.Close()

	svc := NewService(HTTPLoader(NewHTTPModel(srv.URL, nil)), testLogger())
	if err := svc.Warm(context.Background()); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	resp := svc.Classify(context.Background(), Request{Seq: 1, Text: "fine"})
	if resp.Status != StatusComplete || resp.Output.Sentiment != Neutral {
		t.Errorf("resp = %+v", resp)
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want warmup plus one request", hits)
	}
}

func TestHTTPLoader_FailedWarmupIsRetried(t *testing.T) {
	up := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"emotions":[{"label":"joy","score":1}]}`))
	}))
	defer srv.Close()

	svc := NewService(HTTPLoader(NewHTTPModel(srv.URL, nil)), testLogger())
	if resp := svc.Classify(context.Background(), Request{Seq: 1, Text: "x"}); resp.Status != StatusError {
		t.Fatalf("status = %q, want error while service is down", resp.Status)
	}

	up = true
	if resp := svc.Classify(context.Background(), Request{Seq: 2, Text: "x"}); resp.Status != StatusComplete {
		t.Errorf("status = %q after service came up, error = %q", resp.Status, resp.Error)
	}
}
