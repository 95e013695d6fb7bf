package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", timeout, zerolog.Nop())
}

func TestSubmitGradeSendsPayloadAndNormalizes(t *testing.T) {
	const (
		question = "Write a function that calculates the factorial of a number"
		code     = "def factorial(n): return 1 if n<=1 else n*factorial(n-1)"
	)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/grade" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["question"] != question || body["code"] != code {
			t.Errorf("unexpected body %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"grade": {"grade": 92, "feedback": "Clean recursive solution."}}`))
	}, 0)

	res, err := c.SubmitGrade(context.Background(), question, code)
	if err != nil {
		t.Fatalf("SubmitGrade: %v", err)
	}
	if res.Grade != 92 || res.Feedback != "Clean recursive solution." {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSubmitGradeFlatForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"grade": 64, "feedback": "Needs tests."}`))
	}, 0)

	res, err := c.SubmitGrade(context.Background(), "q", "c")
	if err != nil {
		t.Fatalf("SubmitGrade: %v", err)
	}
	if res.Grade != 64 || res.Feedback != "Needs tests." {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCallsFailWithSingleErrorKind(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "malformed JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"grade": `))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler, 0)

			if _, err := c.SubmitGrade(context.Background(), "q", "c"); !errors.Is(err, ErrRequestFailed) {
				t.Errorf("SubmitGrade: expected ErrRequestFailed, got %v", err)
			}
			if _, err := c.RequestQuestion(context.Background(), "t"); !errors.Is(err, ErrRequestFailed) {
				t.Errorf("RequestQuestion: expected ErrRequestFailed, got %v", err)
			}
			if _, err := c.CheckHealth(context.Background()); !errors.Is(err, ErrRequestFailed) {
				t.Errorf("CheckHealth: expected ErrRequestFailed, got %v", err)
			}
		})
	}
}

func TestTimeoutIsTreatedAsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.Write([]byte(`{"grade": 100, "feedback": "late"}`))
	}, 50*time.Millisecond)

	res, err := c.SubmitGrade(context.Background(), "q", "c")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url+"/api", time.Second, zerolog.Nop())
	if _, err := c.CheckHealth(context.Background()); !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestRequestQuestion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate-question" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["topic"] != "recursion" {
			t.Errorf("expected topic recursion, got %q", body["topic"])
		}
		w.Write([]byte(`{"question": "Reverse a linked list recursively."}`))
	}, 0)

	res, err := c.RequestQuestion(context.Background(), "recursion")
	if err != nil {
		t.Fatalf("RequestQuestion: %v", err)
	}
	if res.Question != "Reverse a linked list recursively." {
		t.Errorf("unexpected question %q", res.Question)
	}
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		body    string
		healthy bool
	}{
		{`{"status": "healthy"}`, true},
		{`{"status": "degraded"}`, false},
		{`{}`, false},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/api/health" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.Write([]byte(tt.body))
		}, 0)

		res, err := c.CheckHealth(context.Background())
		if err != nil {
			t.Fatalf("CheckHealth(%s): %v", tt.body, err)
		}
		if res.Healthy() != tt.healthy {
			t.Errorf("CheckHealth(%s): expected healthy=%v", tt.body, tt.healthy)
		}
	}
}
