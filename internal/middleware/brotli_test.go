package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newBrotliEngine(body string) *gin.Engine {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, body)
	})
	return r
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	body := strings.Repeat("def factorial(n): return 1 if n<=1 else n*factorial(n-1)\n", 100)
	r := newBrotliEngine(body)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("expected br encoding, got %q", got)
	}
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(plain) != body {
		t.Error("decompressed body does not match")
	}
}

func TestBrotliLeavesSmallBodiesPlain(t *testing.T) {
	r := newBrotliEngine(`{"status":"healthy"}`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("expected no encoding, got %q", got)
	}
	if w.Body.String() != `{"status":"healthy"}` {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestBrotliSkips(t *testing.T) {
	body := strings.Repeat("x", 4096)
	tests := []struct {
		name   string
		header map[string]string
	}{
		{"no accept-encoding", map[string]string{}},
		{"event stream", map[string]string{"Accept-Encoding": "br", "Accept": "text/event-stream"}},
		{"range request", map[string]string{"Accept-Encoding": "br", "Range": "bytes=0-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newBrotliEngine(body)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Content-Encoding"); got != "" {
				t.Errorf("expected no encoding, got %q", got)
			}
			if w.Body.Len() != len(body) {
				t.Errorf("expected %d plain bytes, got %d", len(body), w.Body.Len())
			}
		})
	}
}
