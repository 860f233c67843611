package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rubiojr/cinegrid/pkg/log"
)

func TestLogMiddlewareLogsUnderAPIHTTP(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	log.EnableDebugFor("api/http")
	defer log.DisableDebugFor("api/http")

	h := LogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	if !strings.Contains(out, "[api/http>]") || !strings.Contains(out, "GET /health 418") {
		t.Fatalf("expected a request line from the api/http logger, got %q", out)
	}
}
