package translhost

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// testLogger routes component logging into the test log.
type testLogger struct {
	t *testing.T
}

func (l testLogger) Errorf(format string, v ...any) { l.t.Logf("[ERROR] "+format, v...) }
func (l testLogger) Warnf(format string, v ...any)  { l.t.Logf("[WARN] "+format, v...) }
func (l testLogger) Infof(format string, v ...any)  { l.t.Logf("[INFO] "+format, v...) }
func (l testLogger) Debugf(format string, v ...any) { l.t.Logf("[DEBUG] "+format, v...) }

// mockBackend is a fake Ollama/OpenAI-style HTTP backend. It records the
// last request it served and answers with a canned status and body.
type mockBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	lastPath string
	lastBody generateRequest

	status   int
	response string
}

func newMockBackend(t *testing.T, status int, response string) *mockBackend {
	t.Helper()

	b := &mockBackend{status: status, response: response}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lastPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&b.lastBody); err != nil {
			t.Errorf("mock backend: cannot decode request body: %v", err)
		}
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		if _, err := w.Write([]byte(b.response)); err != nil {
			t.Errorf("mock backend: cannot write response: %v", err)
		}
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *mockBackend) URL() string {
	return b.server.URL
}

func (b *mockBackend) lastRequest() (string, generateRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPath, b.lastBody
}
