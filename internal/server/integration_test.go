package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mlorentedev/correcteur/internal/relayerr"
	"github.com/mlorentedev/correcteur/internal/upstream"
)

type failingCompleter struct {
	calls atomic.Int32
}

func (f *failingCompleter) Name() string { return "failing" }
func (f *failingCompleter) Complete(ctx context.Context, message string) (string, error) {
	f.calls.Add(1)
	return "", relayerr.New(relayerr.UpstreamRejected, "Erreur API Claude", fmt.Errorf("intentional failure"))
}
func (f *failingCompleter) Available() bool { return true }

type correctRequest struct {
	Text    string `json:"text"`
	Mode    string `json:"mode,omitempty"`
	Tone    string `json:"tone,omitempty"`
	Context string `json:"context,omitempty"`
}

type correctResponse struct {
	CorrectedText string `json:"correctedText"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newTestServer(t *testing.T, c upstream.Completer) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(SetupMux(c, 0, 0))
	t.Cleanup(ts.Close)
	return ts
}

func defaultTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServer(t, &upstream.Mock{})
}

func assertCORS(t *testing.T, resp *http.Response) {
	t.Helper()
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
	for k, v := range want {
		if got := resp.Header.Get(k); got != v {
			t.Errorf("%s: got %q, want %q", k, got, v)
		}
	}
}

func TestIntegration_CorrectFullFlow(t *testing.T) {
	ts := defaultTestServer(t)

	body, _ := json.Marshal(correctRequest{Text: "bonjour tout le monde", Mode: "improve", Tone: "vous", Context: "email"})
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	assertCORS(t, resp)
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", got, "application/json")
	}

	reqID := resp.Header.Get("X-Request-ID")
	if len(reqID) != 32 {
		t.Errorf("X-Request-ID length: got %d, want 32", len(reqID))
	}

	var cr correctResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cr.CorrectedText != "Bonjour tout le monde" {
		t.Errorf("correctedText: got %q, want %q", cr.CorrectedText, "Bonjour tout le monde")
	}
}

func TestIntegration_AnyPathIsRelay(t *testing.T) {
	ts := defaultTestServer(t)

	body, _ := json.Marshal(correctRequest{Text: "salut"})
	resp, err := http.Post(ts.URL+"/api/correct", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestIntegration_OptionsPreflight(t *testing.T) {
	ts := defaultTestServer(t)

	for _, path := range []string{"/", "/healthz", "/whatever"} {
		req, _ := http.NewRequest(http.MethodOptions, ts.URL+path, strings.NewReader("not json"))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status: got %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
		if len(data) != 0 {
			t.Errorf("%s body: got %q, want empty", path, data)
		}
		assertCORS(t, resp)
	}
}

func TestIntegration_MethodNotAllowed(t *testing.T) {
	ts := defaultTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		req, _ := http.NewRequest(method, ts.URL+"/", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s: got %d, want %d", method, resp.StatusCode, http.StatusMethodNotAllowed)
		}
		assertCORS(t, resp)
	}
}

func TestIntegration_MissingText(t *testing.T) {
	ts := defaultTestServer(t)

	for _, payload := range []string{`{}`, `{"text":""}`, `{"text":null}`} {
		resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		var er errorResponse
		json.NewDecoder(resp.Body).Decode(&er)
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want %d", payload, resp.StatusCode, http.StatusBadRequest)
		}
		if er.Error != "Texte manquant" {
			t.Errorf("%s: error got %q, want %q", payload, er.Error, "Texte manquant")
		}
	}
}

func TestIntegration_AnthropicScenario(t *testing.T) {
	var calls atomic.Int32
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"text":"Je suis fatigué."}]}`))
	}))
	defer stub.Close()

	ts := newTestServer(t, &upstream.Anthropic{BaseURL: stub.URL, APIKey: "sk-test", Client: &http.Client{Timeout: 5 * time.Second}})

	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(`{"text":"je sui fatigé","mode":"fix","tone":"tu"}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", resp.StatusCode, http.StatusOK, data)
	}
	if got := strings.TrimSpace(string(data)); got != `{"correctedText":"Je suis fatigué."}` {
		t.Errorf("body: got %s", got)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("upstream calls: got %d, want 1", n)
	}
}

func TestIntegration_UpstreamErrorNoRetry(t *testing.T) {
	f := &failingCompleter{}
	ts := newTestServer(t, f)

	body, _ := json.Marshal(correctRequest{Text: "bonjour"})
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	assertCORS(t, resp)

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error != "Erreur API Claude" {
		t.Errorf("error: got %q, want %q", er.Error, "Erreur API Claude")
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("upstream calls: got %d, want 1", n)
	}
}

func TestIntegration_UpstreamTimeoutIsRelayError(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer stub.Close()

	c := &upstream.Anthropic{BaseURL: stub.URL, APIKey: "sk-test", Client: &http.Client{Timeout: 100 * time.Millisecond}}
	ts := httptest.NewServer(SetupMux(c, 0, 2*time.Second))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(`{"text":"bonjour"}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", got, "application/json")
	}
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error != "Erreur API Claude" {
		t.Errorf("error: got %q, want %q", er.Error, "Erreur API Claude")
	}
}

func TestIntegration_OperationalPathsRelayOtherMethods(t *testing.T) {
	ts := defaultTestServer(t)

	for _, path := range []string{"/healthz", "/api/modes", "/metrics"} {
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(`{"text":"bonjour"}`))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		var cr correctResponse
		json.NewDecoder(resp.Body).Decode(&cr)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("POST %s status: got %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
		if cr.CorrectedText != "Bonjour" {
			t.Errorf("POST %s correctedText: got %q, want %q", path, cr.CorrectedText, "Bonjour")
		}
	}

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/healthz", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("PUT /healthz status: got %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestIntegration_HealthFullFlow(t *testing.T) {
	ts := newTestServer(t, &upstream.Anthropic{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var hr struct {
		Status   string `json:"status"`
		Upstream struct {
			Available bool   `json:"available"`
			Reason    string `json:"reason"`
		} `json:"upstream"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hr.Upstream.Available || hr.Upstream.Reason != "no API key" {
		t.Errorf("upstream: got %+v", hr.Upstream)
	}
}

func TestIntegration_ModesFullFlow(t *testing.T) {
	ts := defaultTestServer(t)

	resp, err := http.Get(ts.URL + "/api/modes")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var modes []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&modes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(modes) != 4 {
		t.Fatalf("modes count: got %d, want 4", len(modes))
	}
}

func TestIntegration_ConcurrentCorrect(t *testing.T) {
	ts := defaultTestServer(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("Message %d", i)
			body, _ := json.Marshal(correctRequest{Text: fmt.Sprintf("message %d", i)})
			resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
			if err != nil {
				errs <- fmt.Errorf("request %d: %w", i, err)
				return
			}
			defer resp.Body.Close()
			var cr correctResponse
			if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
				errs <- fmt.Errorf("request %d: decode: %w", i, err)
				return
			}
			if cr.CorrectedText != want {
				errs <- fmt.Errorf("request %d: got %q, want %q", i, cr.CorrectedText, want)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestIntegration_ContextCancellation(t *testing.T) {
	ts := newTestServer(t, &upstream.Mock{Delay: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	body, _ := json.Marshal(correctRequest{Text: "bonjour"})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	_, err := http.DefaultClient.Do(req)
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if !strings.Contains(err.Error(), "context") {
		t.Errorf("expected context error, got: %v", err)
	}
}

func TestIntegration_OversizedBody(t *testing.T) {
	ts := defaultTestServer(t)

	payload := fmt.Sprintf(`{"text":"%s"}`, strings.Repeat("x", 100*1024))
	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want %d", resp.StatusCode, http.StatusRequestEntityTooLarge)
	}
}

func TestIntegration_MetricsAfterCorrect(t *testing.T) {
	ts := defaultTestServer(t)

	body, _ := json.Marshal(correctRequest{Text: "test input", Mode: "formal"})
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("correct request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("correct status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()

	metricsBody, _ := io.ReadAll(resp.Body)
	text := string(metricsBody)

	for _, name := range []string{
		"correcteur_requests_total",
		"correcteur_upstream_duration_seconds",
		"correcteur_input_chars",
		"go_goroutines",
	} {
		if !strings.Contains(text, name) {
			t.Errorf("metrics body missing %s", name)
		}
	}
}
