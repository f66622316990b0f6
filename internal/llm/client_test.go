package llm

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "sync/atomic"
  "testing"
  "time"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
)

func newTestClient(serverURL string) *client {
  return &client{
    log:          logger.NewNop(),
    baseURL:      serverURL,
    apiKey:       "test-key",
    defaultModel: "test-model",
    httpClient:   &http.Client{},
    rateLimitDelays: []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
    failureDelays:   []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
  }
}

func completionBody(content string) []byte {
  body := map[string]interface{}{
    "choices": []map[string]interface{}{
      {"message": map[string]interface{}{"content": content}},
    },
  }
  raw, _ := json.Marshal(body)
  return raw
}

func TestGenerateTextRetriesRateLimitThenSucceeds(t *testing.T) {
  var calls int32
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if atomic.AddInt32(&calls, 1) <= 2 {
      w.WriteHeader(http.StatusTooManyRequests)
      return
    }
    w.Header().Set("Content-Type", "application/json")
    _, _ = w.Write(completionBody("hello"))
  }))
  defer srv.Close()

  c := newTestClient(srv.URL)
  got, err := c.GenerateText(context.Background(), "say hello", nil)
  if err != nil {
    t.Fatalf("GenerateText: %v", err)
  }
  if got != "hello" {
    t.Fatalf("GenerateText = %q, want %q", got, "hello")
  }
  if n := atomic.LoadInt32(&calls); n != 3 {
    t.Fatalf("provider called %d times, want 3", n)
  }
}

func TestGenerateTextRateLimitExhausted(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusTooManyRequests)
  }))
  defer srv.Close()

  c := newTestClient(srv.URL)
  _, err := c.GenerateText(context.Background(), "prompt", nil)
  if err == nil {
    t.Fatal("expected error after exhausted retries")
  }
  if kind := apperr.KindOf(err); kind != apperr.KindRateLimitedExhausted {
    t.Fatalf("error kind = %q, want %q", kind, apperr.KindRateLimitedExhausted)
  }
}

func TestGenerateTextUpstreamErrorNotRetried(t *testing.T) {
  var calls int32
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    atomic.AddInt32(&calls, 1)
    w.WriteHeader(http.StatusBadRequest)
  }))
  defer srv.Close()

  c := newTestClient(srv.URL)
  _, err := c.GenerateText(context.Background(), "prompt", nil)
  if err == nil {
    t.Fatal("expected upstream error")
  }
  if kind := apperr.KindOf(err); kind != apperr.KindUpstreamError {
    t.Fatalf("error kind = %q, want %q", kind, apperr.KindUpstreamError)
  }
  if n := atomic.LoadInt32(&calls); n != 1 {
    t.Fatalf("non-retryable status retried: %d calls", n)
  }
}

func TestGenerateTextTimeout(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    time.Sleep(200 * time.Millisecond)
    _, _ = w.Write(completionBody("late"))
  }))
  defer srv.Close()

  c := newTestClient(srv.URL)
  _, err := c.GenerateText(context.Background(), "prompt", &CallOptions{Timeout: 20 * time.Millisecond})
  if err == nil {
    t.Fatal("expected timeout")
  }
  if kind := apperr.KindOf(err); kind != apperr.KindTimeout {
    t.Fatalf("error kind = %q, want %q", kind, apperr.KindTimeout)
  }
}

func TestGenerateTextZeroTemperature(t *testing.T) {
  var body chatRequest
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
      t.Errorf("decode request: %v", err)
    }
    _, _ = w.Write(completionBody("ok"))
  }))
  defer srv.Close()

  zero := 0.0
  c := newTestClient(srv.URL)
  if _, err := c.GenerateText(context.Background(), "prompt", &CallOptions{Temperature: &zero}); err != nil {
    t.Fatalf("GenerateText: %v", err)
  }
  if body.Temperature != 0 {
    t.Fatalf("request temperature = %v, want 0", body.Temperature)
  }
}

func TestGenerateJSONArrayRepairsFencedOutput(t *testing.T) {
  content := "```json\n[{\"prompt\":\"q1\"},{\"prompt\":\"q2\"},]\n```"
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    _, _ = w.Write(completionBody(content))
  }))
  defer srv.Close()

  c := newTestClient(srv.URL)
  items, err := c.GenerateJSONArray(context.Background(), "prompt", nil)
  if err != nil {
    t.Fatalf("GenerateJSONArray: %v", err)
  }
  if len(items) != 2 {
    t.Fatalf("parsed %d items, want 2", len(items))
  }
  if items[0]["prompt"] != "q1" {
    t.Fatalf("first item = %v", items[0])
  }
}

func TestGenerateObjectInvalidOutput(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    _, _ = w.Write(completionBody("I cannot answer that."))
  }))
  defer srv.Close()

  c := newTestClient(srv.URL)
  _, err := c.GenerateObject(context.Background(), "prompt", nil)
  if err == nil {
    t.Fatal("expected invalid output error")
  }
  if kind := apperr.KindOf(err); kind != apperr.KindInvalidModelOutput {
    t.Fatalf("error kind = %q, want %q", kind, apperr.KindInvalidModelOutput)
  }
}
