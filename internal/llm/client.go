package llm

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "net"
  "net/http"
  "strconv"
  "strings"
  "time"

  "github.com/shikshaloop/shikshaloop-backend/internal/apperr"
  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/utils"
)

const (
  // ShortCallTimeout bounds single-question and course-discovery calls.
  ShortCallTimeout = 30 * time.Second
  // GenerationTimeout bounds multi-question and growth-plan calls.
  GenerationTimeout = 90 * time.Second
)

// CallOptions override the gateway defaults per call. A zero value for
// any field falls back to the configured default; Temperature is a
// pointer so deterministic sampling (0) stays expressible.
type CallOptions struct {
  Model       string
  MaxTokens   int
  Temperature *float64
  Timeout     time.Duration
}

// Client is the single choke point for all model calls. Retries live here
// and only here; callers fall back to their documented path when the
// gateway surfaces a failure kind.
type Client interface {
  GenerateText(ctx context.Context, prompt string, opts *CallOptions) (string, error)
  GenerateJSONArray(ctx context.Context, prompt string, opts *CallOptions) ([]map[string]interface{}, error)
  GenerateObject(ctx context.Context, prompt string, opts *CallOptions) (map[string]interface{}, error)
}

type client struct {
  log          *logger.Logger
  baseURL      string
  apiKey       string
  defaultModel string
  httpClient   *http.Client

  // Fixed retry schedules; tests shrink these.
  rateLimitDelays []time.Duration
  failureDelays   []time.Duration
}

func NewClient(log *logger.Logger) (Client, error) {
  serviceLog := log.With("service", "LLMClient")
  apiKey := utils.GetEnv("LLM_API_KEY", "", log)
  if apiKey == "" {
    return nil, fmt.Errorf("LLM_API_KEY is not set")
  }
  baseURL := utils.GetEnv("LLM_BASE_URL", "https://api.openai.com", log)
  model := utils.GetEnv("LLM_MODEL", "gpt-4o-mini", log)

  return &client{
    log:          serviceLog,
    baseURL:      strings.TrimSuffix(baseURL, "/"),
    apiKey:       apiKey,
    defaultModel: model,
    httpClient:   &http.Client{},
    rateLimitDelays: []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second},
    failureDelays:   []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
  }, nil
}

type httpError struct {
  StatusCode int
  Body       string
}

func (e *httpError) Error() string {
  return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

func isRateLimited(err error) bool {
  var he *httpError
  return errors.As(err, &he) && he.StatusCode == http.StatusTooManyRequests
}

func isRetryable(err error) bool {
  if err == nil {
    return false
  }
  var he *httpError
  if errors.As(err, &he) {
    if he.StatusCode == 408 || he.StatusCode == 429 {
      return true
    }
    return he.StatusCode >= 500 && he.StatusCode <= 599
  }
  var netErr net.Error
  if errors.As(err, &netErr) {
    return netErr.Timeout()
  }
  return false
}

type chatMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type chatRequest struct {
  Model       string        `json:"model"`
  Messages    []chatMessage `json:"messages"`
  MaxTokens   int           `json:"max_tokens"`
  Temperature float64       `json:"temperature"`
}

type chatResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
  } `json:"choices"`
}

func (c *client) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(body); err != nil {
    return nil, nil, err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return resp, raw, nil
}

// GenerateText issues one chat completion with up to three retries.
// Rate-limit signals wait 5s/10s/20s, other retryable failures 2s/4s/8s;
// a Retry-After header overrides the scheduled delay.
func (c *client) GenerateText(ctx context.Context, prompt string, opts *CallOptions) (string, error) {
  model := c.defaultModel
  maxTokens := 1024
  temperature := 0.7
  timeout := ShortCallTimeout
  if opts != nil {
    if opts.Model != "" {
      model = opts.Model
    }
    if opts.MaxTokens > 0 {
      maxTokens = opts.MaxTokens
    }
    if opts.Temperature != nil {
      temperature = *opts.Temperature
    }
    if opts.Timeout > 0 {
      timeout = opts.Timeout
    }
  }

  callCtx, cancel := context.WithTimeout(ctx, timeout)
  defer cancel()

  req := chatRequest{
    Model:       model,
    Messages:    []chatMessage{{Role: "user", Content: prompt}},
    MaxTokens:   maxTokens,
    Temperature: temperature,
  }

  maxRetries := len(c.rateLimitDelays)
  var lastErr error
  for attempt := 0; attempt <= maxRetries; attempt++ {
    if err := callCtx.Err(); err != nil {
      if errors.Is(err, context.DeadlineExceeded) {
        return "", apperr.Wrap(apperr.KindTimeout, "model call deadline exceeded", err)
      }
      return "", err
    }

    resp, raw, err := c.doOnce(callCtx, req)
    if err == nil {
      var parsed chatResponse
      if uErr := json.Unmarshal(raw, &parsed); uErr != nil || len(parsed.Choices) == 0 {
        return "", apperr.New(apperr.KindInvalidModelOutput, "provider response had no content")
      }
      return parsed.Choices[0].Message.Content, nil
    }
    lastErr = err

    if errors.Is(err, context.DeadlineExceeded) || (callCtx.Err() != nil && ctx.Err() == nil) {
      return "", apperr.Wrap(apperr.KindTimeout, "model call deadline exceeded", err)
    }
    if !isRetryable(err) {
      return "", apperr.Wrap(apperr.KindUpstreamError, "provider request failed", err)
    }
    if attempt == maxRetries {
      break
    }

    sleepFor := c.failureDelays[attempt]
    if isRateLimited(err) {
      sleepFor = c.rateLimitDelays[attempt]
    }
    if resp != nil {
      if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
        if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
          sleepFor = time.Duration(secs) * time.Second
        }
      }
    }

    c.log.Warn("LLM request retrying",
      "attempt", attempt+1,
      "max_retries", maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    select {
    case <-time.After(sleepFor):
    case <-callCtx.Done():
      return "", apperr.Wrap(apperr.KindTimeout, "model call deadline exceeded", callCtx.Err())
    }
  }

  if isRateLimited(lastErr) {
    return "", apperr.Wrap(apperr.KindRateLimitedExhausted, "rate limit retries exhausted", lastErr)
  }
  return "", apperr.Wrap(apperr.KindUpstreamError, "provider retries exhausted", lastErr)
}

// GenerateJSONArray runs the repair pipeline over the raw completion and
// parses the result as a list of objects. Partial output yields the
// validated prefix rather than an error.
func (c *client) GenerateJSONArray(ctx context.Context, prompt string, opts *CallOptions) ([]map[string]interface{}, error) {
  text, err := c.GenerateText(ctx, prompt, opts)
  if err != nil {
    return nil, err
  }

  repaired := RepairArray(text)
  var items []map[string]interface{}
  if uErr := json.Unmarshal([]byte(repaired), &items); uErr != nil {
    c.log.Warn("Model array output unparseable after repair", "error", uErr)
    return nil, apperr.Wrap(apperr.KindInvalidModelOutput, "model output is not a JSON array", uErr)
  }
  return items, nil
}

func (c *client) GenerateObject(ctx context.Context, prompt string, opts *CallOptions) (map[string]interface{}, error) {
  text, err := c.GenerateText(ctx, prompt, opts)
  if err != nil {
    return nil, err
  }

  repaired := RepairObject(text)
  var obj map[string]interface{}
  if uErr := json.Unmarshal([]byte(repaired), &obj); uErr != nil {
    c.log.Warn("Model object output unparseable after repair", "error", uErr)
    return nil, apperr.Wrap(apperr.KindInvalidModelOutput, "model output is not a JSON object", uErr)
  }
  return obj, nil
}
