package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/yungbote/mindmentor-backend/internal/logger"
)

type GeminiClient interface {
  GenerateContent(ctx context.Context, model string, prompt string) (string, error)
}

type geminiClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  httpClient *http.Client

  maxRetries  int
  temperature float64
  maxTokens   int
}

func NewGeminiClient(log *logger.Logger) (GeminiClient, error) {
  apiKey := os.Getenv("GEMINI_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing GEMINI_API_KEY")
  }

  baseURL := os.Getenv("GEMINI_BASE_URL")
  if baseURL == "" {
    baseURL = "https://generativelanguage.googleapis.com"
  }

  timeoutSec := 120
  if v := os.Getenv("GEMINI_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  maxRetries := 3
  if v := os.Getenv("GEMINI_MAX_RETRIES"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
      maxRetries = parsed
    }
  }

  return &geminiClient{
    log:         log.With("service", "GeminiClient"),
    baseURL:     strings.TrimRight(baseURL, "/"),
    apiKey:      apiKey,
    httpClient:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    maxRetries:  maxRetries,
    temperature: 0.7,
    maxTokens:   4096,
  }, nil
}

type geminiHTTPError struct {
  StatusCode int
  Body       string
}

func (e *geminiHTTPError) Error() string {
  return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
  if code == 408 || code == 429 {
    return true
  }
  if code >= 500 && code <= 599 {
    return true
  }
  return false
}

func isRetryableErr(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
    return true
  }
  var netErr net.Error
  if errors.As(err, &netErr) {
    if netErr.Timeout() {
      return true
    }
  }
  var httpErr *geminiHTTPError
  if errors.As(err, &httpErr) {
    return isRetryableHTTP(httpErr.StatusCode)
  }
  return false
}

// +/- 20%
func jitterSleep(base time.Duration) time.Duration {
  if base <= 0 {
    return 0
  }
  j := 0.2
  delta := base.Seconds() * j
  low := base.Seconds() - delta
  high := base.Seconds() + delta
  if low < 0 {
    low = 0
  }
  v := low + rand.Float64()*(high-low)
  return time.Duration(v * float64(time.Second))
}

type geminiRequest struct {
  Contents []geminiContent `json:"contents"`
  Config   *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
  Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
  Text string `json:"text"`
}

type geminiGenCfg struct {
  Temperature     float64 `json:"temperature"`
  MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
  Candidates []struct {
    Content struct {
      Parts []struct {
        Text string `json:"text"`
      } `json:"parts"`
    } `json:"content"`
  } `json:"candidates"`
}

func (c *geminiClient) doOnce(ctx context.Context, model string, body geminiRequest) ([]byte, error) {
  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(body); err != nil {
    return nil, err
  }

  path := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
  if err != nil {
    return nil, err
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("x-goog-api-key", c.apiKey)

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return raw, &geminiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return raw, nil
}

// GenerateContent calls the model with bounded retries and exponential
// backoff; transient failures (timeouts, 408/429/5xx) retry, anything else
// surfaces immediately. The terminal error keeps the last cause.
func (c *geminiClient) GenerateContent(ctx context.Context, model string, prompt string) (string, error) {
  body := geminiRequest{
    Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
    Config: &geminiGenCfg{
      Temperature:     c.temperature,
      MaxOutputTokens: c.maxTokens,
    },
  }

  backoff := 1 * time.Second
  var lastErr error

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return "", ctx.Err()
    }

    raw, err := c.doOnce(ctx, model, body)
    if err == nil {
      var parsed geminiResponse
      if uErr := json.Unmarshal(raw, &parsed); uErr != nil {
        return "", fmt.Errorf("gemini decode error: %w; raw=%s", uErr, string(raw))
      }
      text := extractText(parsed)
      if text == "" {
        return "", fmt.Errorf("empty response from model %s", model)
      }
      return text, nil
    }

    lastErr = err
    if !isRetryableErr(err) {
      return "", err
    }
    if attempt == c.maxRetries {
      break
    }

    sleep := jitterSleep(backoff)
    c.log.Warn("Gemini call failed, retrying", "model", model, "attempt", attempt+1, "backoff", sleep.String(), "error", err)
    select {
    case <-ctx.Done():
      return "", ctx.Err()
    case <-time.After(sleep):
    }
    backoff *= 2
    if backoff > 10*time.Second {
      backoff = 10 * time.Second
    }
  }

  return "", fmt.Errorf("gemini call failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func extractText(resp geminiResponse) string {
  var sb strings.Builder
  for _, cand := range resp.Candidates {
    for _, part := range cand.Content.Parts {
      sb.WriteString(part.Text)
    }
    break
  }
  return strings.TrimSpace(sb.String())
}
