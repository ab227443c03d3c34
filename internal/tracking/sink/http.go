package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"consentd/internal/tracking"
	"consentd/pkg/platform/sentinel"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPConfig configures an HTTP collector sink.
type HTTPConfig struct {
	Endpoint   string
	HealthURL  string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// HTTP posts each event as JSON to an analytics collector.
type HTTP struct {
	endpoint  string
	healthURL string
	apiKey    string
	client    HTTPDoer
}

func NewHTTP(cfg HTTPConfig) *HTTP {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	h := &HTTP{
		endpoint:  cfg.Endpoint,
		healthURL: cfg.HealthURL,
		apiKey:    cfg.APIKey,
		client:    cfg.HTTPClient,
	}
	if h.client == nil {
		h.client = &http.Client{Timeout: cfg.Timeout}
	}
	return h
}

// Start checks the collector's health endpoint. Without one configured the
// collector is assumed ready.
func (h *HTTP) Start(ctx context.Context) error {
	if h.healthURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.healthURL, nil)
	if err != nil {
		return fmt.Errorf("build collector health request: %w", err)
	}
	return h.do(req)
}

func (h *HTTP) Push(ctx context.Context, event tracking.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req)
}

func (h *HTTP) do(req *http.Request) error {
	if h.apiKey != "" {
		req.Header.Set("X-API-Key", h.apiKey)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("collector request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("collector status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector status %d", resp.StatusCode)
	}
	return nil
}
