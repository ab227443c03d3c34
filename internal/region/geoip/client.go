// Package geoip looks visitors up in an HTTP geolocation service.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"consentd/internal/platform/tracer"
	"consentd/pkg/platform/circuit"
	"consentd/pkg/platform/sentinel"
)

const maxResponseBytes = 64 << 10

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Location is the provider's answer. Region is the subdivision name.
type Location struct {
	CountryCode string `json:"country_code"`
	Region      string `json:"region"`
	CountryName string `json:"country_name"`
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Breaker    *circuit.Breaker
	Tracer     tracer.Tracer

	// OnCircuitChange is told when the breaker opens (true) or closes (false).
	OnCircuitChange func(open bool)
}

// Client calls GET {BaseURL}/{ip} and decodes a Location.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	breaker *circuit.Breaker
	tracer  tracer.Tracer
}

// NewClient creates a client. A nil breaker gets a default one.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  cfg.HTTPClient,
		breaker: cfg.Breaker,
		tracer:  cfg.Tracer,
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: cfg.Timeout}
	}
	if c.breaker == nil {
		c.breaker = circuit.New("geoip")
	}
	if notify := cfg.OnCircuitChange; notify != nil {
		c.breaker.OnStateChange(func(s circuit.State) { notify(s == circuit.StateOpen) })
	}
	if c.tracer == nil {
		c.tracer = tracer.NewNoop()
	}
	return c
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *circuit.Breaker {
	return c.breaker
}

// Lookup resolves ip. It fails fast with sentinel.ErrCircuitOpen while the
// provider is considered down.
func (c *Client) Lookup(ctx context.Context, ip string) (loc *Location, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanGeoIPLookup)
	defer func() { span.End(err) }()

	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		var lerr error
		loc, lerr = c.lookup(ctx, ip)
		return lerr
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (c *Client) lookup(ctx context.Context, ip string) (*Location, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geoip request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoip request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read geoip response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("geoip provider status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("geoip provider status %d", resp.StatusCode)
	}

	var loc Location
	if err := json.Unmarshal(body, &loc); err != nil {
		return nil, fmt.Errorf("decode geoip response: %w", err)
	}
	return &loc, nil
}
