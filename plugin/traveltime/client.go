// Package traveltime is a client for the campus travel-time service, which
// estimates walking minutes between two building codes.
package traveltime

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/hrygo/scheduleterp/internal/profile"
)

// Config holds the travel-time client configuration.
type Config struct {
	// BaseURL is the service root, e.g. https://api.scheduleterp.com
	BaseURL string
	// Timeout is the HTTP timeout per request
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing requests; zero disables throttling
	RequestsPerSecond float64
}

// DefaultConfig returns the default travel-time client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           profile.DefaultTravelTimeBaseURL,
		Timeout:           profile.DefaultTravelTimeTimeout,
		RequestsPerSecond: profile.DefaultTravelTimeRPS,
	}
}

// ConfigFromProfile builds a client config from the server profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	config := DefaultConfig()
	if p.TravelTimeBaseURL != "" {
		config.BaseURL = p.TravelTimeBaseURL
	}
	if p.TravelTimeTimeout > 0 {
		config.Timeout = p.TravelTimeTimeout
	}
	if p.TravelTimeRPS > 0 {
		config.RequestsPerSecond = p.TravelTimeRPS
	}
	return config
}

// Client fetches travel times over HTTP.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new travel-time client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond > 0 {
		burst := int(math.Ceil(config.RequestsPerSecond * 2))
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: limiter,
	}
}

// response is the service's JSON body.
type response struct {
	Success  bool    `json:"success"`
	TimeMins float64 `json:"time_mins"`
}

// TravelTime returns the walking minutes from one building to another.
// ok is false when the service reports it has no estimate for the pair.
func (c *Client) TravelTime(ctx context.Context, fromBuilding, toBuilding string) (int, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, false, errors.Wrap(err, "rate limiter")
	}

	reqURL := fmt.Sprintf("%s/traveltime/%s/%s",
		strings.TrimRight(c.config.BaseURL, "/"),
		url.PathEscape(fromBuilding),
		url.PathEscape(toBuilding),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false, errors.Wrapf(err, "failed to fetch %s", reqURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false, errors.Errorf("unexpected status code %d when fetching %s", resp.StatusCode, reqURL)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, false, errors.Wrap(err, "failed to decode travel-time response")
	}
	if !body.Success {
		return 0, false, nil
	}
	return int(math.Floor(body.TimeMins)), true, nil
}
