// Package serpapi implements the upstream flight-search collaborator: a
// client for the SerpApi google_flights engine. It returns the raw decoded
// payload; filtering and ranking happen downstream.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/Domenick1991/flightagent/internal/domain"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"
	engineName     = "google_flights"

	// tripOneWay is the google_flights "type" value for one-way searches.
	tripOneWay = "2"
)

// ErrNoResults is returned when the provider answered but the payload carries
// no flight groupings. Callers treat this the same as a provider error: no
// payload reaches the ranking engine.
var ErrNoResults = errors.New("serpapi: no flights in response")

type Client struct {
	baseURL  string
	apiKey   string
	currency string
	language string
	hc       *http.Client
	logf     func(format string, args ...any)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithCurrency(currency string) Option {
	return func(c *Client) { c.currency = currency }
}

// WithLanguage sets the "hl" localization parameter.
func WithLanguage(language string) Option {
	return func(c *Client) { c.language = language }
}

func WithLogf(logf func(format string, args ...any)) Option {
	return func(c *Client) { c.logf = logf }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		apiKey:   apiKey,
		currency: "INR",
		language: "en",
		hc:       &http.Client{Timeout: 30 * time.Second},
		logf:     log.Printf,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search runs a one-way flight search and returns the raw payload as a
// parsed JSON structure.
func (c *Client) Search(ctx context.Context, q domain.SearchQuery) (map[string]any, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}

	params := u.Query()
	params.Set("engine", engineName)
	params.Set("departure_id", q.Origin)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.Date)
	params.Set("currency", c.currency)
	params.Set("hl", c.language)
	params.Set("type", tripOneWay)
	params.Set("api_key", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	c.logf("serpapi %s %s->%s %s status=%d took=%s", engineName, q.Origin, q.Destination, q.Date, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("serpapi: unexpected status %s", resp.Status)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("serpapi decode: %w", err)
	}

	if msg, ok := payload["error"].(string); ok && msg != "" {
		return nil, fmt.Errorf("serpapi: %s", msg)
	}

	if _, ok := payload["best_flights"]; !ok {
		if _, ok := payload["other_flights"]; !ok {
			return nil, ErrNoResults
		}
	}

	return payload, nil
}
