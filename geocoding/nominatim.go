package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "eventapi/1.0"
	DefaultTimeout   = 5 * time.Second
	// OSM usage policy: at most one request per second.
	DefaultRateLimit = rate.Limit(1.0)
	MaxRetries       = 2
	RetryBaseDelay   = 1 * time.Second

	maxRetryAfter    = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// SearchResult is one entry of a Nominatim search response (format=jsonv2).
type SearchResult struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	retryDelay time.Duration
}

type Option func(*NominatimClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *NominatimClient) { c.httpClient = client }
}

func WithRateLimit(rps float64) Option {
	return func(c *NominatimClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *NominatimClient) { c.retryDelay = d }
}

// NewNominatimClient builds a client for baseURL. email goes into the
// User-Agent as the OSM policy asks.
func NewNominatimClient(baseURL, email string, opts ...Option) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ua := DefaultUserAgent
	if email != "" {
		ua = fmt.Sprintf("%s (%s)", DefaultUserAgent, email)
	}
	c := &NominatimClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
		userAgent:  ua,
		limiter:    rate.NewLimiter(DefaultRateLimit, 1),
		retryDelay: RetryBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search performs forward geocoding and returns at most one result.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	var results []SearchResult
	if err := c.get(ctx, c.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, fmt.Errorf("search geocoding: %w", err)
	}
	return results, nil
}

// upstreamError is a non-200 answer from Nominatim.
type upstreamError struct {
	Status     int
	RetryAfter time.Duration
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("nominatim answered %d", e.Status)
}

// temporary: throttling and server faults may clear up; anything else is our request.
func (e *upstreamError) temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// get fetches requestURL into out, retrying transport failures, 429 and 5xx
// up to MaxRetries times.
func (c *NominatimClient) get(ctx context.Context, requestURL string, out any) error {
	var err error
	for attempt := 0; ; attempt++ {
		var body []byte
		if body, err = c.fetch(ctx, requestURL); err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var ue *upstreamError
		if errors.As(err, &ue) && !ue.temporary() {
			return err
		}
		if attempt == MaxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}
		if err := sleep(ctx, c.backoff(attempt, err)); err != nil {
			return err
		}
	}
}

// backoff doubles retryDelay per attempt, stretched to the server's
// Retry-After when that asks for longer.
func (c *NominatimClient) backoff(attempt int, err error) time.Duration {
	d := c.retryDelay << attempt
	var ue *upstreamError
	if errors.As(err, &ue) && ue.RetryAfter > d {
		d = min(ue.RetryAfter, maxRetryAfter)
	}
	return d
}

// fetch does a single rate-limited GET and returns the body of a 200.
func (c *NominatimClient) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &upstreamError{Status: resp.StatusCode, RetryAfter: retryAfter(resp.Header)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// retryAfter reads a Retry-After given in seconds; HTTP dates are ignored.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
