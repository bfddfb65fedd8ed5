package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"quaver/internal/metadata"
)

const (
	// DefaultBaseURL is the public MusicBrainz API root.
	DefaultBaseURL = "https://musicbrainz.org/ws/2"

	defaultHTTPTimeout = 30 * time.Second

	// The public API allows one request per second per client.
	rateLimitInterval = time.Second

	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 2 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
)

// Lookup defines the MusicBrainz operations used during metadata derivation.
type Lookup interface {
	GetRelease(ctx context.Context, releaseID string) (*metadata.AlbumRecord, error)
	GetReleaseByDiscID(ctx context.Context, discID string) (*metadata.AlbumRecord, error)
	GetRecording(ctx context.Context, recordingID string) (*metadata.SongRecord, error)
}

// Client talks to the MusicBrainz web service. All requests share a single
// rate limiter so concurrent lookups stay within the service's limit.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client

	mu           sync.Mutex
	lastRequest  time.Time
	rateInterval time.Duration

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

var _ Lookup = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithRateLimitInterval overrides the spacing between requests. Zero
// disables the limiter, which only makes sense against a local server.
func WithRateLimitInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.rateInterval = interval
	}
}

// New creates a MusicBrainz client. The service rejects requests without an
// identifying user agent, so one is required.
func New(baseURL, userAgent string, timeout time.Duration, opts ...Option) (*Client, error) {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		userAgent:        userAgent,
		httpClient:       &http.Client{Timeout: timeout},
		rateInterval:     rateLimitInterval,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetRelease fetches a release with its media, tracks, and artist credits.
func (c *Client) GetRelease(ctx context.Context, releaseID string) (*metadata.AlbumRecord, error) {
	releaseID = strings.TrimSpace(releaseID)
	if releaseID == "" {
		return nil, errors.New("release id must not be empty")
	}

	params := url.Values{}
	params.Set("inc", "recordings+artist-credits+release-groups")

	var payload releaseResponse
	if err := c.get(ctx, "/release/"+url.PathEscape(releaseID), params, &payload); err != nil {
		return nil, fmt.Errorf("release %s: %w", releaseID, err)
	}
	return albumFromRelease(payload), nil
}

// GetReleaseByDiscID resolves a disc ID to a release. When the disc appears
// on several releases the first one wins.
func (c *Client) GetReleaseByDiscID(ctx context.Context, discID string) (*metadata.AlbumRecord, error) {
	discID = strings.TrimSpace(discID)
	if discID == "" {
		return nil, errors.New("disc id must not be empty")
	}

	params := url.Values{}
	params.Set("inc", "recordings+artist-credits+release-groups")

	var payload discResponse
	if err := c.get(ctx, "/discid/"+url.PathEscape(discID), params, &payload); err != nil {
		return nil, fmt.Errorf("disc id %s: %w", discID, err)
	}
	if len(payload.Releases) == 0 {
		return nil, fmt.Errorf("disc id %s: no matching release", discID)
	}
	return albumFromRelease(payload.Releases[0]), nil
}

// GetRecording fetches a single recording with its artist credits.
func (c *Client) GetRecording(ctx context.Context, recordingID string) (*metadata.SongRecord, error) {
	recordingID = strings.TrimSpace(recordingID)
	if recordingID == "" {
		return nil, errors.New("recording id must not be empty")
	}

	params := url.Values{}
	params.Set("inc", "artist-credits")

	var payload recordingResponse
	if err := c.get(ctx, "/recording/"+url.PathEscape(recordingID), params, &payload); err != nil {
		return nil, fmt.Errorf("recording %s: %w", recordingID, err)
	}
	return &metadata.SongRecord{
		Title:   payload.Title,
		Artists: creditedArtists(payload.ArtistCredit),
	}, nil
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("musicbrainz: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// get performs a rate-limited GET with retries and decodes the JSON payload.
func (c *Client) get(ctx context.Context, path string, params url.Values, payload any) error {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.waitForRateLimit(ctx); err != nil {
			return err
		}
		err := c.getOnce(ctx, path, params, payload)
		if err == nil {
			return nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, path string, params url.Values, payload any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("fmt", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// waitForRateLimit spaces requests out. The lock is held for the wait so
// concurrent callers queue up behind it.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	if c.rateInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.rateInterval {
		select {
		case <-time.After(c.rateInterval - elapsed):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

// retryDelay decides whether err warrants another attempt. The service
// answers 503 when the rate limit is exceeded, so server errors and 429 are
// retried while other client errors are not.
func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts {
		return 0, false
	}
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	// Transport failures are worth another try; decode errors are not.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.retryMaxDelay/2 {
			return c.retryMaxDelay
		}
		delay *= 2
	}
	if delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
