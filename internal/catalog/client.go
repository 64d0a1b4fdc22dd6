package catalog

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

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"mangaproxy/pkg/utils"
)

// Client performs outbound calls to the third-party catalog service.
// It owns the request timeout, the outbound rate limit, bearer
// credential refresh and the retry policy. Safe for concurrent use;
// the only mutable state is the cached access token.
type Client struct {
	base    string
	authURL string

	clientID     string
	clientSecret string

	http    *http.Client
	limiter *rate.Limiter
	retry   RetryPolicy
	log     zerolog.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(cfg utils.UpstreamConfig, log zerolog.Logger) *Client {
	retry := DefaultRetryPolicy()
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryBaseDelay > 0 {
		retry.BaseDelay = cfg.RetryBaseDelay
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 4
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 8
	}

	return &Client{
		base:         strings.TrimRight(cfg.BaseURL, "/"),
		authURL:      cfg.AuthURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		retry:        retry,
		log:          log.With().Str("component", "upstream").Logger(),
	}
}

// Get fetches path from upstream and returns the raw body. Transient
// failures (timeout, connection reset, 5xx) are retried per the retry
// policy before surfacing ErrUpstreamUnavailable. A 4xx fails
// immediately as a RejectedError.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			d := c.retry.Delay(attempt - 1)
			c.log.Warn().Str("url", u).Int("attempt", attempt).Dur("backoff", d).
				Err(lastErr).Msg("retrying upstream request")
			if err := c.retry.sleep(ctx, d); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}

		body, err := c.doOnce(ctx, u)
		if err == nil {
			return body, nil
		}

		var rejected *RejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.clientID != "" {
		token, err := c.bearer(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &RejectedError{Status: resp.StatusCode, Body: string(body)}
	default:
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// bearer returns a live access token, exchanging the client
// credentials when none is cached or the cached one is about to expire.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty token")
	}

	c.token = tr.AccessToken
	// refresh a little early so in-flight requests never carry an expired token
	c.tokenExp = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - 30*time.Second)
	return c.token, nil
}
