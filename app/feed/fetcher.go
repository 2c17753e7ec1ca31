package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitedTransport wraps an http.RoundTripper with a shared outbound
// rate limit so the engine stays polite toward third-party servers.
type rateLimitedTransport struct {
	transport   http.RoundTripper
	rateLimiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.rateLimiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewHTTPClient creates an HTTP client with outbound rate limiting applied
// to every request.
func NewHTTPClient(requestsPerSecond float64, burstCapacity int) *http.Client {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstCapacity)

	return &http.Client{
		Transport: &rateLimitedTransport{
			transport:   http.DefaultTransport,
			rateLimiter: limiter,
		},
	}
}

type fetchResult struct {
	body         []byte
	status       int
	etag         string
	lastModified string
	notModified  bool
}

// fetch performs a single conditional GET against the feed URL. The stored
// validators from the previous successful fetch are sent when present; a
// 304 response is reported as notModified with an empty body.
func (p *Parser) fetch(ctx context.Context, feedURL string, hints FetchHints) (*fetchResult, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if hints.ETag != "" {
		req.Header.Set("If-None-Match", hints.ETag)
	}
	if hints.LastModified != "" {
		req.Header.Set("If-Modified-Since", hints.LastModified)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	result := &fetchResult{
		status:       resp.StatusCode,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}

	if resp.StatusCode == http.StatusNotModified {
		result.notModified = true
		return result, nil
	}

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	result.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read response body: %w", err)
	}

	return result, nil
}
