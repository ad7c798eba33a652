package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

type limiter interface {
	Wait(context.Context) error
}

// Fetcher performs the GET-text operation shared by robots and sitemap loading.
type Fetcher struct {
	client    *http.Client
	limiter   limiter
	headers   Headers
	userAgent string
	logger    zerolog.Logger
}

type FetcherOptions struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, <= 0 means unlimited
	Headers   Headers
	UserAgent string
}

func NewFetcher(opts FetcherOptions, logger zerolog.Logger) *Fetcher {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		headers:   opts.Headers,
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Get returns the body of url decoded to UTF-8. Any non-2xx status is a *FetchError.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("error while rate limiting: %w", err)
	}

	req, err := f.buildRequest(ctx, url)
	if err != nil {
		return "", err
	}

	start := time.Now()
	res, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer res.Body.Close()

	f.logger.Debug().
		Str("url", url).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("GET")

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return "", &FetchError{URL: url, StatusCode: res.StatusCode}
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("could not read response body: %w", err)}
	}
	if len(raw) == 0 {
		return "", nil
	}

	body, err := charset.NewReader(bytes.NewReader(raw), res.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("could not decode response body: %w", err)}
	}

	text, err := io.ReadAll(body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("could not decode response body: %w", err)}
	}

	return string(text), nil
}

func (f *Fetcher) buildRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: could not create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	f.headers.apply(req)

	return req, nil
}
