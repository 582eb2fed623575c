// pkg/utils/retryable_client.go
package utils

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"reddit-client/internal/obs"
)

// RetryableClient re-sends requests that failed in transit or came back with a
// 5xx status. A 429 is returned at once: quota belongs to the caller's rate
// limiter. When attempts run out the last response is returned as is so the
// caller can classify the status.
type RetryableClient struct {
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	logger     zerolog.Logger
}

type ClientOptions struct {
	ProxyURLs  []string
	MaxRetries int
	Timeout    time.Duration
	// Backoff is the pause before the first retry, doubled after each one.
	Backoff          time.Duration
	RandomUserAgents bool
	Logger           zerolog.Logger
	// Transport overrides the transport chosen from ProxyURLs.
	Transport http.RoundTripper
}

func NewRetryableClient(opts ClientOptions) (*RetryableClient, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	transport := opts.Transport
	if transport == nil {
		var validProxies []string
		for _, p := range opts.ProxyURLs {
			if p = strings.TrimSpace(p); p != "" {
				validProxies = append(validProxies, p)
			}
		}

		if len(validProxies) == 0 {
			transport = http.DefaultTransport
		} else {
			for i, p := range validProxies {
				opts.Logger.Info().Int("n", i+1).Str("proxy", obs.MaskURL(p)).Msg("proxy configured")
			}

			rotator, err := NewProxyRotator(validProxies)
			if err != nil {
				return nil, fmt.Errorf("failed to create proxy rotator: %w", err)
			}
			transport = NewTLSFingerprintingTransport(rotator, opts.RandomUserAgents)
		}
	}

	return &RetryableClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		logger:     opts.Logger,
	}, nil
}

// Hooks run around every attempt, retries included.
type Hooks struct {
	// Before gates the attempt; an error aborts the request.
	Before func(ctx context.Context) error
	// After sees every response that came back, whatever its status.
	After func(resp *http.Response)
}

// Do sends req and returns the response together with its fully read body.
// err is only set when no response was obtained.
func (c *RetryableClient) Do(req *http.Request) (*http.Response, []byte, error) {
	return c.DoWithHooks(req, Hooks{})
}

func (c *RetryableClient) DoWithHooks(req *http.Request, hooks Hooks) (*http.Response, []byte, error) {
	ctx := req.Context()

	var reqBody []byte
	if req.Body != nil {
		var err error
		reqBody, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("reading request body: %w", err)
		}
		req.Body.Close()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << uint(attempt-1)
			c.logger.Debug().Int("attempt", attempt+1).Dur("wait", wait).Str("url", req.URL.String()).Msg("retrying request")
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, nil, err
			}
		}

		if hooks.Before != nil {
			if err := hooks.Before(ctx); err != nil {
				return nil, nil, err
			}
		}

		if reqBody != nil {
			req.Body = io.NopCloser(bytes.NewReader(reqBody))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("request error")
			if ctx.Err() != nil {
				return nil, nil, err
			}
			continue
		}

		if hooks.After != nil {
			hooks.After(resp)
		}

		body, err := readBody(resp)
		if err != nil {
			lastErr = err
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("error reading response body")
			continue
		}

		if resp.StatusCode >= 500 && attempt < c.maxRetries-1 {
			c.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("retryable status")
			continue
		}

		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, body, nil
	}

	return nil, nil, fmt.Errorf("all %d attempts failed: %w", c.maxRetries, lastErr)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip response: %w", err)
		}
		defer gr.Close()
		reader = gr
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
