package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client fetches raw documents. Conditional headers such as If-Modified-Since
// are passed through as given.
type Client interface {
	Fetch(ctx context.Context, url string, header http.Header) (*Response, error)
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) NotModified() bool {
	return r.StatusCode == http.StatusNotModified
}

const (
	defaultMaxRetries  = 3
	defaultMaxBodySize = 10 << 20
)

// ErrBodyTooLarge is returned when a response body exceeds the client limit.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPClient is the net/http Client. Transport errors and 5xx responses are
// retried with exponential backoff.
type HTTPClient struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	maxBody    int64
	logger     *slog.Logger
}

func NewHTTPClient(timeout time.Duration, userAgent string, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		client:     &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxRetries: defaultMaxRetries,
		maxBody:    defaultMaxBodySize,
		logger:     logger,
	}
}

func (c *HTTPClient) Fetch(ctx context.Context, url string, header http.Header) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			c.logger.Debug("Retrying fetch", "url", url, "attempt", attempt+1, "delay", backoff.String(), "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.do(ctx, url, header)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, ErrBodyTooLarge) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotModified {
			return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return resp, nil
	}

	return nil, fmt.Errorf("failed to fetch %s: %w", url, lastErr)
}

func (c *HTTPClient) do(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, c.maxBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
