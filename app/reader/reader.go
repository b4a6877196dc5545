package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/feedio/app/feed"
	"github.com/lysyi3m/feedio/app/standard"
)

var ErrUnsupportedFormat = errors.New("unsupported feed format")

// Dispatcher lists the standards a document is matched against, in order.
type Dispatcher interface {
	Standards() []standard.Standard
}

// Result is the outcome of a read. Modified is false only when the server
// answered a conditional request with 304, in which case Feed is returned as
// it was passed in.
type Result struct {
	Feed          *feed.Feed
	URL           string
	Standard      string
	Modified      bool
	ModifiedSince time.Time
	Date          time.Time
}

type Reader struct {
	client     Client
	dispatcher Dispatcher
	logger     *slog.Logger
}

func New(client Client, dispatcher Dispatcher, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Read fetches url and parses it into f. A non-zero modifiedSince turns the
// fetch into a conditional request.
func (r *Reader) Read(ctx context.Context, url string, f *feed.Feed, modifiedSince time.Time) (*Result, error) {
	header := make(http.Header)
	if !modifiedSince.IsZero() {
		header.Set("If-Modified-Since", modifiedSince.UTC().Format(http.TimeFormat))
	}

	resp, err := r.client.Fetch(ctx, url, header)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Feed:          f,
		URL:           url,
		ModifiedSince: modifiedSince,
		Date:          lastModifiedHeader(resp.Header),
	}

	if resp.NotModified() {
		r.logger.Debug("Feed not modified", "url", url, "modified_since", modifiedSince)
		return result, nil
	}

	name, err := r.Parse(resp.Body, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if f.URL == "" {
		f.URL = url
	}

	result.Standard = name
	result.Modified = true
	return result, nil
}

// Parse dispatches data to the first standard able to handle it and returns
// that standard's name.
func (r *Reader) Parse(data []byte, f *feed.Feed) (string, error) {
	for _, s := range r.dispatcher.Standards() {
		if !s.CanHandle(data) {
			continue
		}
		if err := s.Parse(bytes.NewReader(data), f); err != nil {
			return "", err
		}
		r.logger.Debug("Document parsed", "standard", s.Name(), "items", len(f.Items))
		return s.Name(), nil
	}
	return "", ErrUnsupportedFormat
}

func lastModifiedHeader(header http.Header) time.Time {
	value := header.Get("Last-Modified")
	if value == "" {
		return time.Time{}
	}
	t, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}
	}
	return t
}
