package tasks

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/feedio/app/database"
	"github.com/lysyi3m/feedio/app/feedio"
	"github.com/lysyi3m/feedio/app/reader"
	"github.com/lysyi3m/feedio/app/source"
)

const feedURL = "http://example/feed.xml"

const rssDocument = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Stub Feed</title>
    <link>https://example.com</link>
    <description>Stub</description>
    <item>
      <title>One</title>
      <link>https://example.com/1</link>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Three</title>
      <link>https://example.com/3</link>
      <pubDate>Wed, 05 Jul 2023 08:30:00 GMT</pubDate>
    </item>
    <item>
      <title>Two</title>
      <link>https://example.com/2</link>
      <pubDate>Tue, 04 Jul 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Article One</title></head>
<body>
	<nav>Navigation</nav>
	<article>
		<h1>Article One</h1>
		<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
		<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
		<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
	</article>
	<footer>Copyright 2024</footer>
</body>
</html>`

// stubClient serves fixed bodies by URL. With honorConditional set, any
// request carrying If-Modified-Since gets a 304.
type stubClient struct {
	mu               sync.Mutex
	pages            map[string]string
	honorConditional bool
	requests         []http.Header
}

func (c *stubClient) Fetch(ctx context.Context, url string, header http.Header) (*reader.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if url == feedURL {
		c.requests = append(c.requests, header.Clone())
		if c.honorConditional && header.Get("If-Modified-Since") != "" {
			return &reader.Response{StatusCode: http.StatusNotModified}, nil
		}
	}

	body, ok := c.pages[url]
	if !ok {
		return nil, errors.New("HTTP error: 404 Not Found")
	}
	return &reader.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

func newTestPipeline(t *testing.T, client *stubClient) *Pipeline {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return &Pipeline{
		Feeds:     feedio.New(client, nil),
		Client:    client,
		Filterer:  source.NewFilterer(),
		Extractor: source.NewContentExtractor(nil),
		Sources:   database.NewSourceRepository(db),
		Documents: database.NewDocumentRepository(db),
	}
}

func newConfig(format string) *source.Config {
	return &source.Config{
		Name:   "news",
		URL:    feedURL,
		Format: format,
		Settings: source.ConfigSettings{
			Enabled:         true,
			RefreshInterval: 3600,
			MaxItems:        100,
			Timeout:         5,
		},
	}
}

func TestProcessSourceTaskStoresDocument(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{pages: map[string]string{feedURL: rssDocument}, honorConditional: true}
	pipeline := newTestPipeline(t, client)

	config := newConfig("atom")
	config.Settings.MaxItems = 1
	config.Filters = []source.ConfigFilter{{Field: "title", Excludes: []string{"one"}}}

	if err := NewSyncSourceTask(config, pipeline.Sources).Execute(ctx); err != nil {
		t.Fatalf("Expected no error syncing, got: %v", err)
	}
	if err := NewProcessSourceTask(config, pipeline).Execute(ctx); err != nil {
		t.Fatalf("Expected no error processing, got: %v", err)
	}

	doc, err := pipeline.Documents.GetDocument(ctx, "news")
	if err != nil || doc == nil {
		t.Fatalf("Expected stored document, got: %v, %v", doc, err)
	}
	if !strings.HasPrefix(doc.ContentType, "application/atom+xml") {
		t.Errorf("Expected atom content type, got: %s", doc.ContentType)
	}
	body := string(doc.Body)
	if !strings.Contains(body, "<title>Three</title>") {
		t.Errorf("Expected first unfiltered item kept\n%s", body)
	}
	if strings.Contains(body, "<title>One</title>") || strings.Contains(body, "<title>Two</title>") {
		t.Errorf("Expected filtered and capped items dropped\n%s", body)
	}
	if doc.ItemCount != 1 {
		t.Errorf("Expected item count 1, got: %d", doc.ItemCount)
	}

	state, _ := pipeline.Sources.GetSource(ctx, "news")
	if state.Title != "Stub Feed" {
		t.Errorf("Expected source title 'Stub Feed', got: %s", state.Title)
	}
	expected := time.Date(2023, 7, 5, 8, 30, 0, 0, time.UTC)
	if !state.LastModified.Equal(expected) {
		t.Errorf("Expected last modified %v, got: %v", expected, state.LastModified)
	}
	if state.IsDue(time.Now()) {
		t.Error("Expected source rescheduled into the future")
	}
}

func TestProcessSourceTaskNotModified(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{pages: map[string]string{feedURL: rssDocument}, honorConditional: true}
	pipeline := newTestPipeline(t, client)
	config := newConfig("rss")

	NewSyncSourceTask(config, pipeline.Sources).Execute(ctx)
	if err := NewProcessSourceTask(config, pipeline).Execute(ctx); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	first, _ := pipeline.Documents.GetDocument(ctx, "news")

	pipeline.Sources.ScheduleNow(ctx, "news")
	if err := NewProcessSourceTask(config, pipeline).Execute(ctx); err != nil {
		t.Fatalf("Expected no error on not modified, got: %v", err)
	}

	if len(client.requests) != 2 {
		t.Fatalf("Expected 2 feed requests, got: %d", len(client.requests))
	}
	if client.requests[0].Get("If-Modified-Since") != "" {
		t.Error("Expected first read to be unconditional")
	}
	if got := client.requests[1].Get("If-Modified-Since"); got != "Wed, 05 Jul 2023 08:30:00 GMT" {
		t.Errorf("Expected conditional read since last modification, got: %q", got)
	}

	second, _ := pipeline.Documents.GetDocument(ctx, "news")
	if string(second.Body) != string(first.Body) {
		t.Error("Expected stored document untouched when not modified")
	}
	state, _ := pipeline.Sources.GetSource(ctx, "news")
	if state.IsDue(time.Now()) {
		t.Error("Expected source rescheduled after not modified")
	}
}

func TestProcessSourceTaskExtractsContent(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{pages: map[string]string{
		feedURL:                 rssDocument,
		"https://example.com/1": articlePage,
	}}
	pipeline := newTestPipeline(t, client)
	config := newConfig("rss")
	config.Settings.ExtractContent = true

	NewSyncSourceTask(config, pipeline.Sources).Execute(ctx)
	if err := NewProcessSourceTask(config, pipeline).Execute(ctx); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	doc, _ := pipeline.Documents.GetDocument(ctx, "news")
	body := string(doc.Body)
	if strings.Count(body, "<content:encoded><![CDATA[") != 1 {
		t.Errorf("Expected content for the one reachable page\n%s", body)
	}
	if !strings.Contains(body, "main content of the article") {
		t.Errorf("Expected extracted article text\n%s", body)
	}
	if doc.ItemCount != 3 {
		t.Errorf("Expected all items kept despite failed pages, got: %d", doc.ItemCount)
	}
}

func TestProcessSourceTaskRequiresRegistration(t *testing.T) {
	client := &stubClient{pages: map[string]string{feedURL: rssDocument}}
	pipeline := newTestPipeline(t, client)

	err := NewProcessSourceTask(newConfig("rss"), pipeline).Execute(context.Background())
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Errorf("Expected not registered error, got: %v", err)
	}
	if len(client.requests) != 0 {
		t.Error("Expected no fetch for an unregistered source")
	}
}

func TestProcessSourceTaskDisabled(t *testing.T) {
	client := &stubClient{pages: map[string]string{feedURL: rssDocument}}
	pipeline := newTestPipeline(t, client)
	config := newConfig("rss")
	config.Settings.Enabled = false

	if err := NewProcessSourceTask(config, pipeline).Execute(context.Background()); err != nil {
		t.Errorf("Expected no error for disabled source, got: %v", err)
	}
	if len(client.requests) != 0 {
		t.Error("Expected no fetch for a disabled source")
	}
}

func TestProcessSourceTaskCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewProcessSourceTask(newConfig("rss"), &Pipeline{}).Execute(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestNewTask(t *testing.T) {
	a := NewTask(TaskTypeSyncSource, "news")
	b := NewTask(TaskTypeSyncSource, "news")

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected unique task IDs, got: %q and %q", a.ID, b.ID)
	}
	if a.MaxRetries != DefaultMaxRetries || !a.CanRetry() {
		t.Error("Expected a fresh task to be retryable")
	}
	if a.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	for range DefaultMaxRetries {
		a.IncrementRetryCount()
	}
	if a.CanRetry() {
		t.Error("Expected no retry after max retries")
	}
}

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
