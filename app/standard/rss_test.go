package standard

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/feedio/app/feed"
)

const rssData = `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <generator>hugo</generator>
    <image>
      <url>https://example.com/icon.png</url>
      <title>Test Feed</title>
      <link>https://example.com</link>
    </image>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <content:encoded><![CDATA[<p>Full content</p>]]></content:encoded>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
      <category>Technology</category>
      <dc:creator>Jane</dc:creator>
      <category domain="tags">Programming</category>
      <enclosure url="https://example.com/a.mp3" length="1024" type="audio/mpeg" />
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestRssCanHandle(t *testing.T) {
	s := NewRss()
	if !s.CanHandle([]byte(rssData)) {
		t.Error("Expected RSS document to be recognized")
	}
	if s.CanHandle([]byte(atomData)) {
		t.Error("Expected Atom document to be rejected")
	}
	if s.CanHandle([]byte("not a feed")) {
		t.Error("Expected garbage to be rejected")
	}
}

func TestRssParse(t *testing.T) {
	f := feed.New()
	if err := NewRss().Parse(strings.NewReader(rssData), f); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if f.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", f.Title)
	}
	if f.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", f.Link)
	}
	if f.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", f.Language)
	}
	if v, _ := f.GetValue("generator"); v != "hugo" {
		t.Errorf("Expected generator 'hugo', got: %s", v)
	}
	if !f.LastModified.IsZero() {
		t.Errorf("Expected no feed lastModified, got: %v", f.LastModified)
	}

	if len(f.Items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(f.Items))
	}

	item := f.Items[0]
	if item.PublicID != "item-1" {
		t.Errorf("Expected public id 'item-1', got: %s", item.PublicID)
	}
	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !item.LastModified.Equal(expected) {
		t.Errorf("Expected %v, got: %v", expected, item.LastModified)
	}

	var categories []string
	for el := range item.GetElementIterator("category") {
		categories = append(categories, el.Value())
	}
	if !slices.Equal(categories, []string{"Technology", "Programming"}) {
		t.Errorf("Expected [Technology Programming], got: %v", categories)
	}

	if v, ok := item.GetValue("dc:creator"); !ok || v != "Jane" {
		t.Errorf("Expected dc:creator 'Jane', got: %q", v)
	}
	if v, _ := item.GetValue("content:encoded"); v != "<p>Full content</p>" {
		t.Errorf("Expected content:encoded, got: %q", v)
	}
	count := 0
	for range item.GetElementIterator("content:encoded") {
		count++
	}
	if count != 1 {
		t.Errorf("Expected a single content:encoded element, got: %d", count)
	}

	if !item.HasElement("enclosure") {
		t.Fatal("Expected enclosure element")
	}
	for el := range item.GetElementIterator("enclosure") {
		if url, _ := el.Attribute("url"); url != "https://example.com/a.mp3" {
			t.Errorf("Expected enclosure url, got: %s", url)
		}
	}
}

func TestRssParseInvalid(t *testing.T) {
	f := feed.New()
	if err := NewRss().Parse(strings.NewReader("<rss><channel>"), f); err == nil {
		t.Error("Expected error for truncated document")
	}
}

func TestRssWriteFeed(t *testing.T) {
	f := feed.New()
	f.Title = "Test & Feed"
	f.Link = "https://example.com"
	f.LastModified = time.Date(2023, 7, 3, 11, 0, 0, 0, time.UTC)

	item := f.NewItem()
	item.Title = "Item 1"
	item.Link = "https://example.com/item1"
	item.PublicID = "https://example.com/item1"
	item.LastModified = time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	item.Set("category", "Go")
	item.Set("dc:creator", "Jane")
	item.AddElement(feed.NewElement("enclosure", "", map[string]string{"url": "https://example.com/a.mp3", "type": "audio/mpeg", "length": "10"}))
	item.Set("content:encoded", "<p>x</p>")
	f.Add(item)

	var buf bytes.Buffer
	if err := NewRss().WriteFeed(&buf, f); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	out := buf.String()

	expectations := []string{
		`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">`,
		`<title>Test &amp; Feed</title>`,
		`<lastBuildDate>Mon, 03 Jul 2023 11:00:00 +0000</lastBuildDate>`,
		`<guid isPermaLink="true">https://example.com/item1</guid>`,
		`<pubDate>Mon, 03 Jul 2023 10:00:00 +0000</pubDate>`,
		`<category>Go</category>`,
		`<dc:creator>Jane</dc:creator>`,
		`<enclosure length="10" type="audio/mpeg" url="https://example.com/a.mp3" />`,
		`<content:encoded><![CDATA[<p>x</p>]]></content:encoded>`,
	}
	for _, expected := range expectations {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected output to contain %s\n%s", expected, out)
		}
	}
}

func TestRssRoundTrip(t *testing.T) {
	s := NewRss()
	original := feed.New()
	if err := s.Parse(strings.NewReader(rssData), original); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var buf bytes.Buffer
	if err := s.WriteFeed(&buf, original); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	parsed := feed.New()
	if err := s.Parse(&buf, parsed); err != nil {
		t.Fatalf("Expected written document to parse, got: %v", err)
	}
	if len(parsed.Items) != len(original.Items) {
		t.Fatalf("Expected %d items, got: %d", len(original.Items), len(parsed.Items))
	}
	if parsed.Items[0].Title != original.Items[0].Title {
		t.Errorf("Expected title %q, got: %q", original.Items[0].Title, parsed.Items[0].Title)
	}
	if v, _ := parsed.Items[0].GetValue("dc:creator"); v != "Jane" {
		t.Errorf("Expected dc:creator to survive, got: %q", v)
	}
}
