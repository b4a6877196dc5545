package formatter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/lysyi3m/feedio/app/feed"
	"github.com/lysyi3m/feedio/app/standard"
)

type brokenSerializer struct{}

func (brokenSerializer) Name() string        { return "broken" }
func (brokenSerializer) ContentType() string { return "text/plain" }
func (brokenSerializer) WriteFeed(buf *bytes.Buffer, f *feed.Feed) error {
	return errors.New("cannot write")
}

func TestToDocument(t *testing.T) {
	f := feed.New()
	f.Title = "Test Feed"
	item := f.NewItem()
	item.Title = "Item"
	f.Add(item)

	doc, err := New(standard.NewRss(), nil).ToDocument(f)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if doc.Standard != "rss" {
		t.Errorf("Expected standard 'rss', got: %s", doc.Standard)
	}
	if !strings.HasPrefix(doc.ContentType, "application/rss+xml") {
		t.Errorf("Expected RSS content type, got: %s", doc.ContentType)
	}
	out := doc.String()
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("Document should start with an XML declaration")
	}
	if !strings.Contains(out, "<title>Item</title>") {
		t.Errorf("Expected item title in document\n%s", out)
	}
}

func TestToDocumentErrors(t *testing.T) {
	if _, err := New(standard.NewAtom(), nil).ToDocument(nil); err == nil {
		t.Error("Expected error for nil feed")
	}

	_, err := New(brokenSerializer{}, nil).ToDocument(feed.New())
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("Expected wrapped serializer error, got: %v", err)
	}
}
