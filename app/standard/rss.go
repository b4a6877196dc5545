package standard

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"time"

	"github.com/lysyi3m/feedio/app/feed"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

// Rss handles RSS 2.0 (and RSS 1.0/0.9x on the reading side).
type Rss struct{}

func NewRss() *Rss {
	return &Rss{}
}

func (s *Rss) Name() string {
	return "rss"
}

func (s *Rss) ContentType() string {
	return "application/rss+xml; charset=utf-8"
}

func (s *Rss) CanHandle(data []byte) bool {
	return gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeRSS
}

func (s *Rss) Parse(r io.Reader, target *feed.Feed) error {
	parser := &rss.Parser{}
	rf, err := parser.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to parse rss: %w", err)
	}

	target.Title = rf.Title
	target.Link = rf.Link
	target.PublicID = cmp.Or(target.PublicID, rf.Link)
	target.Description = rf.Description
	target.Language = rf.Language
	if rf.LastBuildDateParsed != nil {
		target.LastModified = *rf.LastBuildDateParsed
	} else if rf.PubDateParsed != nil {
		target.LastModified = *rf.PubDateParsed
	}

	for _, c := range rf.Categories {
		if c != nil {
			addValue(&target.Node, "category", c.Value, map[string]string{"domain": c.Domain})
		}
	}
	addValue(&target.Node, "generator", rf.Generator, nil)
	addValue(&target.Node, "copyright", rf.Copyright, nil)
	addValue(&target.Node, "managingEditor", rf.ManagingEditor, nil)
	addValue(&target.Node, "ttl", rf.TTL, nil)
	if rf.Image != nil {
		addValue(&target.Node, "image", rf.Image.URL, map[string]string{"title": rf.Image.Title, "link": rf.Image.Link})
	}
	addExtensions(&target.Node, rf.Extensions)

	for _, ri := range rf.Items {
		if ri != nil {
			target.Add(s.parseItem(ri))
		}
	}

	return nil
}

func (s *Rss) parseItem(ri *rss.Item) *feed.Item {
	item := feed.NewItem()
	item.Title = ri.Title
	item.Link = ri.Link
	item.Description = ri.Description
	item.Author = ri.Author
	if ri.GUID != nil {
		item.PublicID = ri.GUID.Value
	}
	if ri.PubDateParsed != nil {
		item.LastModified = *ri.PubDateParsed
	}

	for _, c := range ri.Categories {
		if c != nil {
			addValue(&item.Node, "category", c.Value, map[string]string{"domain": c.Domain})
		}
	}
	addValue(&item.Node, "comments", ri.Comments, nil)
	if ri.Enclosure != nil {
		addValue(&item.Node, "enclosure", "", map[string]string{
			"url":    ri.Enclosure.URL,
			"length": ri.Enclosure.Length,
			"type":   ri.Enclosure.Type,
		})
	}
	if ri.Source != nil {
		addValue(&item.Node, "source", ri.Source.Title, map[string]string{"url": ri.Source.URL})
	}
	addValue(&item.Node, "content:encoded", ri.Content, nil)
	// content:encoded is already carried by ri.Content.
	addExtensions(&item.Node, ri.Extensions, "content")

	return item
}

func (s *Rss) WriteFeed(buf *bytes.Buffer, f *feed.Feed) error {
	prefixes, err := usedPrefixes(f, s.tagFor)
	if err != nil {
		return err
	}

	buf.WriteString(`<rss version="2.0"`)
	writeNamespaces(buf, prefixes)
	buf.WriteString(">\n  <channel>\n")

	writeElement(buf, "title", f.Title, 4)
	writeElement(buf, "link", cmp.Or(f.Link, f.URL), 4)
	writeElement(buf, "description", cmp.Or(f.Description, f.Title), 4)
	writeElement(buf, "language", f.Language, 4)
	if !f.LastModified.IsZero() {
		writeElement(buf, "lastBuildDate", f.LastModified.Format(time.RFC1123Z), 4)
	}
	s.writeElements(buf, &f.Node, 4)

	for _, item := range f.Items {
		if item != nil {
			s.writeItem(buf, item)
		}
	}

	buf.WriteString("  </channel>\n</rss>\n")
	return nil
}

func (s *Rss) writeItem(buf *bytes.Buffer, item *feed.Item) {
	buf.WriteString("    <item>\n")

	if item.PublicID != "" {
		writeTag(buf, "guid", item.PublicID, map[string]string{"isPermaLink": fmt.Sprintf("%t", isURL(item.PublicID))}, 6)
	}
	writeElement(buf, "title", item.Title, 6)
	writeElement(buf, "link", item.Link, 6)
	writeElement(buf, "description", item.Description, 6)
	if !item.LastModified.IsZero() {
		writeElement(buf, "pubDate", item.LastModified.Format(time.RFC1123Z), 6)
	}
	writeElement(buf, "author", item.Author, 6)
	s.writeElements(buf, &item.Node, 6)

	buf.WriteString("    </item>\n")
}

// tagFor mirrors the cases of writeElements.
func (s *Rss) tagFor(name string) (string, bool) {
	switch name {
	case "category", "enclosure", "image":
		return name, false
	case "rights":
		return "copyright", false
	case "content", "content:encoded":
		return "content:encoded", false
	default:
		return name, true
	}
}

func (s *Rss) writeElements(buf *bytes.Buffer, n *feed.Node, indent int) {
	for el := range n.AllElements() {
		attrs := el.Attributes()
		switch el.Name() {
		case "category":
			writeTag(buf, "category", el.Value(), map[string]string{"domain": cmp.Or(attrs["domain"], attrs["scheme"])}, indent)
		case "enclosure":
			writeTag(buf, "enclosure", "", pick(attrs, "url", "length", "type"), indent)
		case "image":
			writeIndent(buf, indent)
			buf.WriteString("<image>\n")
			writeElement(buf, "url", el.Value(), indent+2)
			writeElement(buf, "title", attrs["title"], indent+2)
			writeElement(buf, "link", attrs["link"], indent+2)
			writeIndent(buf, indent)
			buf.WriteString("</image>\n")
		case "rights":
			writeElement(buf, "copyright", el.Value(), indent)
		case "content", "content:encoded":
			writeCDATA(buf, "content:encoded", el.Value(), indent)
		default:
			writeTag(buf, el.Name(), el.Value(), attrs, indent)
		}
	}
}
