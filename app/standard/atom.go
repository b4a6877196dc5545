package standard

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"time"

	"github.com/lysyi3m/feedio/app/feed"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

// Atom handles Atom 1.0 documents.
type Atom struct{}

func NewAtom() *Atom {
	return &Atom{}
}

func (s *Atom) Name() string {
	return "atom"
}

func (s *Atom) ContentType() string {
	return "application/atom+xml; charset=utf-8"
}

func (s *Atom) CanHandle(data []byte) bool {
	return gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeAtom
}

func (s *Atom) Parse(r io.Reader, target *feed.Feed) error {
	parser := &atom.Parser{}
	af, err := parser.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to parse atom: %w", err)
	}

	target.Title = af.Title
	target.PublicID = af.ID
	target.Description = af.Subtitle
	target.Language = af.Language
	if af.UpdatedParsed != nil {
		target.LastModified = *af.UpdatedParsed
	}

	for _, p := range af.Authors {
		if p != nil {
			addValue(&target.Node, "author", p.Name, map[string]string{"email": p.Email, "uri": p.URI})
		}
	}
	s.parseLinks(&target.Node, af.Links)
	s.parseCategories(&target.Node, af.Categories)
	if af.Generator != nil {
		addValue(&target.Node, "generator", af.Generator.Value, map[string]string{"uri": af.Generator.URI, "version": af.Generator.Version})
	}
	addValue(&target.Node, "rights", af.Rights, nil)
	addValue(&target.Node, "icon", af.Icon, nil)
	addValue(&target.Node, "logo", af.Logo, nil)
	addExtensions(&target.Node, af.Extensions)

	for _, entry := range af.Entries {
		if entry != nil {
			target.Add(s.parseEntry(entry))
		}
	}

	return nil
}

func (s *Atom) parseEntry(entry *atom.Entry) *feed.Item {
	item := feed.NewItem()
	item.Title = entry.Title
	item.PublicID = entry.ID
	item.Description = entry.Summary
	if entry.UpdatedParsed != nil {
		item.LastModified = *entry.UpdatedParsed
	} else if entry.PublishedParsed != nil {
		item.LastModified = *entry.PublishedParsed
	}

	if entry.Content != nil && entry.Content.Value != "" {
		if item.Description == "" {
			item.Description = entry.Content.Value
		} else {
			addValue(&item.Node, "content", entry.Content.Value, map[string]string{"type": entry.Content.Type})
		}
	}

	for i, p := range entry.Authors {
		if p == nil {
			continue
		}
		if i == 0 {
			item.Author = p.Name
			continue
		}
		addValue(&item.Node, "author", p.Name, map[string]string{"email": p.Email, "uri": p.URI})
	}
	if entry.PublishedParsed != nil {
		addValue(&item.Node, "published", entry.PublishedParsed.Format(time.RFC3339), nil)
	}
	s.parseLinks(&item.Node, entry.Links)
	s.parseCategories(&item.Node, entry.Categories)
	addValue(&item.Node, "rights", entry.Rights, nil)
	addExtensions(&item.Node, entry.Extensions)

	return item
}

// parseLinks sets the node link from the first alternate link. Enclosures
// become enclosure elements and every other link an atom:link element.
func (s *Atom) parseLinks(n *feed.Node, links []*atom.Link) {
	for _, l := range links {
		if l == nil {
			continue
		}
		switch l.Rel {
		case "", "alternate":
			if n.Link == "" {
				n.Link = l.Href
				continue
			}
		case "enclosure":
			addValue(n, "enclosure", "", map[string]string{"url": l.Href, "type": l.Type, "length": l.Length})
			continue
		}
		addValue(n, "atom:link", "", map[string]string{"href": l.Href, "rel": l.Rel, "type": l.Type, "title": l.Title})
	}
}

func (s *Atom) parseCategories(n *feed.Node, categories []*atom.Category) {
	for _, c := range categories {
		if c != nil {
			addValue(n, "category", c.Term, map[string]string{"scheme": c.Scheme, "label": c.Label})
		}
	}
}

func (s *Atom) WriteFeed(buf *bytes.Buffer, f *feed.Feed) error {
	prefixes, err := usedPrefixes(f, s.tagFor)
	if err != nil {
		return err
	}

	buf.WriteString(`<feed xmlns="` + atomNamespace + `"`)
	writeNamespaces(buf, prefixes)
	writeAttributes(buf, map[string]string{"xml:lang": f.Language})
	buf.WriteString(">\n")

	writeElement(buf, "title", f.Title, 2)
	writeElement(buf, "id", cmp.Or(f.PublicID, f.URL, f.Link), 2)
	if !f.LastModified.IsZero() {
		writeElement(buf, "updated", f.LastModified.UTC().Format(time.RFC3339), 2)
	}
	if f.Link != "" {
		writeTag(buf, "link", "", map[string]string{"href": f.Link, "rel": "alternate"}, 2)
	}
	writeElement(buf, "subtitle", f.Description, 2)
	s.writeElements(buf, &f.Node, 2)

	for _, item := range f.Items {
		if item != nil {
			s.writeEntry(buf, item)
		}
	}

	buf.WriteString("</feed>\n")
	return nil
}

func (s *Atom) writeEntry(buf *bytes.Buffer, item *feed.Item) {
	buf.WriteString("  <entry>\n")

	writeElement(buf, "title", item.Title, 4)
	writeElement(buf, "id", cmp.Or(item.PublicID, item.Link), 4)
	if !item.LastModified.IsZero() {
		writeElement(buf, "updated", item.LastModified.UTC().Format(time.RFC3339), 4)
	}
	if item.Link != "" {
		writeTag(buf, "link", "", map[string]string{"href": item.Link, "rel": "alternate"}, 4)
	}
	writeElement(buf, "summary", item.Description, 4)
	if item.Author != "" {
		s.writePerson(buf, item.Author, nil, 4)
	}
	s.writeElements(buf, &item.Node, 4)

	buf.WriteString("  </entry>\n")
}

// tagFor mirrors the cases of writeElements.
func (s *Atom) tagFor(name string) (string, bool) {
	switch name {
	case "category", "author":
		return name, false
	case "enclosure":
		return "link", false
	case "content", "content:encoded":
		return "content", false
	case "copyright":
		return "rights", false
	case "image":
		return "logo", false
	default:
		return name, true
	}
}

func (s *Atom) writeElements(buf *bytes.Buffer, n *feed.Node, indent int) {
	// Atom allows a single content element per entry.
	wroteContent := false
	for el := range n.AllElements() {
		attrs := el.Attributes()
		switch el.Name() {
		case "category":
			category := pick(attrs, "scheme", "label")
			category["term"] = el.Value()
			if category["scheme"] == "" {
				category["scheme"] = attrs["domain"]
			}
			writeTag(buf, "category", "", category, indent)
		case "enclosure":
			writeTag(buf, "link", "", map[string]string{
				"rel":    "enclosure",
				"href":   attrs["url"],
				"type":   attrs["type"],
				"length": attrs["length"],
			}, indent)
		case "content", "content:encoded":
			if wroteContent {
				continue
			}
			wroteContent = true
			writeTag(buf, "content", el.Value(), map[string]string{"type": cmp.Or(attrs["type"], "html")}, indent)
		case "author":
			s.writePerson(buf, el.Value(), attrs, indent)
		case "copyright":
			writeElement(buf, "rights", el.Value(), indent)
		case "image":
			writeElement(buf, "logo", el.Value(), indent)
		default:
			writeTag(buf, el.Name(), el.Value(), attrs, indent)
		}
	}
}

func (s *Atom) writePerson(buf *bytes.Buffer, name string, attrs map[string]string, indent int) {
	writeIndent(buf, indent)
	buf.WriteString("<author>\n")
	writeElement(buf, "name", name, indent+2)
	writeElement(buf, "email", attrs["email"], indent+2)
	writeElement(buf, "uri", attrs["uri"], indent+2)
	writeIndent(buf, indent)
	buf.WriteString("</author>\n")
}
