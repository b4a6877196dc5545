package standard

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/lysyi3m/feedio/app/feed"
)

var knownNamespaces = map[string]string{
	"atom":    "http://www.w3.org/2005/Atom",
	"content": "http://purl.org/rss/1.0/modules/content/",
	"dc":      "http://purl.org/dc/elements/1.1/",
	"georss":  "http://www.georss.org/georss",
	"itunes":  "http://www.itunes.com/dtds/podcast-1.0.dtd",
	"media":   "http://search.yahoo.com/mrss/",
	"slash":   "http://purl.org/rss/1.0/modules/slash/",
	"sy":      "http://purl.org/rss/1.0/modules/syndication/",
	"thr":     "http://purl.org/syndication/thread/1.0",
	"wfw":     "http://wellformedweb.org/CommentAPI/",
}

// namespaceURI falls back to a private URN so unknown prefixes stay well formed.
func namespaceURI(prefix string) string {
	if uri, ok := knownNamespaces[prefix]; ok {
		return uri
	}
	return "urn:feedio:ext:" + prefix
}

// tagFunc maps an element name to the tag a dialect writes for it. raw is
// true when the element is written verbatim, name and attributes included.
type tagFunc func(name string) (tag string, raw bool)

// usedPrefixes collects the namespace prefixes of every tag the dialect will
// write for the feed and its items. Verbatim elements must have XML names and
// attribute keys, otherwise ErrInvalidName is returned.
func usedPrefixes(f *feed.Feed, tagFor tagFunc) ([]string, error) {
	seen := make(map[string]struct{})
	add := func(name string) {
		if prefix, _, ok := strings.Cut(name, ":"); ok && prefix != "xml" {
			seen[prefix] = struct{}{}
		}
	}
	collect := func(n *feed.Node) error {
		for el := range n.AllElements() {
			tag, raw := tagFor(el.Name())
			add(tag)
			if !raw {
				continue
			}
			if !isXMLName(tag) {
				return fmt.Errorf("%w: element %q", ErrInvalidName, tag)
			}
			for key := range el.Attributes() {
				if !isXMLName(key) || strings.HasPrefix(key, "xmlns") {
					return fmt.Errorf("%w: attribute %q of %s", ErrInvalidName, key, tag)
				}
				add(key)
			}
		}
		return nil
	}
	if err := collect(&f.Node); err != nil {
		return nil, err
	}
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		if err := collect(&item.Node); err != nil {
			return nil, err
		}
	}
	return slices.Sorted(maps.Keys(seen)), nil
}

// isXMLName reports whether name is a qualified XML name: an NCName,
// optionally prefixed by another NCName and a colon.
func isXMLName(name string) bool {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return isNCName(prefix)
	}
	return isNCName(prefix) && isNCName(local)
}

func isNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

func writeNamespaces(buf *bytes.Buffer, prefixes []string) {
	for _, prefix := range prefixes {
		buf.WriteString(" xmlns:")
		buf.WriteString(prefix)
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(namespaceURI(prefix)))
		buf.WriteString(`"`)
	}
}

func writeIndent(buf *bytes.Buffer, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}
	writeTag(buf, tag, content, nil, indent)
}

// writeTag writes <tag attrs>content</tag>, or a self-closing tag when
// content is empty. Attributes are written in name order.
func writeTag(buf *bytes.Buffer, tag, content string, attrs map[string]string, indent int) {
	writeIndent(buf, indent)
	buf.WriteString("<")
	buf.WriteString(tag)
	writeAttributes(buf, attrs)
	if content == "" {
		buf.WriteString(" />\n")
		return
	}
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func writeAttributes(buf *bytes.Buffer, attrs map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		if attrs[name] == "" {
			continue
		}
		buf.WriteString(" ")
		buf.WriteString(name)
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(attrs[name]))
		buf.WriteString(`"`)
	}
}

func writeCDATA(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}
	writeIndent(buf, indent)
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString("><![CDATA[")
	buf.WriteString(strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]></")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// pick returns the subset of attrs whose names are listed.
func pick(attrs map[string]string, names ...string) map[string]string {
	picked := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := attrs[name]; ok {
			picked[name] = v
		}
	}
	return picked
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
