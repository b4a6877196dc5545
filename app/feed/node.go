package feed

import (
	"fmt"
	"iter"
	"slices"
	"time"
)

// Mandatory field names shared by feeds and items.
const (
	FieldTitle        = "title"
	FieldPublicID     = "publicId"
	FieldLink         = "link"
	FieldDescription  = "description"
	FieldLastModified = "lastModified"
)

// Node holds the mandatory fields common to Feed and Item plus an ordered
// sequence of extension elements. Element names may repeat.
type Node struct {
	Title        string
	PublicID     string
	Link         string
	Description  string
	LastModified time.Time

	elements []*Element
}

// Set overwrites a mandatory field, or appends a new extension element when
// name is not mandatory.
func (n *Node) Set(name, value string) error {
	ok, err := n.setMandatory(name, value)
	if err != nil || ok {
		return err
	}
	return n.AddElement(NewElement(name, value, nil))
}

// GetValue returns a mandatory field, or the value of the first extension
// element with that name. The bool is false when nothing matches.
func (n *Node) GetValue(name string) (string, bool) {
	if v, ok := n.mandatoryValue(name); ok {
		return v, true
	}
	for el := range n.GetElementIterator(name) {
		return el.Value(), true
	}
	return "", false
}

// AddElement appends el to the extension sequence even if its name is
// already present.
func (n *Node) AddElement(el *Element) error {
	if el == nil || el.Name() == "" {
		return ErrEmptyName
	}
	n.elements = append(n.elements, el)
	return nil
}

func (n *Node) HasElement(name string) bool {
	return slices.ContainsFunc(n.elements, func(el *Element) bool {
		return el.Name() == name
	})
}

// GetElementIterator yields the extension elements named name in insertion
// order. Every call to the returned sequence starts a fresh traversal.
func (n *Node) GetElementIterator(name string) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		for _, el := range n.elements {
			if el.Name() != name {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

func (n *Node) AllElements() iter.Seq[*Element] {
	return slices.Values(n.elements)
}

// ListElements returns the distinct extension names, sorted.
func (n *Node) ListElements() []string {
	seen := make(map[string]struct{}, len(n.elements))
	names := make([]string, 0, len(n.elements))
	for _, el := range n.elements {
		if _, ok := seen[el.Name()]; ok {
			continue
		}
		seen[el.Name()] = struct{}{}
		names = append(names, el.Name())
	}
	slices.Sort(names)
	return names
}

func (n *Node) setMandatory(name, value string) (bool, error) {
	switch name {
	case "":
		return false, ErrEmptyName
	case FieldTitle:
		n.Title = value
	case FieldPublicID:
		n.PublicID = value
	case FieldLink:
		n.Link = value
	case FieldDescription:
		n.Description = value
	case FieldLastModified:
		if value == "" {
			n.LastModified = time.Time{}
			return true, nil
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return true, fmt.Errorf("invalid %s value %q: %w", name, value, err)
		}
		n.LastModified = t
	default:
		return false, nil
	}
	return true, nil
}

func (n *Node) mandatoryValue(name string) (string, bool) {
	switch name {
	case FieldTitle:
		return n.Title, true
	case FieldPublicID:
		return n.PublicID, true
	case FieldLink:
		return n.Link, true
	case FieldDescription:
		return n.Description, true
	case FieldLastModified:
		if n.LastModified.IsZero() {
			return "", true
		}
		return n.LastModified.Format(time.RFC3339), true
	default:
		return "", false
	}
}

func (n Node) clone() Node {
	// Elements are immutable, sharing them is safe.
	n.elements = slices.Clone(n.elements)
	return n
}
