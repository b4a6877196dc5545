package feed

import (
	"time"
)

const (
	FieldURL      = "url"
	FieldLanguage = "language"
)

// Feed is an ordered collection of items plus the feed's own metadata.
// Items are never deduplicated.
type Feed struct {
	Node
	URL      string
	Language string
	Items    []*Item
}

func New() *Feed {
	return &Feed{}
}

func (f *Feed) NewItem() *Item {
	return NewItem()
}

// Add appends item. A nil item is ignored.
func (f *Feed) Add(item *Item) {
	if item == nil {
		return
	}
	f.Items = append(f.Items, item)
}

func (f *Feed) Set(name, value string) error {
	switch name {
	case FieldURL:
		f.URL = value
	case FieldLanguage:
		f.Language = value
	default:
		return f.Node.Set(name, value)
	}
	return nil
}

func (f *Feed) GetValue(name string) (string, bool) {
	switch name {
	case FieldURL:
		return f.URL, true
	case FieldLanguage:
		return f.Language, true
	default:
		return f.Node.GetValue(name)
	}
}

// LatestItemModification returns the most recent item LastModified, zero when
// no item carries one.
func (f *Feed) LatestItemModification() time.Time {
	var latest time.Time
	for _, item := range f.Items {
		if item != nil && item.LastModified.After(latest) {
			latest = item.LastModified
		}
	}
	return latest
}

// Clone returns a deep copy of the feed and its items.
func (f *Feed) Clone() *Feed {
	c := &Feed{
		Node:     f.Node.clone(),
		URL:      f.URL,
		Language: f.Language,
	}
	if f.Items != nil {
		c.Items = make([]*Item, len(f.Items))
		for i, item := range f.Items {
			c.Items[i] = item.Clone()
		}
	}
	return c
}
