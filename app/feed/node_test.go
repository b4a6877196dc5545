package feed

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func collectValues(n *Node, name string) []string {
	var values []string
	for el := range n.GetElementIterator(name) {
		values = append(values, el.Value())
	}
	return values
}

func TestGetElementIteratorKeepsInsertionOrder(t *testing.T) {
	item := NewItem()
	item.AddElement(NewElement("category", "a", nil))
	item.AddElement(NewElement("author", "x", nil))
	item.AddElement(NewElement("category", "b", nil))

	got := collectValues(&item.Node, "category")
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got: %v", got)
	}

	// A second traversal must see the same elements.
	again := collectValues(&item.Node, "category")
	if !slices.Equal(again, got) {
		t.Errorf("Expected restartable iterator, second pass got: %v", again)
	}

	missing := item.GetElementIterator("missing")
	if missing == nil {
		t.Fatal("Expected empty sequence, got nil")
	}
	for el := range missing {
		t.Errorf("Expected no elements, got: %s", el.Name())
	}
}

func TestSetMandatoryOverwrites(t *testing.T) {
	item := NewItem()
	if err := item.Set("title", "first"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := item.Set("title", "second"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if item.Title != "second" {
		t.Errorf("Expected title 'second', got: %s", item.Title)
	}
	if item.HasElement("title") {
		t.Error("Mandatory field must not leak into extension elements")
	}

	if err := item.Set("author", "jane"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if item.Author != "jane" {
		t.Errorf("Expected author 'jane', got: %s", item.Author)
	}
}

func TestSetExtensionAppends(t *testing.T) {
	item := NewItem()
	item.Set("tag", "one")
	item.Set("tag", "two")

	got := collectValues(&item.Node, "tag")
	if !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("Expected [one two], got: %v", got)
	}

	value, ok := item.GetValue("tag")
	if !ok || value != "one" {
		t.Errorf("Expected first value 'one', got: %q (found=%t)", value, ok)
	}
}

func TestSetRejectsEmptyName(t *testing.T) {
	item := NewItem()
	if err := item.Set("", "value"); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got: %v", err)
	}
	if err := item.AddElement(nil); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName for nil element, got: %v", err)
	}
}

func TestLastModifiedByName(t *testing.T) {
	item := NewItem()
	if err := item.Set("lastModified", "2023-07-03T10:00:00Z"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !item.LastModified.Equal(expected) {
		t.Errorf("Expected %v, got: %v", expected, item.LastModified)
	}

	value, ok := item.GetValue("lastModified")
	if !ok || value != "2023-07-03T10:00:00Z" {
		t.Errorf("Expected RFC3339 value, got: %q", value)
	}

	if err := item.Set("lastModified", "yesterday"); err == nil {
		t.Error("Expected error for malformed timestamp")
	}
}

func TestGetValueUnknownName(t *testing.T) {
	item := NewItem()
	value, ok := item.GetValue("nothing")
	if ok {
		t.Errorf("Expected absent value, got: %q", value)
	}
	if item.HasElement("nothing") {
		t.Error("Expected HasElement to be false")
	}
}

func TestListElementsIsDistinct(t *testing.T) {
	item := NewItem()
	item.Set("category", "a")
	item.Set("comments", "c")
	item.Set("category", "b")

	got := item.ListElements()
	if !slices.Equal(got, []string{"category", "comments"}) {
		t.Errorf("Expected [category comments], got: %v", got)
	}

	count := 0
	for range item.AllElements() {
		count++
	}
	if count != 3 {
		t.Errorf("Expected 3 elements, got: %d", count)
	}
}

func TestElementAttributesAreCopied(t *testing.T) {
	attrs := map[string]string{"domain": "tags"}
	el := NewElement("category", "go", attrs)
	attrs["domain"] = "changed"

	if v, _ := el.Attribute("domain"); v != "tags" {
		t.Errorf("Expected attribute 'tags', got: %s", v)
	}

	copied := el.Attributes()
	copied["domain"] = "changed"
	if v, _ := el.Attribute("domain"); v != "tags" {
		t.Errorf("Element must not change through Attributes(), got: %s", v)
	}
}
