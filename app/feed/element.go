package feed

import (
	"errors"
	"maps"
)

var ErrEmptyName = errors.New("element name is empty")

// Element is a named extension field. It carries a string value and optional
// attributes, and cannot be changed once built.
type Element struct {
	name       string
	value      string
	attributes map[string]string
}

// NewElement builds a detached element, not yet attached to any node.
func NewElement(name, value string, attributes map[string]string) *Element {
	return &Element{
		name:       name,
		value:      value,
		attributes: maps.Clone(attributes),
	}
}

func (e *Element) Name() string {
	return e.name
}

func (e *Element) Value() string {
	return e.value
}

func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attributes[name]
	return v, ok
}

// Attributes returns a copy of the element attributes.
func (e *Element) Attributes() map[string]string {
	return maps.Clone(e.attributes)
}
