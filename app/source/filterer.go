package source

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/feedio/app/feed"
)

// Rejection records an item removed by a filter.
type Rejection struct {
	Item   *feed.Item
	Reason string
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run removes the items rejected by filters from fd and returns them.
func (f *Filterer) Run(fd *feed.Feed, filters []ConfigFilter) []Rejection {
	if len(filters) == 0 {
		return nil
	}

	var rejected []Rejection
	kept := fd.Items[:0]
	for _, item := range fd.Items {
		if item == nil {
			continue
		}
		if isFiltered, reason := f.applyFilters(item, filters); isFiltered {
			rejected = append(rejected, Rejection{Item: item, Reason: reason})
			continue
		}
		kept = append(kept, item)
	}
	clear(fd.Items[len(kept):])
	fd.Items = kept

	return rejected
}

func (f *Filterer) applyFilters(item *feed.Item, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

// getFieldValue joins every value stored under field. Extension elements
// win over the mandatory value of the same name.
func (f *Filterer) getFieldValue(item *feed.Item, field string) string {
	var values []string
	for _, name := range fieldNames(field) {
		found := false
		for el := range item.GetElementIterator(name) {
			values = append(values, el.Value())
			found = true
		}
		if found {
			continue
		}
		if v, ok := item.GetValue(name); ok && v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, " ")
}

func fieldNames(field string) []string {
	switch field {
	case "authors":
		return []string{feed.FieldAuthor}
	case "categories":
		return []string{"category"}
	case "content":
		return []string{"content", "content:encoded"}
	default:
		return []string{field}
	}
}
