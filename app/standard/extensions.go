package standard

import (
	"maps"
	"slices"

	"github.com/lysyi3m/feedio/app/feed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// addExtensions flattens gofeed's namespaced extensions into elements named
// prefix:name. Nested children are not kept.
func addExtensions(n *feed.Node, extensions ext.Extensions, skip ...string) {
	for _, prefix := range slices.Sorted(maps.Keys(extensions)) {
		if slices.Contains(skip, prefix) {
			continue
		}
		byName := extensions[prefix]
		for _, name := range slices.Sorted(maps.Keys(byName)) {
			for _, e := range byName[name] {
				n.AddElement(feed.NewElement(prefix+":"+name, e.Value, e.Attrs))
			}
		}
	}
}

func addValue(n *feed.Node, name, value string, attrs map[string]string) {
	if value == "" && len(attrs) == 0 {
		return
	}
	n.AddElement(feed.NewElement(name, value, attrs))
}
