package fixer

import (
	"strings"

	"github.com/lysyi3m/feedio/app/feed"
	"golang.org/x/text/unicode/norm"
)

// Title trims titles and puts them in Unicode NFC so equal titles compare
// equal whatever dialect produced them.
type Title struct {
	Base
}

func NewTitle() *Title {
	return &Title{}
}

func (t *Title) Name() string {
	return "title"
}

func (t *Title) Correct(f *feed.Feed) error {
	f.Title = normalizeTitle(f.Title)
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		item.Title = normalizeTitle(item.Title)
	}
	return nil
}

func normalizeTitle(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
