package fixer

import (
	"github.com/lysyi3m/feedio/app/feed"
)

// PublicID falls back to the item link for items without an identifier.
type PublicID struct {
	Base
}

func NewPublicID() *PublicID {
	return &PublicID{}
}

func (p *PublicID) Name() string {
	return "public_id"
}

func (p *PublicID) Correct(f *feed.Feed) error {
	fixed := 0
	for _, item := range f.Items {
		if item != nil && item.PublicID == "" && item.Link != "" {
			item.PublicID = item.Link
			fixed++
		}
	}
	if fixed > 0 {
		p.Logger().Debug("Filled missing item identifiers", "feed", f.Title, "count", fixed)
	}
	return nil
}
