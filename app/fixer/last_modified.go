package fixer

import (
	"github.com/lysyi3m/feedio/app/feed"
)

// LastModified derives a missing feed modification time from its most
// recently modified item.
type LastModified struct {
	Base
}

func NewLastModified() *LastModified {
	return &LastModified{}
}

func (l *LastModified) Name() string {
	return "last_modified"
}

func (l *LastModified) Correct(f *feed.Feed) error {
	if !f.LastModified.IsZero() {
		return nil
	}

	latest := f.LatestItemModification()
	if latest.IsZero() {
		return nil
	}

	l.Logger().Debug("Correcting feed last modified date", "feed", f.Title, "last_modified", latest)
	f.LastModified = latest
	return nil
}
