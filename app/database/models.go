package database

import (
	"time"
)

// Source is the stored state of a configured remote feed.
type Source struct {
	Name          string
	URL           string
	Format        string
	Title         string
	LastModified  time.Time // feed modification time reported by the last read
	LastFetchedAt time.Time
	NextFetchAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDue reports whether the source should be fetched at now.
func (s *Source) IsDue(now time.Time) bool {
	return s.NextFetchAt.IsZero() || !s.NextFetchAt.After(now)
}

// Document is the last rendering of a source in its configured format.
type Document struct {
	SourceName  string
	ContentType string
	Body        []byte
	ItemCount   int
	UpdatedAt   time.Time
}
