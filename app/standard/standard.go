package standard

import (
	"bytes"
	"io"

	"github.com/lysyi3m/feedio/app/feed"
)

// Standard adapts one syndication vocabulary. It knows how to recognize a
// document, parse it into a feed and write a feed back out.
type Standard interface {
	Name() string
	ContentType() string
	CanHandle(data []byte) bool
	Parse(r io.Reader, target *feed.Feed) error
	WriteFeed(buf *bytes.Buffer, f *feed.Feed) error
}
