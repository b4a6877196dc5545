package formatter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/feedio/app/feed"
)

// Serializer holds the writing rules of one dialect.
type Serializer interface {
	Name() string
	ContentType() string
	WriteFeed(buf *bytes.Buffer, f *feed.Feed) error
}

// Document is a serialized feed.
type Document struct {
	Standard    string
	ContentType string
	Body        []byte
}

func (d *Document) String() string {
	return string(d.Body)
}

// Formatter serializes feeds with a single Serializer.
type Formatter struct {
	serializer Serializer
	logger     *slog.Logger
}

func New(serializer Serializer, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		serializer: serializer,
		logger:     logger,
	}
}

func (f *Formatter) ToDocument(fd *feed.Feed) (*Document, error) {
	if fd == nil {
		return nil, fmt.Errorf("cannot format a nil feed")
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")

	if err := f.serializer.WriteFeed(&buf, fd); err != nil {
		return nil, fmt.Errorf("failed to write %s document: %w", f.serializer.Name(), err)
	}

	f.logger.Debug("Feed formatted", "standard", f.serializer.Name(), "items", len(fd.Items), "bytes", buf.Len())

	return &Document{
		Standard:    f.serializer.Name(),
		ContentType: f.serializer.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
