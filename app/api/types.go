package api

import (
	"context"
	"net"
	"time"

	"github.com/lysyi3m/feedio/app/database"
	"github.com/lysyi3m/feedio/app/feed"
	"github.com/lysyi3m/feedio/app/formatter"
	"github.com/lysyi3m/feedio/app/reader"
	"github.com/lysyi3m/feedio/app/source"
	"github.com/lysyi3m/feedio/app/standard"
	"github.com/lysyi3m/feedio/app/tasks"
	"github.com/patrickmn/go-cache"
)

// ConverterInterface reads and renders feeds on demand. Implemented by
// feedio.FeedIo.
type ConverterInterface interface {
	Read(ctx context.Context, url string, fd *feed.Feed, modifiedSince time.Time) (*reader.Result, error)
	Format(fd *feed.Feed, name string) (*formatter.Document, error)
	GetStandard(name string) (standard.Standard, error)
	Standards() []string
}

type Handler struct {
	configCache  *source.ConfigCache
	sourceRepo   database.SourceRepository
	documentRepo database.DocumentRepository
	converter    ConverterInterface
	scheduler    tasks.TaskSchedulerInterface
	convertCache *cache.Cache
	lookupIP     func(ctx context.Context, host string) ([]net.IP, error)
	version      string
}
