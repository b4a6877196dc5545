package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feedio/app/database"
	"github.com/lysyi3m/feedio/app/formatter"
	"github.com/lysyi3m/feedio/app/source"
	"github.com/lysyi3m/feedio/app/standard"
	"github.com/lysyi3m/feedio/app/tasks"
	"github.com/patrickmn/go-cache"
)

const defaultConvertFormat = "rss"

func NewHandler(configCache *source.ConfigCache, sourceRepo database.SourceRepository,
	documentRepo database.DocumentRepository, converter ConverterInterface,
	scheduler tasks.TaskSchedulerInterface, cacheTTL time.Duration, version string) *Handler {
	return &Handler{
		configCache:  configCache,
		sourceRepo:   sourceRepo,
		documentRepo: documentRepo,
		converter:    converter,
		scheduler:    scheduler,
		convertCache: cache.New(cacheTTL, 2*cacheTTL),
		lookupIP:     lookupIP,
		version:      version,
	}
}

// GetFeed serves the last stored rendering of a source.
func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Debug("Source configuration not found", "source", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	doc, err := h.documentRepo.GetDocument(c.Request.Context(), name)
	if err != nil {
		slog.Error("Database error", "operation", "get_document", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if doc == nil {
		slog.Debug("Source not rendered yet", "source", name)
		c.Status(http.StatusServiceUnavailable)
		return
	}

	if since, err := http.ParseTime(c.GetHeader("If-Modified-Since")); err == nil && !doc.UpdatedAt.After(since) {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(doc.ItemCount))
	c.Header("X-Feed-Name", name)
	c.Header("X-Last-Updated", doc.UpdatedAt.In(time.Local).Format(time.RFC3339))
	c.Header("Last-Modified", doc.UpdatedAt.UTC().Format(http.TimeFormat))

	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// Convert reads a remote feed and renders it in the requested format.
// Renderings are cached per url and format.
func (h *Handler) Convert(c *gin.Context) {
	rawURL := c.Query("url")
	format := strings.ToLower(c.DefaultQuery("format", defaultConvertFormat))

	target, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parameter 'url' must be an absolute http(s) URL"})
		return
	}

	if err := h.checkPublicHost(c.Request.Context(), target.Hostname()); err != nil {
		slog.Warn("Rejected conversion target", "url", rawURL, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parameter 'url' must point to a public host"})
		return
	}

	if _, err := h.converter.GetStandard(format); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Unknown format",
			"details":   err.Error(),
			"standards": h.converter.Standards(),
		})
		return
	}

	key := format + "|" + rawURL
	if cached, ok := h.convertCache.Get(key); ok {
		doc := cached.(*formatter.Document)
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, doc.ContentType, doc.Body)
		return
	}

	result, err := h.converter.Read(c.Request.Context(), rawURL, nil, time.Time{})
	if err != nil {
		slog.Warn("Failed to read remote feed", "url", rawURL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to read feed"})
		return
	}

	doc, err := h.converter.Format(result.Feed, format)
	if err != nil {
		status := http.StatusInternalServerError
		if standard.IsNotFound(err) {
			status = http.StatusBadRequest
		}
		slog.Error("Failed to format feed", "url", rawURL, "format", format, "error", err)
		c.JSON(status, gin.H{"error": "Failed to format feed", "details": err.Error()})
		return
	}

	h.convertCache.SetDefault(key, doc)

	c.Header("X-Cache", "MISS")
	c.Header("X-Feed-Standard", result.Standard)
	c.Header("X-Feed-Items", strconv.Itoa(len(result.Feed.Items)))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// checkPublicHost rejects hosts that resolve to loopback, private,
// link-local or unspecified addresses.
func (h *Handler) checkPublicHost(ctx context.Context, host string) error {
	ips, err := h.lookupIP(ctx, host)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	if len(ips) == 0 {
		return fmt.Errorf("no addresses for %s", host)
	}
	for _, ip := range ips {
		if !isPublicIP(ip) {
			return fmt.Errorf("%s resolves to non-public address %s", host, ip)
		}
	}
	return nil
}

func isPublicIP(ip net.IP) bool {
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() && !ip.IsLinkLocalMulticast() &&
		!ip.IsInterfaceLocalMulticast() && !ip.IsMulticast()
}

func lookupIP(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}
	return net.DefaultResolver.LookupIP(ctx, "ip", host)
}

func (h *Handler) GetStandards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"standards": h.converter.Standards()})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.sourceRepo.GetSourceCount(c.Request.Context()); err == nil {
		health["sources"] = count
	} else {
		slog.Error("Database error", "operation", "count_sources", "error", err)
		health["status"] = "degraded"
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()
	health["cached_conversions"] = h.convertCache.ItemCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSources(c *gin.Context) {
	ctx := c.Request.Context()
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]any, 0, len(configs))
	for _, config := range configs {
		info := sourceInfo(config)

		if state, err := h.sourceRepo.GetSource(ctx, config.Name); err == nil && state != nil {
			addState(info, state)
		}
		if doc, err := h.documentRepo.GetDocument(ctx, config.Name); err == nil && doc != nil {
			info["item_count"] = doc.ItemCount
			info["rendered_at"] = doc.UpdatedAt
		}

		sources = append(sources, info)
	}

	c.JSON(http.StatusOK, map[string]any{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIGetSource(c *gin.Context) {
	name := c.Param("name")

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	state, err := h.sourceRepo.GetSource(c.Request.Context(), name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	info := sourceInfo(config)
	info["timeout"] = (time.Duration(config.Settings.Timeout) * time.Second).String()
	info["extract_content"] = config.Settings.ExtractContent
	info["filters"] = config.Filters
	if state != nil {
		addState(info, state)
	}

	c.JSON(http.StatusOK, info)
}

// APIRefreshSource reloads the source file and queues an immediate fetch.
func (h *Handler) APIRefreshSource(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()

	if _, err := h.configCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	config, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceTask(config, h.sourceRepo)
	if err := syncTask.Execute(ctx); err != nil {
		slog.Error("Error syncing source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync source", "details": err.Error()})
		return
	}

	if err := h.scheduler.RefreshSource(ctx, name); err != nil {
		slog.Error("Error enqueueing refresh", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Configuration reloaded and refresh enqueued",
		"source": gin.H{
			"name":   name,
			"url":    config.URL,
			"format": config.Format,
		},
	})
}

func sourceInfo(config *source.Config) map[string]any {
	return map[string]any{
		"name":             config.Name,
		"url":              config.URL,
		"format":           config.Format,
		"enabled":          config.Settings.Enabled,
		"max_items":        config.Settings.MaxItems,
		"refresh_interval": (time.Duration(config.Settings.RefreshInterval) * time.Second).String(),
	}
}

func addState(info map[string]any, state *database.Source) {
	info["title"] = state.Title
	info["last_modified"] = optionalTime(state.LastModified)
	info["last_fetched_at"] = optionalTime(state.LastFetchedAt)
	info["next_fetch_at"] = optionalTime(state.NextFetchAt)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
