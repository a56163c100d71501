// Package admin serves the read-only HTTP surface of a litecache server:
// health checks, build info, metrics and inspection of the store.
package admin

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luma/litecache/internal/meta"
	"github.com/luma/litecache/internal/metrics"
	"github.com/luma/litecache/storage"
)

type Options struct {
	Store storage.Store

	// Metrics is optional, /metrics is only routed when it is set
	Metrics *metrics.Recorder

	DebugHTTP bool

	Log *zap.Logger
}

type handlers struct {
	store storage.Store
	log   *zap.Logger
}

func NewRouter(options Options) *gin.Engine {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	gin.DisableConsoleColor()
	if !options.DebugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	h := &handlers{store: options.Store, log: log}

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.GET("/health", h.health)
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, meta.GetInfo())
	})

	if options.Metrics != nil {
		r.GET("/metrics", gin.WrapH(options.Metrics.Handler()))
	}

	r.GET("/keys/:key", h.getKey)
	r.GET("/snapshot", h.snapshot)
	r.GET("/watch", h.watch)

	return r
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"keys":   h.store.Len(),
	})
}

func (h *handlers) getKey(c *gin.Context) {
	key := c.Param("key")

	value, ok, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		h.log.Error("Failed to get key", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "key not found", "key": key})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (h *handlers) snapshot(c *gin.Context) {
	backup, err := h.store.Backup()
	if err != nil {
		h.log.Error("Failed to back up store", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", backup)
}
