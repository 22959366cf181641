package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/config"
	"sessiondeck/internal/headless"
	"sessiondeck/internal/presets"
	"sessiondeck/internal/registry"
	"sessiondeck/internal/system"
	appver "sessiondeck/internal/version"
)

// Server exposes the registry, orphan scan, presets and embedded
// terminals over a local HTTP API. Nil services answer 503.
type Server struct {
	Addr     string
	Config   config.Config
	Registry *registry.Registry
	Scanner  *adoption.Scanner
	Presets  *presets.Set
	Launcher *headless.Launcher
}

// Handler builds the gin engine with every route mounted.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestLogger())
	r.Use(gin.Recovery())
	s.mountAPI(r)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

// Start serves until ctx is cancelled. A clean shutdown returns
// http.ErrServerClosed.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	system.Logger.Info("api server listening", "addr", s.Addr)
	return srv.ListenAndServe()
}

func (s *Server) mountAPI(r *gin.Engine) {
	api := r.Group("/api", originGuard())
	api.GET("/health", gin.WrapF(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	api.GET("/version", gin.WrapF(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": appver.AppVersion})
	}))

	api.GET("/processes", s.listProcesses)
	api.POST("/processes/cleanup", s.cleanupProcesses)
	api.DELETE("/processes/:pid", s.killProcess)
	api.GET("/orphans", s.listOrphans)
	api.GET("/presets", s.listPresets)
	api.POST("/presets/:name/launch", s.launchPreset)

	api.GET("/term/ws", s.terminalWS)
}

// requestLogger routes gin's access log through the shared logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		system.Logger.Debug("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur", time.Since(start).Round(time.Microsecond),
		)
	}
}
