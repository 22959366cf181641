package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"sessiondeck/internal/system"
)

// allowedOrigin accepts requests without an Origin header (CLI clients)
// and browser requests from a page served by this same loopback host.
func allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host) && isLoopback(u.Hostname())
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// originGuard rejects cross-origin browser requests with 403.
func originGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowedOrigin(c.Request) {
			system.Logger.Warn("rejected cross-origin request",
				"origin", c.Request.Header.Get("Origin"), "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
			return
		}
		c.Next()
	}
}
