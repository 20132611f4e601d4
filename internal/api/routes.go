package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig restricts cross-origin callers. An empty Origins list, or one
// containing "*", allows every origin.
type CORSConfig struct {
	Origins []string
}

func (c CORSConfig) allowAll() bool {
	if len(c.Origins) == 0 {
		return true
	}
	for _, o := range c.Origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// NewRouter builds the gin engine serving the ingestion endpoint.
func NewRouter(h *Handler, corsCfg CORSConfig, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger), cors.New(corsPolicy(corsCfg)))
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/queue/jobs", h.EnqueueJob)
	r.GET("/health", h.Health)
}

// Cross-origin callers may only POST, with a fixed header allowlist.
func corsPolicy(c CORSConfig) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodPost},
		AllowHeaders:  []string{"Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if c.allowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = c.Origins
	}
	return cfg
}
