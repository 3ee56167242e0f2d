package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	serviceName     = "musecareer"
	headerRequestID = "X-Request-Id"
	ctxKeyRequestID = "request_id"
)

func NewRouter(cfg *ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Config.Otel.Enabled {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(attachRequestID())
	r.Use(requestLogger(cfg))
	r.Use(corsMiddleware(cfg.Config.CORSOrigins))
	r.Use(limitBody(cfg.Config.MaxBodyBytes))

	r.GET("/", cfg.handlerRoot)
	r.GET("/health", cfg.handlerHealth)
	r.POST("/analyze", cfg.handlerAnalyze)
	r.POST("/analyze-cv", cfg.handlerAnalyzeUpload)
	r.POST("/analyze-cv-base64", cfg.handlerAnalyzeBase64)
	// route used by the original frontend
	r.POST("/prod", cfg.handlerAnalyze)
	return r
}

func attachRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ctxKeyRequestID, reqID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

func requestLogger(cfg *ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(ctxKeyRequestID),
		}
		switch {
		case status >= 500:
			cfg.Log.Error("HTTP request", fields...)
		case status >= 400:
			cfg.Log.Warn("HTTP request", fields...)
		default:
			cfg.Log.Info("HTTP request", fields...)
		}
	}
}

// corsMiddleware allows any origin unless a list is configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", "Authorization", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
