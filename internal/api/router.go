package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskmanager/taskmanager/internal/tasks"
)

// RouterOptions configures the middleware stack around the task routes
type RouterOptions struct {
	AllowOrigins   []string
	MaxAge         time.Duration
	MaxRequestSize int64
}

// NewRouter builds the gin engine serving the task API
func NewRouter(h *TaskHandlers, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(cors.New(corsConfig(opts)))
	router.Use(RequestLoggingMiddleware(logger))
	router.Use(gin.Recovery())
	if opts.MaxRequestSize > 0 {
		router.Use(MaxRequestSizeMiddleware(opts.MaxRequestSize))
	}

	h.RegisterRoutes(router)
	return router
}

func corsConfig(opts RouterOptions) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     opts.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           opts.MaxAge,
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	return cfg
}

// RequestLoggingMiddleware logs one structured line per request
func RequestLoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		requestID := uuid.New().String()
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("remote_addr", c.ClientIP()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}

// MaxRequestSizeMiddleware caps the size of request bodies
func MaxRequestSizeMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func asTaskError(err error) (*tasks.TaskError, bool) {
	var taskErr *tasks.TaskError
	if errors.As(err, &taskErr) {
		return taskErr, true
	}
	return nil, false
}
