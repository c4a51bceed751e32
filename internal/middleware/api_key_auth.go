package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/ports/services"
	"github.com/SscSPs/currency_converter/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the caller's API key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth admits requests carrying a valid API key within its hourly quota.
// Usage is recorded after the handler ran, with the final status code.
func APIKeyAuth(keySvc services.APIKeySvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip authentication for public routes
		if isPublicRoute(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		logger := GetLoggerFromContext(c)
		key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if key == "" {
			metrics.AdmissionDecisions.WithLabelValues("missing_key").Inc()
			abortWithGateError(c, http.StatusUnauthorized, "API key is required")
			return
		}

		ip := ClientIP(c)
		apiKey, decision, err := keySvc.Admit(ctx, key, ip)
		if err != nil {
			metrics.AdmissionDecisions.WithLabelValues("error").Inc()
			logger.Error("API key admission failed", slog.String("error", err.Error()))
			abortWithGateError(c, http.StatusInternalServerError, "Failed to validate API key")
			return
		}
		switch decision {
		case domain.AdmissionInvalidKey:
			metrics.AdmissionDecisions.WithLabelValues("invalid_key").Inc()
			abortWithGateError(c, http.StatusUnauthorized, "Invalid or expired API key")
			return
		case domain.AdmissionQuotaExceeded:
			metrics.AdmissionDecisions.WithLabelValues("quota_exceeded").Inc()
			abortWithGateError(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		metrics.AdmissionDecisions.WithLabelValues("allowed").Inc()
		c.Set(string(apiKeyCtxKey), key)

		// Deferred so a panicking handler still records and releases its slot.
		path := c.Request.URL.Path
		defer func() {
			if r := recover(); r != nil {
				keySvc.RecordKeyUsage(ctx, apiKey, ip, path, http.StatusInternalServerError)
				panic(r)
			}
			keySvc.RecordKeyUsage(ctx, apiKey, ip, path, c.Writer.Status())
		}()
		c.Next()
	}
}

func abortWithGateError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"statusCode": status,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// isPublicRoute checks if the given path bypasses the API key gate
func isPublicRoute(path string) bool {
	switch {
	case path == "/health", path == "/metrics":
		return true
	case strings.HasPrefix(path, "/swagger"):
		return true
	}
	return false
}
