package middleware

import "github.com/gin-gonic/gin"

// apiKeyCtxKey holds the plaintext API key that admitted the request. It is never logged.
const apiKeyCtxKey = contextKey("apiKey")

// GetAPIKeyFromContext returns the plaintext API key the request was admitted with.
func GetAPIKeyFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(apiKeyCtxKey))
	if !exists {
		return "", false
	}
	key, ok := val.(string)
	return key, ok
}
