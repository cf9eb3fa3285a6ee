package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"match-service/pkg/apperror"
)

const userIDKey = "userID"

// userIDHeader carries the opaque identity resolved by the upstream
// auth gateway. Credential checking itself happens outside this service.
const userIDHeader = "X-User-ID"

func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(userIDHeader)
		if raw == "" {
			writeError(c, apperror.Unauthorized("missing user identity"))
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, apperror.Unauthorized("invalid user identity"))
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// WorkerAllowList restricts worker endpoints to the configured IPs.
// An empty list allows everything, which is the development default.
func WorkerAllowList(allowed []string) gin.HandlerFunc {
	normalized := make([]string, 0, len(allowed))
	for _, ip := range allowed {
		if ip = normalizeIP(ip); ip != "" {
			normalized = append(normalized, ip)
		}
	}

	return func(c *gin.Context) {
		if len(normalized) == 0 {
			c.Next()
			return
		}

		clientIP := c.GetHeader("X-Forwarded-For")
		if i := strings.Index(clientIP, ","); i >= 0 {
			clientIP = clientIP[:i]
		}
		if strings.TrimSpace(clientIP) == "" {
			clientIP = c.ClientIP()
		}
		clientIP = normalizeIP(clientIP)

		for _, ip := range normalized {
			if ip == clientIP {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"kind":    "Forbidden",
			"message": "Worker IP not allowed",
		})
	}
}

func normalizeIP(ip string) string {
	return strings.TrimSpace(strings.TrimPrefix(ip, "::ffff:"))
}
