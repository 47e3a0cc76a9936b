package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heirloomlabs/heirloom/internal/identity"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	headerRequestID  = "X-Request-ID"
	contextKeyCaller = "caller"
	requestIDKey     = "request_id"
)

// RequestID propagates the inbound request id or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

// RequestLogger emits one structured line per request after the handler
// chain completes.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.Error(lastErr.Err))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// AuthRequired resolves the Authorization bearer credential and stashes the
// caller identity in the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearerToken(c.GetHeader("Authorization"))
		if credential == "" {
			AbortWithError(c, identity.ErrMissingCredential)
			return
		}

		caller, err := s.identities.Resolve(c.Request.Context(), credential)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextKeyCaller, caller)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func callerIdentity(c *gin.Context) (identity.Identity, bool) {
	value, ok := c.Get(contextKeyCaller)
	if !ok {
		return identity.Identity{}, false
	}
	caller, ok := value.(identity.Identity)
	if !ok || caller.UserID == 0 {
		return identity.Identity{}, false
	}
	return caller, true
}
