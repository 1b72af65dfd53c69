package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/seedvest/internal/logging"
	"github.com/dmitrijs2005/seedvest/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// RequireAuth extracts the bearer access token from the Authorization
// header, verifies it and stores the resulting principal in the request
// context. Verification is stateless; the credential store is not consulted.
func RequireAuth(svc *sessions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		principal, err := svc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the principal stored by RequireAuth.
func PrincipalFromContext(c *gin.Context) (*sessions.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*sessions.Principal)
	return principal, ok
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
