package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/seedvest/internal/logging"
	"github.com/dmitrijs2005/seedvest/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

// RouterOptions bundles everything the HTTP layer needs.
type RouterOptions struct {
	Sessions     *sessions.Service
	Logger       logging.Logger
	Limiter      Limiter
	CookieSecure bool
	RateLimit    int
	RateWindow   time.Duration
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(opts.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewAuthHandler(opts.Sessions, opts.Logger, opts.CookieSecure)

	auth := r.Group("/auth")
	{
		// registration and login are the credential-guessing surface
		limited := auth.Group("")
		if opts.Limiter != nil && opts.RateLimit > 0 {
			limited.Use(RateLimit(opts.Limiter, opts.RateLimit, opts.RateWindow))
		}
		limited.POST("/register", h.Register)
		limited.POST("/login", h.Login)

		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", RequireAuth(opts.Sessions), h.Me)
	}

	return r
}
