// Package httpapi exposes the account engine over HTTP using gin.
// Routes are declared with an access policy (none, optional, required,
// plus an allowed-role set) and a single gate middleware enforces it,
// so authorization rules live in one table instead of inside handlers.
package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/thanhldev/accountd"
)

// API binds the engine to the HTTP surface.
type API struct {
	engine *accountd.Engine
	log    *slog.Logger
}

// New creates the API. A nil logger disables request logging.
func New(engine *accountd.Engine, log *slog.Logger) *API {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &API{engine: engine, log: log}
}

// Router builds the gin engine with all routes registered. Each request
// runs inside a server span from the globally installed tracer provider;
// without one the middleware is a no-op.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware("accountd"), a.requestLog(), a.clientIP())

	for _, rt := range a.routes() {
		r.Handle(rt.method, rt.path, a.gate(rt.policy), rt.handler)
	}

	return r
}

type route struct {
	method  string
	path    string
	policy  policy
	handler gin.HandlerFunc
}

func (a *API) routes() []route {
	return []route{
		{"POST", "/api/auth/register", public(), a.register},
		{"POST", "/api/auth/verify-otp", public(), a.verifyOTP},
		{"POST", "/api/auth/login", public(), a.login},
		{"POST", "/api/auth/forgot-password", public(), a.forgotPassword},
		{"POST", "/api/auth/reset-password", public(), a.resetPassword},

		{"GET", "/api/profile/me", authenticated(), a.profile},
		{"PUT", "/api/profile", authenticated(), a.updateProfile},
		{"POST", "/api/profile/avatar", authenticated(), a.uploadAvatar},
		{"DELETE", "/api/profile", authenticated(), a.deleteProfile},
		{"GET", "/api/protected", authenticated(), a.protected},

		{"POST", "/users", adminOnly(), a.adminCreate},
		{"GET", "/users", adminOnly(), a.listUsers},
		{"GET", "/users/:id", adminOnly(), a.getUser},
		{"PUT", "/users/:id", adminOnly(), a.updateUser},
		{"DELETE", "/users/:id", adminOnly(), a.disableUser},
	}
}

// requestLog emits one structured line per request.
func (a *API) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		a.log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
		)
	}
}

// clientIP threads the caller address into the request context so engine
// audit events can record it.
func (a *API) clientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(
			accountd.WithClientIP(c.Request.Context(), c.ClientIP()),
		)
		c.Next()
	}
}
