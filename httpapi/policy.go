package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thanhldev/accountd"
)

type authMode int

const (
	// authNone skips token handling entirely.
	authNone authMode = iota
	// authOptional resolves a token when present but lets the request
	// through without one.
	authOptional
	// authRequired rejects requests without a valid token.
	authRequired
)

// policy is a route's access declaration. An empty role set admits any
// authenticated caller.
type policy struct {
	mode  authMode
	roles []accountd.Role
}

func public() policy        { return policy{mode: authNone} }
func authenticated() policy { return policy{mode: authRequired} }
func adminOnly() policy {
	return policy{mode: authRequired, roles: []accountd.Role{accountd.RoleAdmin}}
}

const identityKey = "accountd.identity"

// gate enforces a route's policy before its handler runs.
func (a *API) gate(p policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p.mode == authNone {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			if p.mode == authOptional {
				c.Next()
				return
			}
			abortError(c, accountd.ErrUnauthenticated)
			return
		}

		identity, err := a.engine.Authenticate(c.Request.Context(), token)
		if err != nil {
			if p.mode == authOptional {
				c.Next()
				return
			}
			abortError(c, err)
			return
		}

		if len(p.roles) > 0 && !roleAllowed(identity.Account.Role, p.roles) {
			abortError(c, accountd.ErrForbidden)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func roleAllowed(role accountd.Role, allowed []accountd.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// identity returns the resolved caller. Only valid on routes gated
// authRequired; optional routes must check the ok flag.
func identity(c *gin.Context) (*accountd.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	id, ok := v.(*accountd.Identity)
	return id, ok
}

func abortError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	c.AbortWithStatusJSON(status, body)
}

func writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	c.JSON(status, body)
}
