package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/internal/service/auth"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/httputil"
)

const (
	ContextPrincipal = "principal"
	ContextScope     = "access_scope"
	ContextToken     = "session_token"
)

type AuthMiddleware struct {
	authService *auth.Service
	engine      *policy.Engine
}

func NewAuthMiddleware(authService *auth.Service, engine *policy.Engine) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, engine: engine}
}

// Authenticate verifies the session token, resolves the principal and
// computes a fresh access scope for this request. Scopes are never reused
// across requests.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			c.Abort()
			return
		}

		principal, err := m.authService.Verify(c.Request.Context(), parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		scope, err := m.engine.ScopeFor(principal)
		if err != nil {
			// Unknown role: fail closed, no access at all.
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Set(ContextScope, scope)
		c.Set(ContextToken, parts[1])
		c.Next()
	}
}

// RequireAdmin gates admin-only surfaces like export and staff provisioning.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := ScopeFrom(c)
		if scope == nil || !scope.Writable {
			httputil.RespondWithError(c, errors.Forbidden("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ScopeFrom returns the request's access scope, or nil when unauthenticated.
func ScopeFrom(c *gin.Context) *policy.AccessScope {
	if v, ok := c.Get(ContextScope); ok {
		if scope, ok := v.(*policy.AccessScope); ok {
			return scope
		}
	}
	return nil
}

// PrincipalFrom returns the request's principal.
func PrincipalFrom(c *gin.Context) (policy.Principal, bool) {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(policy.Principal); ok {
			return p, true
		}
	}
	return policy.Principal{}, false
}
