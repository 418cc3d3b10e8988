package middlewares

import (
	"net/http"

	"github.com/geocoder89/jobboard/internal/authz"
	"github.com/geocoder89/jobboard/internal/observability"
	"github.com/gin-gonic/gin"
)

// Require runs the authorization gate before the handler. Denied requests
// never reach the handler.
func Require(req authz.Requirement, prom *observability.Prom) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := authz.Authorize(SessionFromContext(c), req)

		if d.Allowed {
			c.Next()
			return
		}

		prom.ObserveAuthzDenial(req.Name, string(d.Reason))

		if d.Reason == authz.ReasonUnauthenticated {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		abortError(c, http.StatusForbidden, "forbidden", "You are not allowed to perform this action")
	}
}
