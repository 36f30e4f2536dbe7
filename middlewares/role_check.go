package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/utils"
)

// RequireRoles lets through callers whose role is one of roles. It must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			utils.RespondAppError(c, utils.NewUnauthenticated("unauthorized"))
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.RespondAppError(c, utils.NewForbidden("%s access required", strings.Join(roles, " or ")))
	}
}
