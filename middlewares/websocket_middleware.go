package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// WebSocketAuthMiddleware authenticates with the token query parameter, since
// browsers cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware(jwt *utils.JWTManager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.RespondAppError(c, utils.NewUnauthenticated("token query parameter missing"))
			return
		}
		if err := authenticate(c, jwt, db, token); err != nil {
			utils.RespondAppError(c, err)
			return
		}
		c.Next()
	}
}
