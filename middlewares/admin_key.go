package middlewares

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/utils"
)

// AdminKey guards the admin routes with the X-Admin-Key header. An empty key
// leaves them open.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			utils.RespondAppError(c, utils.NewUnauthenticated("invalid admin key"))
			return
		}
		c.Next()
	}
}
