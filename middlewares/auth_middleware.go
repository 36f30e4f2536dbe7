package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// Context keys set by AuthMiddleware and WebSocketAuthMiddleware.
const (
	CtxUserID   = "userID"
	CtxTenantID = "tenantID"
	CtxRole     = "role"
)

// AuthMiddleware requires a bearer token and loads the caller's tenant and role.
func AuthMiddleware(jwt *utils.JWTManager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondAppError(c, utils.NewUnauthenticated("Authorization header missing"))
			return
		}
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			utils.RespondAppError(c, utils.NewUnauthenticated("Authorization header must be a Bearer token"))
			return
		}
		if err := authenticate(c, jwt, db, token); err != nil {
			utils.RespondAppError(c, err)
			return
		}
		c.Next()
	}
}

// authenticate validates the token, then stores user id, tenant id and role on the context.
func authenticate(c *gin.Context, jwt *utils.JWTManager, db *gorm.DB, token string) error {
	claims, err := jwt.ParseToken(token)
	if err != nil {
		return utils.NewUnauthenticated("Could not validate credentials")
	}

	tx := db.WithContext(c.Request.Context())
	var user models.User
	if err := tx.Where("id = ?", claims.Subject).Limit(1).Find(&user).Error; err != nil {
		return utils.NewInternal("failed to load user", err)
	}
	if user.ID == "" {
		return utils.NewUnauthenticated("Could not validate credentials")
	}
	role, err := services.ResolveRole(tx, user.ID)
	if err != nil {
		return err
	}

	c.Set(CtxUserID, user.ID)
	c.Set(CtxTenantID, user.TenantID)
	c.Set(CtxRole, role)
	return nil
}

// TenantID returns the authenticated caller's tenant.
func TenantID(c *gin.Context) string {
	return c.GetString(CtxTenantID)
}

func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

func Role(c *gin.Context) string {
	return c.GetString(CtxRole)
}
