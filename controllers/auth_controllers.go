package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/middlewares"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// Register creates a new restaurant tenant and its owner account.
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bind(c, &req) {
		return
	}
	token, err := ac.Auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered successfully", token)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginInput
	if !bind(c, &req) {
		return
	}
	token, err := ac.Auth.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.WithField("user", token.User.UserID).Info("User logged in")
	utils.RespondJSON(c, http.StatusOK, "Login successful", token)
}

// Me returns the authenticated user's profile.
func (ac *AuthController) Me(c *gin.Context) {
	profile, err := ac.Auth.Me(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current user", profile)
}
