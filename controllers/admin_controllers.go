package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
)

// AdminController serves the platform administration endpoints.
type AdminController struct {
	Admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{Admin: admin}
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

func (ac *AdminController) GetDashboard(c *gin.Context) {
	dashboard, err := ac.Admin.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admin dashboard", dashboard)
}

func (ac *AdminController) GetRestaurants(c *gin.Context) {
	page, err := ac.Admin.Restaurants(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 5), c.Query("search"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", page)
}

func (ac *AdminController) GetRevenue(c *gin.Context) {
	page, err := ac.Admin.Revenue(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 5), c.DefaultQuery("period", "all"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue by restaurant", page)
}

func (ac *AdminController) GetUsers(c *gin.Context) {
	page, err := ac.Admin.Users(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 10), c.Query("search"), c.Query("role"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", page)
}

func (ac *AdminController) UpdateUserStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	if err := ac.Admin.SetUserStatus(c.Request.Context(), c.Param("user_id"), req.Status); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User status updated to "+req.Status, nil)
}

func (ac *AdminController) UpdateRestaurantStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	if err := ac.Admin.SetRestaurantStatus(c.Request.Context(), c.Param("tenant_id"), req.Status); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant status updated to "+req.Status, nil)
}

func (ac *AdminController) UpdateRestaurant(c *gin.Context) {
	var req services.RestaurantUpdate
	if !bind(c, &req) {
		return
	}
	if err := ac.Admin.UpdateRestaurant(c.Request.Context(), c.Param("tenant_id"), req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated successfully", nil)
}

// DeleteRestaurant removes a tenant together with everything it owns.
func (ac *AdminController) DeleteRestaurant(c *gin.Context) {
	if err := ac.Admin.DeleteRestaurant(c.Request.Context(), c.Param("tenant_id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted successfully", nil)
}

func (ac *AdminController) UpdateUser(c *gin.Context) {
	var req services.UserUpdate
	if !bind(c, &req) {
		return
	}
	if err := ac.Admin.UpdateUser(c.Request.Context(), c.Param("user_id"), req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated successfully", nil)
}

func (ac *AdminController) DeleteUser(c *gin.Context) {
	if err := ac.Admin.DeleteUser(c.Request.Context(), c.Param("user_id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted successfully", nil)
}
