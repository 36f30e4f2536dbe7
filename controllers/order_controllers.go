package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder places an order for a table on behalf of a guest.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TableID    string               `json:"table_id" binding:"required"`
		CustomerID *string              `json:"customer_id"`
		Items      []services.ItemInput `json:"items" binding:"required,min=1,dive"`
	}
	if !bind(c, &req) {
		return
	}

	order, err := oc.Orders.CreateStaffOrder(c.Request.Context(), tenantOf(c), req.TableID, req.CustomerID, req.Items)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", order)
}

// GetOrders lists the tenant's orders, newest first, optionally filtered by branch and status.
func (oc *OrderController) GetOrders(c *gin.Context) {
	orders, err := oc.Orders.ListOrders(c.Request.Context(), tenantOf(c), c.Query("branch_id"), c.Query("status"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), tenantOf(c), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus moves an order through the kitchen statuses.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	change, err := oc.Orders.UpdateOrderStatus(c.Request.Context(), tenantOf(c), c.Param("order_id"), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", change)
}

// GenerateRandomOrder creates a demo order at a random table of the branch.
func (oc *OrderController) GenerateRandomOrder(c *gin.Context) {
	branchID, ok := requireBranchQuery(c)
	if !ok {
		return
	}
	order, err := oc.Orders.GenerateRandomOrder(c.Request.Context(), tenantOf(c), branchID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Random order generated", order)
}
