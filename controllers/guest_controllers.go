package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// GuestController serves the unauthenticated QR ordering flow.
type GuestController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
	Orders   *services.OrderService
	Bills    *services.BillService
}

func NewGuestController(db *gorm.DB, sessions *services.SessionService, orders *services.OrderService, bills *services.BillService) *GuestController {
	return &GuestController{DB: db, Sessions: sessions, Orders: orders, Bills: bills}
}

// PublicBranchView is an open branch as listed to guests.
type PublicBranchView struct {
	BranchView
	TenantName string `json:"tenant_name"`
}

// GetBranches lists active branches of active restaurants.
func (gc *GuestController) GetBranches(c *gin.Context) {
	db := gc.DB.WithContext(c.Request.Context())
	var branches []models.Branch
	err := db.Joins("JOIN tenants ON tenants.id = branches.tenant_id").
		Where("branches.status = ? AND tenants.status = ?", models.StatusActive, models.StatusActive).
		Order("branches.name ASC").
		Find(&branches).Error
	if err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to list branches", err))
		return
	}
	views, err := withMenuCounts(db, branches)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	tenantNames := map[string]string{}
	var tenants []models.Tenant
	if len(branches) > 0 {
		ids := make([]string, 0, len(branches))
		for _, b := range branches {
			ids = append(ids, b.TenantID)
		}
		if err := db.Where("id IN ?", ids).Find(&tenants).Error; err != nil {
			utils.RespondAppError(c, utils.NewInternal("failed to load tenants", err))
			return
		}
	}
	for _, t := range tenants {
		tenantNames[t.ID] = t.Name
	}

	result := make([]PublicBranchView, 0, len(views))
	for _, v := range views {
		result = append(result, PublicBranchView{BranchView: v, TenantName: tenantNames[v.TenantID]})
	}
	utils.RespondJSON(c, http.StatusOK, "List of branches", result)
}

// GetMenuItems lists the orderable menu of an active branch.
func (gc *GuestController) GetMenuItems(c *gin.Context) {
	branchID := c.Query("branch_id")
	if branchID == "" {
		utils.RespondAppError(c, utils.NewValidation("branch_id is required"))
		return
	}

	db := gc.DB.WithContext(c.Request.Context())
	var branch models.Branch
	if err := db.Where("id = ? AND status = ?", branchID, models.StatusActive).Limit(1).Find(&branch).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to load branch", err))
		return
	}
	if branch.ID == "" {
		utils.RespondAppError(c, utils.NewNotFound("Branch not found or inactive"))
		return
	}

	var items []models.MenuItem
	err := db.Preload("Category").
		Where("branch_id = ? AND status IN ?", branch.ID, []string{models.MenuAvailable, models.MenuActive}).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to list menu items", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", menuItemViews(items))
}

func (gc *GuestController) GetTable(c *gin.Context) {
	var table models.DiningTable
	if err := load(gc.DB.WithContext(c.Request.Context()), &table, c.Param("table_id"), "Table"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", gin.H{
		"table_id":     table.ID,
		"table_number": table.TableNumber,
		"capacity":     table.Capacity,
		"status":       table.Status,
		"branch_id":    table.BranchID,
	})
}

type guestSessionResponse struct {
	SessionID  string    `json:"session_id"`
	TableID    string    `json:"table_id"`
	CustomerID *string   `json:"customer_id"`
	StartTime  time.Time `json:"start_time"`
	Status     string    `json:"status"`
	Created    bool      `json:"created"`
}

// CreateSession returns the table's active session, opening one when none exists.
func (gc *GuestController) CreateSession(c *gin.Context) {
	var req struct {
		TableID    string  `json:"table_id" binding:"required"`
		CustomerID *string `json:"customer_id"`
	}
	if !bind(c, &req) {
		return
	}

	session, created, err := gc.Sessions.GetOrCreateActiveSession(c.Request.Context(), req.TableID, req.CustomerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Joined active session"
	if created {
		message = "Session created"
	}
	utils.RespondJSON(c, http.StatusOK, message, guestSessionResponse{
		SessionID:  session.ID,
		TableID:    session.TableID,
		CustomerID: session.CustomerID,
		StartTime:  session.StartTime,
		Status:     session.Status,
		Created:    created,
	})
}

// CreateOrder adds items to the session's running order.
func (gc *GuestController) CreateOrder(c *gin.Context) {
	var req struct {
		SessionID string               `json:"session_id" binding:"required"`
		Items     []services.ItemInput `json:"items" binding:"required,min=1,dive"`
		// ignored, new orders always start as "ordered"
		Status *string `json:"status"`
	}
	if !bind(c, &req) {
		return
	}

	snapshot, err := gc.Orders.AddItemsToSession(c.Request.Context(), req.SessionID, req.Items)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", snapshot)
}

func (gc *GuestController) GetOrderStatus(c *gin.Context) {
	status, err := gc.Orders.OrderStatus(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", status)
}

func (gc *GuestController) GetOrderDetails(c *gin.Context) {
	details, err := gc.Orders.OrderDetails(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", details)
}

// GetSessionDetails returns the running bill of every unpaid session at the session's table.
func (gc *GuestController) GetSessionDetails(c *gin.Context) {
	bill, err := gc.Bills.GetTableRunningBill(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session details", bill)
}

// UpdateBillStatus records the guest's choice to pay by cash or by bank transfer.
func (gc *GuestController) UpdateBillStatus(c *gin.Context) {
	var req struct {
		Status        string `json:"status" binding:"required"`
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	result, err := gc.Bills.UpdateBillStatus(c.Request.Context(), c.Param("session_id"), req.Status, req.PaymentMethod)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill status updated", result)
}
