package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/scan-order/middlewares"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

type pointsResponse struct {
	CustomerID    string                    `json:"customer_id"`
	PointsBalance decimal.Decimal           `json:"points_balance"`
	Transactions  []models.PointTransaction `json:"transactions"`
}

// GetMyPoints returns the caller's loyalty balance and ledger, newest entry first.
func (cc *CustomerController) GetMyPoints(c *gin.Context) {
	db := cc.DB.WithContext(c.Request.Context())

	var customer models.Customer
	if err := db.Where("user_id = ?", middlewares.UserID(c)).Limit(1).Find(&customer).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to load customer", err))
		return
	}
	if customer.ID == "" {
		utils.RespondAppError(c, utils.NewNotFound("Customer not found"))
		return
	}

	_, limit, _ := utils.Page(1, queryInt(c, "limit", 50), 50)
	transactions := []models.PointTransaction{}
	err := db.Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to load point transactions", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Points balance", pointsResponse{
		CustomerID:    customer.ID,
		PointsBalance: customer.PointsBalance,
		Transactions:  transactions,
	})
}
