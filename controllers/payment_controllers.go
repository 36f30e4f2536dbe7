package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
)

// PaymentController lets cashiers settle cash and bank-transfer bills.
type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

// GetCashPending lists bills waiting for cash collection at a branch.
func (pc *PaymentController) GetCashPending(c *gin.Context) {
	branchID, ok := requireBranchQuery(c)
	if !ok {
		return
	}
	bills, err := pc.Payments.ListCashPending(c.Request.Context(), tenantOf(c), branchID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cash pending bills", bills)
}

func (pc *PaymentController) ConfirmCash(c *gin.Context) {
	result, err := pc.Payments.ConfirmCashPayment(c.Request.Context(), tenantOf(c), c.Param("bill_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cash payment confirmed", result)
}

// GetQrPaid lists self-reported bank transfers waiting for verification.
func (pc *PaymentController) GetQrPaid(c *gin.Context) {
	branchID, ok := requireBranchQuery(c)
	if !ok {
		return
	}
	bills, err := pc.Payments.ListQrPaid(c.Request.Context(), tenantOf(c), branchID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "QR paid bills", bills)
}

func (pc *PaymentController) VerifyQr(c *gin.Context) {
	result, err := pc.Payments.VerifyQrPayment(c.Request.Context(), tenantOf(c), c.Param("bill_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "QR payment verified", result)
}

func requireBranchQuery(c *gin.Context) (string, bool) {
	branchID := c.Query("branch_id")
	if branchID == "" {
		utils.RespondAppError(c, utils.NewValidation("branch_id is required"))
		return "", false
	}
	return branchID, true
}
