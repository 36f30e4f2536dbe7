package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB       *gorm.DB
	Notifier services.Notifier
}

func NewTableController(db *gorm.DB, notifier services.Notifier) *TableController {
	return &TableController{DB: db, Notifier: services.NotifierOrNoop(notifier)}
}

// CreateTable adds a table to a branch together with its QR code.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required,max=50"`
		Capacity    int    `json:"capacity" binding:"min=0,max=100"`
		Status      string `json:"status" binding:"omitempty,oneof=available occupied reserved"`
	}
	if !bind(c, &req) {
		return
	}

	db := tc.DB.WithContext(c.Request.Context())
	branch, err := ownedBranch(c, db, c.Param("branch_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	table := models.DiningTable{
		BranchID:    branch.ID,
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Status:      models.TableAvailable,
	}
	if req.Status != "" {
		table.Status = req.Status
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&table).Error; err != nil {
			return err
		}
		qr := models.QRCode{
			TableID:  table.ID,
			Content:  models.QRContent(branch.ID, table.ID),
			IsActive: true,
		}
		return tx.Create(&qr).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to create table", err))
		return
	}

	tc.Notifier.Publish(branch.TenantID, services.EventTableUpdate, table)
	utils.InfoLogger.WithFields(map[string]interface{}{
		"table":  table.TableNumber,
		"branch": branch.ID,
		"status": table.Status,
	}).Info("New table created")
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetTables lists the tables of one branch.
func (tc *TableController) GetTables(c *gin.Context) {
	db := tc.DB.WithContext(c.Request.Context())
	branch, err := ownedBranch(c, db, c.Param("branch_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var tables []models.DiningTable
	if err := db.Where("branch_id = ?", branch.ID).Order("table_number ASC").Find(&tables).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to list tables", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	table, err := ownedTable(c, tc.DB.WithContext(c.Request.Context()), c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	var req struct {
		TableNumber *string `json:"table_number" binding:"omitempty,min=1,max=50"`
		Capacity    *int    `json:"capacity" binding:"omitempty,min=0,max=100"`
		Status      *string `json:"status" binding:"omitempty,oneof=available occupied reserved"`
	}
	if !bind(c, &req) {
		return
	}

	db := tc.DB.WithContext(c.Request.Context())
	table, err := ownedTable(c, db, c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	setString(&table.TableNumber, req.TableNumber)
	setString(&table.Status, req.Status)
	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if err := db.Save(table).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to update table", err))
		return
	}

	tc.Notifier.Publish(tenantOf(c), services.EventTableUpdate, table)
	utils.InfoLogger.Printf("Table %s updated (status=%s)", table.TableNumber, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", table)
}

// DeleteTable removes a table that never hosted a session, with its QR code.
func (tc *TableController) DeleteTable(c *gin.Context) {
	db := tc.DB.WithContext(c.Request.Context())
	table, err := ownedTable(c, db, c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var sessions int64
		if err := tx.Model(&models.Session{}).Where("table_id = ?", table.ID).Count(&sessions).Error; err != nil {
			return utils.NewInternal("failed to count sessions", err)
		}
		if sessions > 0 {
			return utils.NewConflict("Table %s has session history and cannot be deleted", table.TableNumber)
		}
		if err := tx.Where("table_id = ?", table.ID).Delete(&models.QRCode{}).Error; err != nil {
			return utils.NewInternal("failed to delete QR code", err)
		}
		if err := tx.Delete(table).Error; err != nil {
			return utils.NewInternal("failed to delete table", err)
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %s deleted", table.TableNumber)
	utils.RespondJSON(c, http.StatusOK, "Table deleted successfully", nil)
}

// GetQRCode returns the QR code content printed on a table.
func (tc *TableController) GetQRCode(c *gin.Context) {
	db := tc.DB.WithContext(c.Request.Context())
	table, err := ownedTable(c, db, c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var qr models.QRCode
	if err := db.Where("table_id = ?", table.ID).Limit(1).Find(&qr).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to load QR code", err))
		return
	}
	if qr.ID == "" {
		utils.RespondAppError(c, utils.NewNotFound("QR code not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table QR code", gin.H{
		"qr_id":        qr.ID,
		"table_id":     table.ID,
		"table_number": table.TableNumber,
		"branch_id":    table.BranchID,
		"qr_content":   qr.Content,
		"is_active":    qr.IsActive,
	})
}
