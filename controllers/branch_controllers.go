package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

type BranchController struct {
	DB *gorm.DB
}

func NewBranchController(db *gorm.DB) *BranchController {
	return &BranchController{DB: db}
}

// BranchView is a branch with the number of menu items it serves.
type BranchView struct {
	models.Branch
	MenuItemCount int64 `json:"menu_item_count"`
}

type branchRequest struct {
	BranchName        *string          `json:"branch_name" binding:"omitempty,min=1,max=255"`
	Address           *string          `json:"address"`
	Province          *string          `json:"province"`
	Phone             *string          `json:"phone"`
	ManagerName       *string          `json:"manager_name"`
	CashbackPercent   *decimal.Decimal `json:"cashback_percent"`
	Image             *string          `json:"image"`
	Status            *string          `json:"status" binding:"omitempty,oneof=active inactive"`
	BankCode          *string          `json:"bank_code"`
	BankAccountNumber *string          `json:"bank_account_number"`
	BankAccountName   *string          `json:"bank_account_name"`
	OpeningHours      *string          `json:"opening_hours"`
	ClosingHours      *string          `json:"closing_hours"`
	GoogleMapsLink    *string          `json:"google_maps_link"`
}

// apply copies the fields present in the request onto branch and validates the result.
func (r *branchRequest) apply(branch *models.Branch) error {
	setString(&branch.Name, r.BranchName)
	setString(&branch.Address, r.Address)
	setString(&branch.Province, r.Province)
	setString(&branch.Phone, r.Phone)
	setString(&branch.ManagerName, r.ManagerName)
	setString(&branch.Status, r.Status)
	setString(&branch.OpeningHours, r.OpeningHours)
	setString(&branch.ClosingHours, r.ClosingHours)
	setString(&branch.GoogleMapsLink, r.GoogleMapsLink)
	if r.Image != nil {
		branch.Image = r.Image
	}
	if r.BankCode != nil {
		branch.BankCode = r.BankCode
	}
	if r.BankAccountNumber != nil {
		branch.BankAccountNumber = r.BankAccountNumber
	}
	if r.BankAccountName != nil {
		branch.BankAccountName = r.BankAccountName
	}
	if r.CashbackPercent != nil {
		branch.CashbackPercent = *r.CashbackPercent
	}

	if branch.Name == "" {
		return utils.NewValidation("BranchName is required")
	}
	if err := utils.ValidatePercent("Cashback percent", branch.CashbackPercent); err != nil {
		return err
	}
	for _, clock := range []string{branch.OpeningHours, branch.ClosingHours} {
		if clock == "" {
			continue
		}
		if _, err := utils.ParseClock(clock); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (bc *BranchController) CreateBranch(c *gin.Context) {
	var req branchRequest
	if !bind(c, &req) {
		return
	}

	branch := models.Branch{
		TenantID:        tenantOf(c),
		Status:          models.StatusActive,
		CashbackPercent: decimal.NewFromInt(1),
	}
	if err := req.apply(&branch); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := bc.DB.WithContext(c.Request.Context()).Create(&branch).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to create branch", err))
		return
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"branch": branch.ID,
		"tenant": branch.TenantID,
	}).Info("Branch created")
	utils.RespondJSON(c, http.StatusCreated, "Branch created successfully", BranchView{Branch: branch})
}

// GetBranches lists the caller's branches with their menu item counts.
func (bc *BranchController) GetBranches(c *gin.Context) {
	db := bc.DB.WithContext(c.Request.Context())
	var branches []models.Branch
	if err := db.Where("tenant_id = ?", tenantOf(c)).Order("created_at ASC").Find(&branches).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to list branches", err))
		return
	}
	views, err := withMenuCounts(db, branches)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of branches", views)
}

func (bc *BranchController) GetBranch(c *gin.Context) {
	db := bc.DB.WithContext(c.Request.Context())
	branch, err := ownedBranch(c, db, c.Param("branch_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	views, err := withMenuCounts(db, []models.Branch{*branch})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Branch detail", views[0])
}

func (bc *BranchController) UpdateBranch(c *gin.Context) {
	db := bc.DB.WithContext(c.Request.Context())
	branch, err := ownedBranch(c, db, c.Param("branch_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req branchRequest
	if !bind(c, &req) {
		return
	}
	if err := req.apply(branch); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Save(branch).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to update branch", err))
		return
	}

	views, err := withMenuCounts(db, []models.Branch{*branch})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Branch updated successfully", views[0])
}

// DeleteBranch removes an empty branch. Branches that still own tables or menu items are kept.
func (bc *BranchController) DeleteBranch(c *gin.Context) {
	db := bc.DB.WithContext(c.Request.Context())
	branch, err := ownedBranch(c, db, c.Param("branch_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var tables, items int64
		if err := tx.Model(&models.DiningTable{}).Where("branch_id = ?", branch.ID).Count(&tables).Error; err != nil {
			return utils.NewInternal("failed to count tables", err)
		}
		if err := tx.Model(&models.MenuItem{}).Where("branch_id = ?", branch.ID).Count(&items).Error; err != nil {
			return utils.NewInternal("failed to count menu items", err)
		}
		if tables > 0 || items > 0 {
			return utils.NewConflict("Branch still has %d tables and %d menu items", tables, items)
		}
		if err := tx.Where("branch_id = ?", branch.ID).Delete(&models.Staff{}).Error; err != nil {
			return utils.NewInternal("failed to delete staff", err)
		}
		if err := tx.Delete(branch).Error; err != nil {
			return utils.NewInternal("failed to delete branch", err)
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithField("branch", branch.ID).Info("Branch deleted")
	utils.RespondJSON(c, http.StatusOK, "Branch deleted successfully", nil)
}

// withMenuCounts attaches the number of menu items of each branch.
func withMenuCounts(db *gorm.DB, branches []models.Branch) ([]BranchView, error) {
	views := make([]BranchView, 0, len(branches))
	if len(branches) == 0 {
		return views, nil
	}

	ids := make([]string, 0, len(branches))
	for _, b := range branches {
		ids = append(ids, b.ID)
	}
	var rows []struct {
		BranchID string
		Count    int64
	}
	err := db.Model(&models.MenuItem{}).
		Select("branch_id, COUNT(*) AS count").
		Where("branch_id IN ?", ids).
		Group("branch_id").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.NewInternal("failed to count menu items", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.BranchID] = r.Count
	}

	for _, b := range branches {
		views = append(views, BranchView{Branch: b, MenuItemCount: counts[b.ID]})
	}
	return views, nil
}
