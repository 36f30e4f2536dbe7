package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// MenuItemView is a menu item with its category name and discounted price.
type MenuItemView struct {
	models.MenuItem
	CategoryName   string          `json:"category_name"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

func newMenuItemView(item models.MenuItem) MenuItemView {
	return MenuItemView{
		MenuItem:       item,
		CategoryName:   item.Category.Name,
		EffectivePrice: utils.SnapshotPrice(item.Price, item.DiscountPercent),
	}
}

func menuItemViews(items []models.MenuItem) []MenuItemView {
	views := make([]MenuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, newMenuItemView(item))
	}
	return views
}

func validateMenuPricing(item *models.MenuItem) error {
	if err := utils.ValidatePrice(item.Price); err != nil {
		return err
	}
	return utils.ValidatePercent("Discount percent", item.DiscountPercent)
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var req struct {
		CategoryID      string           `json:"category_id" binding:"required"`
		BranchID        string           `json:"branch_id" binding:"required"`
		ItemName        string           `json:"item_name" binding:"required,max=255"`
		Description     *string          `json:"description"`
		Price           *decimal.Decimal `json:"price" binding:"required"`
		DiscountPercent *decimal.Decimal `json:"discount_percent"`
		Status          string           `json:"status" binding:"omitempty,oneof=available active unavailable"`
		Image           *string          `json:"image"`
	}
	if !bind(c, &req) {
		return
	}

	db := mc.DB.WithContext(c.Request.Context())
	if _, err := ownedBranch(c, db, req.BranchID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	category, err := ownedCategory(c, db, req.CategoryID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	item := models.MenuItem{
		CategoryID:  category.ID,
		BranchID:    req.BranchID,
		Name:        req.ItemName,
		Description: req.Description,
		Price:       *req.Price,
		Status:      models.MenuAvailable,
		Image:       req.Image,
	}
	if req.DiscountPercent != nil {
		item.DiscountPercent = *req.DiscountPercent
	}
	if req.Status != "" {
		item.Status = req.Status
	}
	if err := validateMenuPricing(&item); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if err := db.Create(&item).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to create menu item", err))
		return
	}
	item.Category = *category

	utils.InfoLogger.WithFields(map[string]interface{}{
		"menu_item": item.ID,
		"branch":    item.BranchID,
	}).Info("Menu item created")
	utils.RespondJSON(c, http.StatusCreated, "Menu item created successfully", newMenuItemView(item))
}

func (mc *MenuController) GetMenuItem(c *gin.Context) {
	db := mc.DB.WithContext(c.Request.Context())
	item, err := ownedMenuItem(c, db, c.Param("menu_item_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Where("id = ?", item.CategoryID).Limit(1).Find(&item.Category).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to load category", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", newMenuItemView(*item))
}

// GetMenuItemsByCategory lists a category's items, optionally for one branch.
func (mc *MenuController) GetMenuItemsByCategory(c *gin.Context) {
	db := mc.DB.WithContext(c.Request.Context())
	category, err := ownedCategory(c, db, c.Param("category_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	q := db.Preload("Category").Where("category_id = ?", category.ID)
	if branchID := c.Query("branch_id"); branchID != "" {
		if _, err := ownedBranch(c, db, branchID); err != nil {
			utils.RespondAppError(c, err)
			return
		}
		q = q.Where("branch_id = ?", branchID)
	}

	var items []models.MenuItem
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to list menu items", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", menuItemViews(items))
}

func (mc *MenuController) GetMenuItemsByBranch(c *gin.Context) {
	db := mc.DB.WithContext(c.Request.Context())
	branch, err := ownedBranch(c, db, c.Param("branch_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var items []models.MenuItem
	if err := db.Preload("Category").Where("branch_id = ?", branch.ID).Order("name ASC").Find(&items).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to list menu items", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", menuItemViews(items))
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	var req struct {
		ItemName        *string          `json:"item_name" binding:"omitempty,min=1,max=255"`
		Description     *string          `json:"description"`
		Price           *decimal.Decimal `json:"price"`
		DiscountPercent *decimal.Decimal `json:"discount_percent"`
		Status          *string          `json:"status" binding:"omitempty,oneof=available active unavailable"`
		Image           *string          `json:"image"`
		CategoryID      *string          `json:"category_id"`
	}
	if !bind(c, &req) {
		return
	}

	db := mc.DB.WithContext(c.Request.Context())
	item, err := ownedMenuItem(c, db, c.Param("menu_item_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	setString(&item.Name, req.ItemName)
	setString(&item.Status, req.Status)
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Image != nil {
		item.Image = req.Image
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.DiscountPercent != nil {
		item.DiscountPercent = *req.DiscountPercent
	}
	if req.CategoryID != nil {
		if _, err := ownedCategory(c, db, *req.CategoryID); err != nil {
			utils.RespondAppError(c, err)
			return
		}
		item.CategoryID = *req.CategoryID
	}
	if err := validateMenuPricing(item); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if err := db.Omit("Category").Save(item).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to update menu item", err))
		return
	}
	if err := db.Where("id = ?", item.CategoryID).Limit(1).Find(&item.Category).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to load category", err))
		return
	}

	utils.InfoLogger.Printf("Menu item %s updated", item.ID)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated successfully", newMenuItemView(*item))
}

// DeleteMenuItem removes an item that was never ordered. Ordered items should be marked unavailable instead.
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	db := mc.DB.WithContext(c.Request.Context())
	item, err := ownedMenuItem(c, db, c.Param("menu_item_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var ordered int64
		if err := tx.Model(&models.OrderItem{}).Where("menu_item_id = ?", item.ID).Count(&ordered).Error; err != nil {
			return utils.NewInternal("failed to count order items", err)
		}
		if ordered > 0 {
			return utils.NewConflict("Menu item %s has been ordered; mark it unavailable instead", item.Name)
		}
		if err := tx.Delete(item).Error; err != nil {
			return utils.NewInternal("failed to delete menu item", err)
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Menu item %s deleted", item.ID)
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", nil)
}
