package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/middlewares"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// bind decodes the body strictly and writes a 400 on failure.
func bind(c *gin.Context, obj interface{}) bool {
	if err := utils.BindStrictJSON(c, obj); err != nil {
		utils.RespondAppError(c, err)
		return false
	}
	return true
}

// load fetches a row by id, mapping a miss to NotFound("<entity> not found").
func load(db *gorm.DB, dest interface{}, id, entity string) error {
	err := db.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFound("%s not found", entity)
	}
	if err != nil {
		return utils.NewInternal("failed to load "+entity, err)
	}
	return nil
}

// ownedBranch loads a branch of the caller's tenant.
func ownedBranch(c *gin.Context, db *gorm.DB, branchID string) (*models.Branch, error) {
	var branch models.Branch
	if err := load(db, &branch, branchID, "Branch"); err != nil {
		return nil, err
	}
	if branch.TenantID != tenantOf(c) {
		return nil, utils.NewForbidden("You don't have access to this branch")
	}
	return &branch, nil
}

// ownedTable loads a table whose branch belongs to the caller's tenant.
func ownedTable(c *gin.Context, db *gorm.DB, tableID string) (*models.DiningTable, error) {
	var table models.DiningTable
	if err := load(db, &table, tableID, "Table"); err != nil {
		return nil, err
	}
	if _, err := ownedBranch(c, db, table.BranchID); err != nil {
		if utils.IsKind(err, utils.KindForbidden) {
			return nil, utils.NewForbidden("You don't have access to this table")
		}
		return nil, err
	}
	return &table, nil
}

func ownedMenuItem(c *gin.Context, db *gorm.DB, menuItemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := load(db, &item, menuItemID, "Menu item"); err != nil {
		return nil, err
	}
	if _, err := ownedBranch(c, db, item.BranchID); err != nil {
		if utils.IsKind(err, utils.KindForbidden) {
			return nil, utils.NewForbidden("You don't have access to this menu item")
		}
		return nil, err
	}
	return &item, nil
}

func ownedCategory(c *gin.Context, db *gorm.DB, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := load(db, &category, categoryID, "Category"); err != nil {
		return nil, err
	}
	if category.TenantID != tenantOf(c) {
		return nil, utils.NewForbidden("You don't have access to this category")
	}
	return &category, nil
}

func tenantOf(c *gin.Context) string {
	return middlewares.TenantID(c)
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
