package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

// CreateCategory adds a category shared by every branch of the caller's tenant.
func (mc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		CategoryName string  `json:"category_name" binding:"required,max=100"`
		Description  *string `json:"description"`
		Status       string  `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	if !bind(c, &req) {
		return
	}

	category := models.Category{
		TenantID:    tenantOf(c),
		Name:        req.CategoryName,
		Description: req.Description,
		Status:      models.StatusActive,
	}
	if req.Status != "" {
		category.Status = req.Status
	}
	if err := mc.DB.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to create category", err))
		return
	}

	utils.InfoLogger.Printf("Category %s created", category.Name)
	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", category)
}

func (mc *MenuCategoryController) GetCategories(c *gin.Context) {
	var categories []models.Category
	err := mc.DB.WithContext(c.Request.Context()).
		Where("tenant_id = ?", tenantOf(c)).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		utils.RespondAppError(c, utils.NewInternal("failed to list categories", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}
