package services

import (
	"errors"

	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// first loads a row by primary key, mapping a miss to NotFound("<entity> not found").
func first(tx *gorm.DB, dest interface{}, id, entity string) error {
	err := tx.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFound("%s not found", entity)
	}
	if err != nil {
		return utils.NewInternal("failed to load "+entity, err)
	}
	return nil
}

// firstForUpdate is first with a row lock held until the transaction ends.
func firstForUpdate(tx *gorm.DB, dest interface{}, id, entity string) error {
	return first(tx.Clauses(clause.Locking{Strength: "UPDATE"}), dest, id, entity)
}

func findTable(tx *gorm.DB, id string) (*models.DiningTable, error) {
	var table models.DiningTable
	if err := first(tx, &table, id, "Table"); err != nil {
		return nil, err
	}
	return &table, nil
}

func findBranch(tx *gorm.DB, id string) (*models.Branch, error) {
	var branch models.Branch
	if err := first(tx, &branch, id, "Branch"); err != nil {
		return nil, err
	}
	return &branch, nil
}

func findSession(tx *gorm.DB, id string) (*models.Session, error) {
	var session models.Session
	if err := first(tx, &session, id, "Session"); err != nil {
		return nil, err
	}
	return &session, nil
}

// tableChain resolves a session's table and branch.
func tableChain(tx *gorm.DB, session *models.Session) (*models.DiningTable, *models.Branch, error) {
	table, err := findTable(tx, session.TableID)
	if err != nil {
		return nil, nil, err
	}
	branch, err := findBranch(tx, table.BranchID)
	if err != nil {
		return nil, nil, err
	}
	return table, branch, nil
}

// checkTenant rejects access to a branch owned by another tenant.
func checkTenant(branch *models.Branch, tenantID, what string) error {
	if branch.TenantID != tenantID {
		return utils.NewForbidden("You don't have access to this %s", what)
	}
	return nil
}

// tenantBranch loads a branch and checks it belongs to tenantID.
func tenantBranch(tx *gorm.DB, tenantID, branchID string) (*models.Branch, error) {
	branch, err := findBranch(tx, branchID)
	if err != nil {
		return nil, err
	}
	if err := checkTenant(branch, tenantID, "branch"); err != nil {
		return nil, err
	}
	return branch, nil
}

// asAppError keeps business errors and wraps anything else as Internal.
func asAppError(msg string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return utils.NewInternal(msg, err)
}
