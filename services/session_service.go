package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// SessionService maps tables to their single active dining session.
type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// GetOrCreateActiveSession returns the table's active session, creating one and
// marking the table occupied when there is none. The bool reports creation.
func (s *SessionService) GetOrCreateActiveSession(ctx context.Context, tableID string, customerID *string) (*models.Session, bool, error) {
	var (
		session *models.Session
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, created, err = getOrCreateActiveSession(tx, tableID, customerID, false)
		return err
	})
	if err != nil {
		return nil, false, asAppError("failed to open session", err)
	}
	return session, created, nil
}

// getOrCreateActiveSession serialises on the table row so two requests for the
// same table cannot both create a session. requireOrderable rejects tables that
// are neither available nor occupied.
func getOrCreateActiveSession(tx *gorm.DB, tableID string, customerID *string, requireOrderable bool) (*models.Session, bool, error) {
	var table models.DiningTable
	if err := firstForUpdate(tx, &table, tableID, "Table"); err != nil {
		return nil, false, err
	}

	if customerID != nil && *customerID == "" {
		customerID = nil
	}
	if customerID != nil {
		var customer models.Customer
		if err := first(tx, &customer, *customerID, "Customer"); err != nil {
			return nil, false, err
		}
	}

	if requireOrderable && table.Status != models.TableAvailable && table.Status != models.TableOccupied {
		return nil, false, utils.NewConflict("Table is not available for ordering")
	}

	var existing models.Session
	err := tx.Where("table_id = ? AND status = ?", tableID, models.SessionActive).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, utils.NewInternal("failed to load active session", err)
	}

	session := &models.Session{
		TableID:    tableID,
		CustomerID: customerID,
		Status:     models.SessionActive,
	}
	if err := tx.Create(session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, utils.NewConflict("Table already has an active session")
		}
		return nil, false, utils.NewInternal("failed to create session", err)
	}

	if table.Status != models.TableOccupied {
		if err := tx.Model(&table).Update("status", models.TableOccupied).Error; err != nil {
			return nil, false, utils.NewInternal("failed to occupy table", err)
		}
	}

	fields := logrus.Fields{"session": session.ID, "table": table.TableNumber}
	if customerID != nil {
		fields["customer"] = *customerID
	}
	utils.InfoLogger.WithFields(fields).Info("Session opened")
	return session, true, nil
}

// lockSession reloads a session under a row lock.
func lockSession(tx *gorm.DB, sessionID string) (*models.Session, error) {
	var session models.Session
	if err := firstForUpdate(tx, &session, sessionID, "Session"); err != nil {
		return nil, err
	}
	return &session, nil
}
