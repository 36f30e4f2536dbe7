package database

import (
	"fmt"

	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

const activeSessionIndex = "ux_sessions_active_table"

// EnsureConstraints installs the "one active session per table" uniqueness rule
// in the form the current dialect supports. It is safe to call repeatedly.
func EnsureConstraints(db *gorm.DB) error {
	dialect := db.Dialector.Name()

	var stmts []string
	switch dialect {
	case "postgres", "sqlite":
		stmts = []string{
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON sessions (table_id) WHERE status = '%s'`,
				activeSessionIndex, models.SessionActive),
		}
	case "mysql":
		// MySQL has no partial indexes; a generated column is NULL for inactive rows
		// and NULLs never collide in a unique index.
		m := db.Migrator()
		if !m.HasColumn(&models.Session{}, "active_table_id") {
			stmts = append(stmts, fmt.Sprintf(
				`ALTER TABLE sessions ADD COLUMN active_table_id VARCHAR(36) AS (IF(status = '%s', table_id, NULL)) STORED`,
				models.SessionActive))
		}
		if !m.HasIndex(&models.Session{}, activeSessionIndex) {
			stmts = append(stmts, fmt.Sprintf(`CREATE UNIQUE INDEX %s ON sessions (active_table_id)`, activeSessionIndex))
		}
	default:
		utils.ErrorLogger.Warnf("No active-session constraint for dialect %s", dialect)
		return nil
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing constraint: %v\nStatement: %s", err, stmt)
			return err
		}
	}
	utils.InfoLogger.WithField("dialect", dialect).Info("Active session constraint verified")
	return nil
}
