package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// TenantStats feeds the owner dashboard.
type TenantStats struct {
	TotalBranches  int64           `json:"total_branches"`
	TotalTables    int64           `json:"total_tables"`
	ActiveBranches int64           `json:"active_branches"`
	TodayRevenue   decimal.Decimal `json:"today_revenue"`
	TodayOrders    int64           `json:"today_orders"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
}

type CashbackSettings struct {
	TenantID        string          `json:"tenant_id"`
	CashbackPercent decimal.Decimal `json:"cashback_percent"`
}

// StatsService reads tenant dashboard figures and cashback settings.
type StatsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db, now: time.Now}
}

// TenantStats counts branches, tables and today's orders, and sums paid or
// verified bills by the day their session ended.
func (s *StatsService) TenantStats(ctx context.Context, callerTenantID, tenantID string) (*TenantStats, error) {
	if callerTenantID != tenantID {
		return nil, utils.NewForbidden("You don't have access to this tenant")
	}
	db := s.db.WithContext(ctx)
	now := s.now()
	today := utils.BeginningOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	month := utils.BeginningOfMonth(now)

	stats := &TenantStats{}
	if err := db.Model(&models.Branch{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalBranches).Error; err != nil {
		return nil, utils.NewInternal("failed to count branches", err)
	}
	if err := db.Model(&models.Branch{}).Where("tenant_id = ? AND status = ?", tenantID, models.StatusActive).
		Count(&stats.ActiveBranches).Error; err != nil {
		return nil, utils.NewInternal("failed to count branches", err)
	}
	if err := db.Model(&models.DiningTable{}).
		Joins("JOIN branches ON branches.id = dining_tables.branch_id").
		Where("branches.tenant_id = ?", tenantID).Count(&stats.TotalTables).Error; err != nil {
		return nil, utils.NewInternal("failed to count tables", err)
	}

	var err error
	if stats.TodayRevenue, err = revenue(db, tenantID, "sessions.end_time >= ? AND sessions.end_time < ?", today, tomorrow); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = revenue(db, tenantID, "sessions.end_time >= ?", month); err != nil {
		return nil, err
	}

	if err := tenantOrders(db, tenantID).
		Where("orders.order_time >= ? AND orders.order_time < ?", today, tomorrow).
		Count(&stats.TodayOrders).Error; err != nil {
		return nil, utils.NewInternal("failed to count orders", err)
	}
	return stats, nil
}

// tenantOrders scopes orders to a tenant through session, table and branch.
func tenantOrders(db *gorm.DB, tenantID string) *gorm.DB {
	return db.Model(&models.Order{}).
		Joins("JOIN sessions ON sessions.id = orders.session_id").
		Joins("JOIN dining_tables ON dining_tables.id = sessions.table_id").
		Joins("JOIN branches ON branches.id = dining_tables.branch_id").
		Where("branches.tenant_id = ?", tenantID)
}

// revenue sums settled (paid or verified) bill totals of a tenant.
func revenue(db *gorm.DB, tenantID string, where string, args ...interface{}) (decimal.Decimal, error) {
	q := db.Model(&models.Bill{}).
		Joins("JOIN sessions ON sessions.id = bills.session_id").
		Joins("JOIN dining_tables ON dining_tables.id = sessions.table_id").
		Joins("JOIN branches ON branches.id = dining_tables.branch_id").
		Where("branches.tenant_id = ? AND bills.status IN ?", tenantID, []string{models.BillPaid, models.BillVerified})
	if where != "" {
		q = q.Where(where, args...)
	}

	var total decimal.NullDecimal
	if err := q.Select("COALESCE(SUM(bills.total_amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, utils.NewInternal("failed to sum revenue", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (s *StatsService) CashbackSettings(ctx context.Context, callerTenantID, tenantID string) (*CashbackSettings, error) {
	if callerTenantID != tenantID {
		return nil, utils.NewForbidden("You don't have access to this tenant")
	}
	var tenant models.Tenant
	if err := first(s.db.WithContext(ctx), &tenant, tenantID, "Tenant"); err != nil {
		return nil, err
	}
	return &CashbackSettings{TenantID: tenant.ID, CashbackPercent: tenant.CashbackPercent}, nil
}

func (s *StatsService) UpdateCashbackSettings(ctx context.Context, callerTenantID, tenantID string, percent decimal.Decimal) (*CashbackSettings, error) {
	if callerTenantID != tenantID {
		return nil, utils.NewForbidden("You don't have access to this tenant")
	}
	if err := utils.ValidatePercent("Cashback percent", percent); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := firstForUpdate(tx, &tenant, tenantID, "Tenant"); err != nil {
			return err
		}
		return tx.Model(&tenant).Update("cashback_percent", percent).Error
	})
	if err != nil {
		return nil, asAppError("failed to update cashback", err)
	}
	return &CashbackSettings{TenantID: tenant.ID, CashbackPercent: percent}, nil
}
