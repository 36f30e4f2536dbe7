package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/scan-order/database"
	"github.com/yeremiapane/scan-order/models"
	"gorm.io/gorm"
)

var ctx = context.Background()

type fixture struct {
	db       *gorm.DB
	tenant   models.Tenant
	branch   models.Branch
	table    models.DiningTable
	burger   models.MenuItem
	pizza    models.MenuItem
	customer models.Customer
}

// newFixture seeds one tenant with a branch (1% cashback), one table, a
// 50,000 burger, a 70,000 pizza and a registered customer.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	f := &fixture{db: db}
	f.tenant = models.Tenant{Name: "Pho House", Status: models.StatusActive, CashbackPercent: decimal.NewFromInt(1)}
	require.NoError(t, db.Create(&f.tenant).Error)

	bank, account, holder := "VCB", "0123456789", "PHO HOUSE"
	f.branch = models.Branch{
		TenantID:          f.tenant.ID,
		Name:              "District 1",
		Address:           "1 Le Loi",
		Status:            models.StatusActive,
		CashbackPercent:   decimal.NewFromInt(1),
		BankCode:          &bank,
		BankAccountNumber: &account,
		BankAccountName:   &holder,
		OpeningHours:      "08:00",
		ClosingHours:      "22:00",
	}
	require.NoError(t, db.Create(&f.branch).Error)

	f.table = *f.addTable(t, "T1")

	category := models.Category{TenantID: f.tenant.ID, Name: "Mains", Status: models.StatusActive}
	require.NoError(t, db.Create(&category).Error)
	f.burger = models.MenuItem{CategoryID: category.ID, BranchID: f.branch.ID, Name: "Burger", Price: decimal.NewFromInt(50000), DiscountPercent: decimal.Zero, Status: models.MenuAvailable}
	f.pizza = models.MenuItem{CategoryID: category.ID, BranchID: f.branch.ID, Name: "Pizza", Price: decimal.NewFromInt(70000), DiscountPercent: decimal.Zero, Status: models.MenuAvailable}
	require.NoError(t, db.Create(&f.burger).Error)
	require.NoError(t, db.Create(&f.pizza).Error)

	user := models.User{TenantID: f.tenant.ID, Email: "guest@example.com", PasswordHash: "x", FullName: "Guest"}
	require.NoError(t, db.Create(&user).Error)
	f.customer = models.Customer{UserID: user.ID, PointsBalance: decimal.Zero}
	require.NoError(t, db.Create(&f.customer).Error)
	return f
}

func (f *fixture) addTable(t *testing.T, number string) *models.DiningTable {
	t.Helper()
	table := models.DiningTable{BranchID: f.branch.ID, TableNumber: number, Capacity: 4, Status: models.TableAvailable}
	require.NoError(t, f.db.Create(&table).Error)
	return &table
}

// openSession opens (or reuses) the active session at a table.
func (f *fixture) openSession(t *testing.T, tableID string, customerID *string) *models.Session {
	t.Helper()
	session, _, err := NewSessionService(f.db).GetOrCreateActiveSession(ctx, tableID, customerID)
	require.NoError(t, err)
	return session
}

func (f *fixture) order(t *testing.T, sessionID string, items ...ItemInput) *OrderSnapshot {
	t.Helper()
	snapshot, err := NewOrderService(f.db, nil).AddItemsToSession(ctx, sessionID, items)
	require.NoError(t, err)
	return snapshot
}

func (f *fixture) reload(t *testing.T, dest interface{}, id string) {
	t.Helper()
	require.NoError(t, f.db.Where("id = ?", id).First(dest).Error)
}

func item(m models.MenuItem, qty int) ItemInput {
	return ItemInput{MenuItemID: m.ID, Quantity: qty}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type published struct {
	tenantID string
	event    string
	data     interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingNotifier) Publish(tenantID, event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{tenantID, event, data})
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.events {
		names = append(names, e.event)
	}
	return names
}
