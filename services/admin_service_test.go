package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
)

func TestAdminDashboardAndListings(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.db)
	owner := models.User{TenantID: f.tenant.ID, Email: "owner@x.com", PasswordHash: "x", FullName: "Owner"}
	require.NoError(t, f.db.Create(&owner).Error)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dash.TotalRestaurants)
	assert.EqualValues(t, 1, dash.ActiveRestaurants)
	assert.EqualValues(t, 2, dash.TotalUsers)
	assert.EqualValues(t, 2, dash.ActiveUsers)

	restaurants, err := svc.Restaurants(ctx, 1, 0, "pho")
	require.NoError(t, err)
	require.Len(t, restaurants.Data, 1)
	assert.Equal(t, 5, restaurants.Limit)
	assert.Equal(t, "Pho House", restaurants.Data[0].Name)
	assert.EqualValues(t, 1, restaurants.Data[0].BranchCount)

	customers, err := svc.Users(ctx, 1, 0, "", models.RoleCustomer)
	require.NoError(t, err)
	require.Len(t, customers.Data, 1)
	assert.Equal(t, "guest@example.com", customers.Data[0].Email)
	assert.Equal(t, "Pho House", customers.Data[0].TenantName)

	revenue, err := svc.Revenue(ctx, 1, 0, "")
	require.NoError(t, err)
	assert.Equal(t, "today", revenue.Period)
	_, err = svc.Revenue(ctx, 1, 0, "decade")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestAdminUpdateRestaurantRejectsTakenEmail(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.db)

	taken := "guest@example.com"
	err := svc.UpdateRestaurant(ctx, f.tenant.ID, RestaurantUpdate{OwnerEmail: &taken})
	// the first user of the tenant is the owner here, so the address is its own
	require.NoError(t, err)

	other := models.User{TenantID: "elsewhere", Email: "other@x.com", PasswordHash: "x", FullName: "Other"}
	require.NoError(t, f.db.Create(&other).Error)
	taken = "other@x.com"
	err = svc.UpdateRestaurant(ctx, f.tenant.ID, RestaurantUpdate{OwnerEmail: &taken})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.EqualError(t, err, "Email already in use by another user")

	name := "Pho Palace"
	require.NoError(t, svc.UpdateRestaurant(ctx, f.tenant.ID, RestaurantUpdate{TenantName: &name}))
	var tenant models.Tenant
	f.reload(t, &tenant, f.tenant.ID)
	assert.Equal(t, "Pho Palace", tenant.Name)
}

func TestAdminUpdateUserSwapsRole(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminService(f.db)

	chef := models.RoleChef
	require.NoError(t, svc.UpdateUser(ctx, f.customer.UserID, UserUpdate{Role: &chef}))

	role, err := ResolveRole(f.db, f.customer.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleChef, role)

	var customers int64
	f.db.Model(&models.Customer{}).Where("user_id = ?", f.customer.UserID).Count(&customers)
	assert.EqualValues(t, 0, customers)

	var staff models.Staff
	require.NoError(t, f.db.Where("user_id = ?", f.customer.UserID).First(&staff).Error)
	assert.Equal(t, f.branch.ID, staff.BranchID)

	require.NoError(t, svc.SetUserStatus(ctx, f.customer.UserID, models.StatusInactive))
	f.reload(t, &staff, staff.ID)
	assert.Equal(t, models.StatusInactive, staff.Status)
}

func TestAdminDeleteRestaurantCascades(t *testing.T) {
	f := newFixture(t)
	_, bill := pendingBill(t, f, models.BillCashPending, models.PaymentCash)
	_, err := NewPaymentService(f.db, nil).ConfirmCashPayment(ctx, f.tenant.ID, bill.ID)
	require.NoError(t, err)

	require.NoError(t, NewAdminService(f.db).DeleteRestaurant(ctx, f.tenant.ID))

	for _, m := range models.All() {
		var n int64
		require.NoError(t, f.db.Model(m).Count(&n).Error)
		assert.EqualValues(t, 0, n, "%T rows left", m)
	}

	err = NewAdminService(f.db).DeleteRestaurant(ctx, f.tenant.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestAdminDeleteUserDetachesSessions(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, f.table.ID, &f.customer.ID)

	require.NoError(t, NewAdminService(f.db).DeleteUser(ctx, f.customer.UserID))

	var s models.Session
	f.reload(t, &s, session.ID)
	assert.Nil(t, s.CustomerID)

	var users int64
	f.db.Model(&models.User{}).Where("id = ?", f.customer.UserID).Count(&users)
	assert.EqualValues(t, 0, users)
}
