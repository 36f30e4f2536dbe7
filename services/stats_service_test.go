package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
)

func TestTenantStats(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T2")
	_, bill := pendingBill(t, f, models.BillCashPending, models.PaymentCash)
	_, err := NewPaymentService(f.db, nil).ConfirmCashPayment(ctx, f.tenant.ID, bill.ID)
	require.NoError(t, err)

	stats, err := NewStatsService(f.db).TenantStats(ctx, f.tenant.ID, f.tenant.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalBranches)
	assert.EqualValues(t, 1, stats.ActiveBranches)
	assert.EqualValues(t, 2, stats.TotalTables)
	assert.EqualValues(t, 1, stats.TodayOrders)
	assert.True(t, stats.TodayRevenue.Equal(dec("132000")), stats.TodayRevenue.String())
	assert.True(t, stats.MonthlyRevenue.Equal(dec("132000")))

	_, err = NewStatsService(f.db).TenantStats(ctx, "intruder", f.tenant.ID)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestCashbackSettings(t *testing.T) {
	f := newFixture(t)
	svc := NewStatsService(f.db)

	updated, err := svc.UpdateCashbackSettings(ctx, f.tenant.ID, f.tenant.ID, dec("5.5"))
	require.NoError(t, err)
	assert.True(t, updated.CashbackPercent.Equal(dec("5.5")))

	got, err := svc.CashbackSettings(ctx, f.tenant.ID, f.tenant.ID)
	require.NoError(t, err)
	assert.True(t, got.CashbackPercent.Equal(dec("5.5")))

	_, err = svc.UpdateCashbackSettings(ctx, f.tenant.ID, f.tenant.ID, dec("101"))
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.UpdateCashbackSettings(ctx, "intruder", f.tenant.ID, dec("2"))
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}
