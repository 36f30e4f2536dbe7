package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
)

func TestGetTableRunningBill(t *testing.T) {
	f := newFixture(t)
	svc := NewBillService(f.db, nil)
	session := f.openSession(t, f.table.ID, nil)
	f.order(t, session.ID, item(f.burger, 1), item(f.pizza, 1))

	running, err := svc.GetTableRunningBill(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, "T1", running.TableNumber)
	assert.Len(t, running.Order.Items, 2)
	assert.Equal(t, 1, running.Order.UnpaidSessionsCount)
	assert.True(t, running.Order.Subtotal.Equal(dec("120000")))
	assert.True(t, running.Order.VAT.Equal(dec("12000")))
	assert.True(t, running.Order.Total.Equal(dec("132000")))
	require.NotNil(t, running.Bill.BillID)
	assert.True(t, running.Bill.TotalAmount.Equal(dec("132000")))
	assert.Equal(t, models.BillPending, running.Bill.Status)

	var bill models.Bill
	f.reload(t, &bill, *running.Bill.BillID)
	assert.True(t, bill.TotalAmount.Equal(dec("132000")), "stored total reconciled")
}

func TestGetTableRunningBillIsIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := NewBillService(f.db, nil)
	session := f.openSession(t, f.table.ID, nil)
	f.order(t, session.ID, item(f.burger, 1), item(f.pizza, 1))

	first, err := svc.GetTableRunningBill(ctx, session.ID)
	require.NoError(t, err)
	var before models.Bill
	f.reload(t, &before, *first.Bill.BillID)

	second, err := svc.GetTableRunningBill(ctx, session.ID)
	require.NoError(t, err)
	var after models.Bill
	f.reload(t, &after, *second.Bill.BillID)

	assert.True(t, first.Order.Total.Equal(second.Order.Total))
	assert.True(t, before.TotalAmount.Equal(after.TotalAmount))
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt), "second read must not write")
}

func TestGetTableRunningBillExcludesSettledSessions(t *testing.T) {
	f := newFixture(t)
	bills := NewBillService(f.db, nil)
	payments := NewPaymentService(f.db, nil)

	// session A orders a burger and pays cash
	a := f.openSession(t, f.table.ID, nil)
	f.order(t, a.ID, item(f.burger, 1))
	_, err := bills.UpdateBillStatus(ctx, a.ID, models.BillCashPending, models.PaymentCash)
	require.NoError(t, err)
	var billA models.Bill
	require.NoError(t, f.db.Where("session_id = ?", a.ID).First(&billA).Error)
	_, err = payments.ConfirmCashPayment(ctx, f.tenant.ID, billA.ID)
	require.NoError(t, err)

	// session B at the same table only sees its own pizza
	b := f.openSession(t, f.table.ID, nil)
	assert.NotEqual(t, a.ID, b.ID)
	f.order(t, b.ID, item(f.pizza, 1))

	running, err := bills.GetTableRunningBill(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, running.Order.UnpaidSessionsCount)
	require.Len(t, running.Order.Items, 1)
	assert.Equal(t, "Pizza", running.Order.Items[0].MenuItemName)
	assert.True(t, running.Order.Subtotal.Equal(dec("70000")))
	assert.True(t, running.Order.Total.Equal(dec("77000")))

	// reading A's (settled) tab must not rewrite its bill
	_, err = bills.GetTableRunningBill(ctx, a.ID)
	require.NoError(t, err)
	var settled models.Bill
	f.reload(t, &settled, billA.ID)
	assert.Equal(t, models.BillPaid, settled.Status)
	assert.True(t, settled.TotalAmount.Equal(dec("55000")))
}

func TestGetTableRunningBillWithoutOrders(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, f.table.ID, nil)

	running, err := NewBillService(f.db, nil).GetTableRunningBill(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, running.Bill.BillID)
	assert.Nil(t, running.Order.OrderID)
	assert.True(t, running.Order.Total.IsZero())
	assert.Empty(t, running.Order.Items)

	_, err = NewBillService(f.db, nil).GetTableRunningBill(ctx, "missing")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestUpdateBillStatusFansOutAcrossUnpaidSessions(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	bills := NewBillService(f.db, notifier)
	orders := NewOrderService(f.db, nil)

	a := f.openSession(t, f.table.ID, nil)
	snapshotA := f.order(t, a.ID, item(f.burger, 1))
	_, err := orders.UpdateOrderStatus(ctx, f.tenant.ID, snapshotA.OrderID, models.OrderDone)
	require.NoError(t, err)

	b := f.openSession(t, f.table.ID, nil)
	require.NotEqual(t, a.ID, b.ID)
	f.order(t, b.ID, item(f.pizza, 1))

	result, err := bills.UpdateBillStatus(ctx, b.ID, models.BillPaid, models.PaymentBankTransfer)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SessionsUpdated)
	assert.True(t, result.TotalAmount.Equal(dec("132000")))
	require.NotNil(t, result.BillID)

	var all []models.Bill
	require.NoError(t, f.db.Where("session_id IN ?", []string{a.ID, b.ID}).Find(&all).Error)
	require.Len(t, all, 2)
	for _, bill := range all {
		assert.Equal(t, models.BillPaid, bill.Status)
		require.NotNil(t, bill.PaymentMethod)
		assert.Equal(t, models.PaymentBankTransfer, *bill.PaymentMethod)
		assert.True(t, bill.TotalAmount.Equal(dec("132000")))
	}

	var sessions []models.Session
	require.NoError(t, f.db.Where("id IN ?", []string{a.ID, b.ID}).Find(&sessions).Error)
	for _, s := range sessions {
		assert.Equal(t, models.SessionCompleted, s.Status)
	}

	var table models.DiningTable
	f.reload(t, &table, f.table.ID)
	assert.Equal(t, models.TableOccupied, table.Status, "table is freed by staff confirmation only")
	assert.Equal(t, []string{EventPaymentPending}, notifier.names())

	_, err = bills.UpdateBillStatus(ctx, b.ID, models.BillPaid, models.PaymentBankTransfer)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.EqualError(t, err, "No unpaid sessions at this table")
}

func TestUpdateBillStatusCreatesMissingBill(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, f.table.ID, nil)
	f.order(t, session.ID, item(f.burger, 1))
	require.NoError(t, f.db.Where("session_id = ?", session.ID).Delete(&models.Bill{}).Error)

	result, err := NewBillService(f.db, nil).UpdateBillStatus(ctx, session.ID, models.BillCashPending, models.PaymentCash)
	require.NoError(t, err)
	require.NotNil(t, result.BillID)

	var bill models.Bill
	f.reload(t, &bill, *result.BillID)
	assert.Equal(t, models.BillCashPending, bill.Status)
	assert.True(t, bill.TotalAmount.Equal(dec("55000")))
}

func TestValidatePaymentIntent(t *testing.T) {
	tests := []struct {
		status, method string
		ok             bool
	}{
		{models.BillCashPending, models.PaymentCash, true},
		{models.BillPaid, models.PaymentBankTransfer, true},
		{models.BillPaid, models.PaymentCash, false},
		{models.BillCashPending, models.PaymentBankTransfer, false},
		{models.BillVerified, models.PaymentBankTransfer, false},
		{models.BillPaid, "card", false},
	}
	for _, tt := range tests {
		err := ValidatePaymentIntent(tt.status, tt.method)
		if tt.ok {
			assert.NoError(t, err, "%s/%s", tt.status, tt.method)
		} else {
			assert.True(t, utils.IsKind(err, utils.KindValidation), "%s/%s", tt.status, tt.method)
		}
	}
}
