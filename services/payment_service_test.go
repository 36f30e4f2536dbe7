package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
)

// pendingBill orders a burger and a pizza for the customer and records a payment intent.
func pendingBill(t *testing.T, f *fixture, status, method string) (*models.Session, *models.Bill) {
	t.Helper()
	session := f.openSession(t, f.table.ID, &f.customer.ID)
	f.order(t, session.ID, item(f.burger, 1), item(f.pizza, 1))
	_, err := NewBillService(f.db, nil).UpdateBillStatus(ctx, session.ID, status, method)
	require.NoError(t, err)

	var bill models.Bill
	require.NoError(t, f.db.Where("session_id = ?", session.ID).First(&bill).Error)
	return session, &bill
}

func TestConfirmCashPaymentCreditsPoints(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	svc := NewPaymentService(f.db, notifier)
	session, bill := pendingBill(t, f, models.BillCashPending, models.PaymentCash)

	result, err := svc.ConfirmCashPayment(ctx, f.tenant.ID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillPaid, result.BillStatus)
	assert.True(t, result.PointsCredited.Equal(dec("1200")))

	var reloaded models.Bill
	f.reload(t, &reloaded, bill.ID)
	assert.Equal(t, models.BillPaid, reloaded.Status)

	var s models.Session
	f.reload(t, &s, session.ID)
	assert.Equal(t, models.SessionCompleted, s.Status)

	var table models.DiningTable
	f.reload(t, &table, f.table.ID)
	assert.Equal(t, models.TableAvailable, table.Status)

	var customer models.Customer
	f.reload(t, &customer, f.customer.ID)
	assert.True(t, customer.PointsBalance.Equal(dec("1200")), customer.PointsBalance.String())

	var ledger []models.PointTransaction
	require.NoError(t, f.db.Where("customer_id = ?", f.customer.ID).Find(&ledger).Error)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.PointsEarn, ledger[0].TransactionType)
	assert.Equal(t, "Earned from cash payment - bill "+bill.ID, ledger[0].Description)

	assert.Equal(t, []string{EventPaymentConfirmed, EventTableUpdate}, notifier.names())
}

func TestConfirmCashPaymentTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.db, nil)
	_, bill := pendingBill(t, f, models.BillCashPending, models.PaymentCash)

	_, err := svc.ConfirmCashPayment(ctx, f.tenant.ID, bill.ID)
	require.NoError(t, err)

	_, err = svc.ConfirmCashPayment(ctx, f.tenant.ID, bill.ID)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.EqualError(t, err, "Bill is already 'paid'. Only 'cash_pending' bills can be confirmed.")

	var ledger int64
	f.db.Model(&models.PointTransaction{}).Count(&ledger)
	assert.EqualValues(t, 1, ledger, "points are credited once")
}

func TestSettlementChecksTenantBeforeStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.db, nil)
	_, bill := pendingBill(t, f, models.BillPaid, models.PaymentBankTransfer)

	// wrong status for cash confirmation, but the tenant check comes first
	_, err := svc.ConfirmCashPayment(ctx, "other-tenant", bill.ID)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.VerifyQrPayment(ctx, f.tenant.ID, "missing")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestVerifyQrPayment(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.db, nil)
	_, bill := pendingBill(t, f, models.BillPaid, models.PaymentBankTransfer)

	listed, err := svc.ListQrPaid(ctx, f.tenant.ID, f.branch.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, bill.ID, listed[0].BillID)
	require.NotNil(t, listed[0].BankInfo)
	assert.Equal(t, "VCB", *listed[0].BankCode)

	result, err := svc.VerifyQrPayment(ctx, f.tenant.ID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillVerified, result.BillStatus)

	var ledger models.PointTransaction
	require.NoError(t, f.db.Where("customer_id = ?", f.customer.ID).First(&ledger).Error)
	assert.Equal(t, "Earned from QR payment - bill "+bill.ID, ledger.Description)

	listed, err = svc.ListQrPaid(ctx, f.tenant.ID, f.branch.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestVerifyQrPaymentRejectsCashBill(t *testing.T) {
	f := newFixture(t)
	_, bill := pendingBill(t, f, models.BillCashPending, models.PaymentCash)

	_, err := NewPaymentService(f.db, nil).VerifyQrPayment(ctx, f.tenant.ID, bill.ID)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestListCashPending(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.db, nil)
	_, bill := pendingBill(t, f, models.BillCashPending, models.PaymentCash)

	listed, err := svc.ListCashPending(ctx, f.tenant.ID, f.branch.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, bill.ID, listed[0].BillID)
	assert.Len(t, listed[0].Items, 2)
	assert.True(t, listed[0].Subtotal.Equal(dec("120000")))
	assert.True(t, listed[0].VAT.Equal(dec("12000")))
	assert.True(t, listed[0].TotalAmount.Equal(dec("132000")))
	assert.Nil(t, listed[0].BankInfo)

	_, err = svc.ListCashPending(ctx, "other-tenant", f.branch.ID)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}
