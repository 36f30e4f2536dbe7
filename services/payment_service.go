package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// PaymentService handles staff-side settlement of cash and bank-transfer bills.
type PaymentService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(db *gorm.DB, notifier Notifier) *PaymentService {
	return &PaymentService{db: db, notifier: NotifierOrNoop(notifier), now: time.Now}
}

// SettlementResult is returned once staff confirm or verify a payment.
type SettlementResult struct {
	BillID         string          `json:"bill_id"`
	BillStatus     string          `json:"bill_status"`
	SessionID      string          `json:"session_id"`
	TableID        string          `json:"table_id"`
	TableNumber    string          `json:"table_number"`
	PointsCredited decimal.Decimal `json:"points_credited"`
}

// settlement describes one staff transition.
type settlement struct {
	guard       func(bill *models.Bill) error
	next        string
	description string
}

var cashSettlement = settlement{
	guard: func(bill *models.Bill) error {
		if bill.Status != models.BillCashPending {
			return utils.NewConflict("Bill is already '%s'. Only 'cash_pending' bills can be confirmed.", bill.Status)
		}
		return nil
	},
	next:        models.BillPaid,
	description: "Earned from cash payment - bill %s",
}

var qrSettlement = settlement{
	guard: func(bill *models.Bill) error {
		method := ""
		if bill.PaymentMethod != nil {
			method = *bill.PaymentMethod
		}
		if bill.Status != models.BillPaid || method != models.PaymentBankTransfer {
			return utils.NewConflict("Bill status is '%s' with payment method '%s'. Only 'paid' bank_transfer bills can be verified.", bill.Status, method)
		}
		return nil
	},
	next:        models.BillVerified,
	description: "Earned from QR payment - bill %s",
}

// ConfirmCashPayment moves a cash_pending bill to paid once staff collected the cash.
func (s *PaymentService) ConfirmCashPayment(ctx context.Context, tenantID, billID string) (*SettlementResult, error) {
	return s.settle(ctx, tenantID, billID, cashSettlement)
}

// VerifyQrPayment moves a self-reported bank transfer from paid to verified.
func (s *PaymentService) VerifyQrPayment(ctx context.Context, tenantID, billID string) (*SettlementResult, error) {
	return s.settle(ctx, tenantID, billID, qrSettlement)
}

// settle follows bill -> session -> table -> branch, checks the tenant before the
// status guard, then completes the session, frees the table and credits points.
func (s *PaymentService) settle(ctx context.Context, tenantID, billID string, st settlement) (*SettlementResult, error) {
	var result *SettlementResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		if err := firstForUpdate(tx, &bill, billID, "Bill"); err != nil {
			return err
		}
		session, err := findSession(tx, bill.SessionID)
		if err != nil {
			return err
		}
		table, branch, err := tableChain(tx, session)
		if err != nil {
			return err
		}
		if err := checkTenant(branch, tenantID, "bill"); err != nil {
			return err
		}
		if err := st.guard(&bill); err != nil {
			return err
		}

		now := s.now()
		if err := tx.Model(&bill).Update("status", st.next).Error; err != nil {
			return fmt.Errorf("failed to update bill status: %w", err)
		}
		if err := tx.Model(session).Updates(map[string]interface{}{
			"status":   models.SessionCompleted,
			"end_time": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to complete session: %w", err)
		}
		if err := tx.Model(table).Update("status", models.TableAvailable).Error; err != nil {
			return fmt.Errorf("failed to free table: %w", err)
		}

		credited, err := creditPoints(tx, session, &bill, fmt.Sprintf(st.description, bill.ID))
		if err != nil {
			return err
		}

		result = &SettlementResult{
			BillID:         bill.ID,
			BillStatus:     st.next,
			SessionID:      session.ID,
			TableID:        table.ID,
			TableNumber:    table.TableNumber,
			PointsCredited: credited,
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"bill":   bill.ID,
			"status": st.next,
			"table":  table.TableNumber,
			"points": credited.String(),
		}).Info("Bill settled")
		return nil
	})
	if err != nil {
		return nil, asAppError("failed to settle bill", err)
	}

	s.notifier.Publish(tenantID, EventPaymentConfirmed, result)
	s.notifier.Publish(tenantID, EventTableUpdate, map[string]string{
		"table_id":     result.TableID,
		"table_number": result.TableNumber,
		"status":       models.TableAvailable,
	})
	return result, nil
}

// creditPoints adds the bill's points to the session customer and appends one
// earn entry to the ledger. Anonymous sessions and zero points credit nothing.
func creditPoints(tx *gorm.DB, session *models.Session, bill *models.Bill, description string) (decimal.Decimal, error) {
	if session.CustomerID == nil || !bill.PointsEarned.IsPositive() {
		return decimal.Zero, nil
	}

	res := tx.Model(&models.Customer{}).Where("id = ?", *session.CustomerID).
		Update("points_balance", gorm.Expr("points_balance + ?", bill.PointsEarned))
	if res.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to credit points: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		utils.ErrorLogger.WithField("customer", *session.CustomerID).Warn("Customer missing, points not credited")
		return decimal.Zero, nil
	}

	billID := bill.ID
	entry := models.PointTransaction{
		CustomerID:      *session.CustomerID,
		BillID:          &billID,
		TransactionType: models.PointsEarn,
		PointsAmount:    bill.PointsEarned,
		Description:     description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to record point transaction: %w", err)
	}
	return bill.PointsEarned, nil
}

// StaffBill is a bill awaiting staff action with its merged items.
type StaffBill struct {
	BillID        string          `json:"bill_id"`
	SessionID     string          `json:"session_id"`
	OrderID       string          `json:"order_id"`
	TableNumber   string          `json:"table_number"`
	BranchName    string          `json:"branch_name"`
	OrderTime     time.Time       `json:"order_time"`
	Items         []OrderItemView `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VAT           decimal.Decimal `json:"vat"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	*models.BankInfo
}

// ListCashPending lists the branch's cash_pending bills, oldest first.
func (s *PaymentService) ListCashPending(ctx context.Context, tenantID, branchID string) ([]StaffBill, error) {
	return s.listBills(ctx, tenantID, branchID, false, "bills.status = ?", models.BillCashPending)
}

// ListQrPaid lists self-reported bank transfers awaiting verification.
func (s *PaymentService) ListQrPaid(ctx context.Context, tenantID, branchID string) ([]StaffBill, error) {
	return s.listBills(ctx, tenantID, branchID, true,
		"bills.status = ? AND bills.payment_method = ?", models.BillPaid, models.PaymentBankTransfer)
}

func (s *PaymentService) listBills(ctx context.Context, tenantID, branchID string, withBank bool, where string, args ...interface{}) ([]StaffBill, error) {
	db := s.db.WithContext(ctx)
	branch, err := tenantBranch(db, tenantID, branchID)
	if err != nil {
		return nil, err
	}

	var bills []models.Bill
	if err := db.Model(&models.Bill{}).
		Joins("JOIN sessions ON sessions.id = bills.session_id").
		Joins("JOIN dining_tables ON dining_tables.id = sessions.table_id").
		Where("dining_tables.branch_id = ?", branchID).
		Where(where, args...).
		Order("bills.created_at ASC").
		Find(&bills).Error; err != nil {
		return nil, utils.NewInternal("failed to list bills", err)
	}

	result := make([]StaffBill, 0, len(bills))
	for _, bill := range bills {
		session, err := findSession(db, bill.SessionID)
		if err != nil {
			return nil, err
		}
		table, err := findTable(db, session.TableID)
		if err != nil {
			return nil, err
		}

		var orders []models.Order
		if err := db.Where("session_id = ?", session.ID).Order("order_time ASC").Find(&orders).Error; err != nil {
			return nil, utils.NewInternal("failed to load orders", err)
		}
		if len(orders) == 0 {
			continue
		}
		orderIDs := make([]string, len(orders))
		for i, o := range orders {
			orderIDs[i] = o.ID
		}
		var items []models.OrderItem
		if err := db.Preload("MenuItem").Where("order_id IN ?", orderIDs).Order("created_at ASC").Find(&items).Error; err != nil {
			return nil, utils.NewInternal("failed to load order items", err)
		}
		views, subtotal := sumItems(items)
		totals := totalsOf(subtotal)

		method := models.PaymentCash
		if bill.PaymentMethod != nil {
			method = *bill.PaymentMethod
		}
		sb := StaffBill{
			BillID:        bill.ID,
			SessionID:     session.ID,
			OrderID:       orders[0].ID,
			TableNumber:   table.TableNumber,
			BranchName:    branch.Name,
			OrderTime:     orders[0].OrderTime,
			Items:         views,
			Subtotal:      totals.Subtotal,
			VAT:           totals.VAT,
			TotalAmount:   totals.Total,
			PaymentMethod: method,
			Status:        bill.Status,
			CreatedAt:     bill.CreatedAt,
		}
		if withBank {
			info := branch.BankInfo()
			sb.BankInfo = &info
		}
		result = append(result, sb)
	}
	return result, nil
}
