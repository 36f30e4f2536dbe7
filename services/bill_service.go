package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// BillService aggregates a table's unpaid sessions into one running bill and
// records the guest's payment intent.
type BillService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewBillService(db *gorm.DB, notifier Notifier) *BillService {
	return &BillService{db: db, notifier: NotifierOrNoop(notifier), now: time.Now}
}

// unpaidSession is one session of today at a table whose bill is not settled.
type unpaidSession struct {
	session models.Session
	bill    *models.Bill
	orders  []models.Order
	items   []models.OrderItem
}

// collectUnpaid loads every session at the table that started since local
// midnight and has no paid, verified or completed bill, with their orders and items.
func collectUnpaid(tx *gorm.DB, tableID string, now time.Time) ([]unpaidSession, error) {
	var sessions []models.Session
	if err := tx.Where("table_id = ? AND start_time >= ?", tableID, utils.BeginningOfDay(now)).
		Order("start_time ASC").Find(&sessions).Error; err != nil {
		return nil, utils.NewInternal("failed to load table sessions", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	var bills []models.Bill
	if err := tx.Where("session_id IN ?", ids).Find(&bills).Error; err != nil {
		return nil, utils.NewInternal("failed to load bills", err)
	}
	billBySession := make(map[string]*models.Bill, len(bills))
	for i := range bills {
		billBySession[bills[i].SessionID] = &bills[i]
	}

	var orders []models.Order
	if err := tx.Where("session_id IN ?", ids).Order("order_time ASC").Find(&orders).Error; err != nil {
		return nil, utils.NewInternal("failed to load orders", err)
	}
	ordersBySession := make(map[string][]models.Order)
	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		ordersBySession[o.SessionID] = append(ordersBySession[o.SessionID], o)
		orderIDs = append(orderIDs, o.ID)
	}

	itemsByOrder := make(map[string][]models.OrderItem)
	if len(orderIDs) > 0 {
		var items []models.OrderItem
		if err := tx.Preload("MenuItem").Where("order_id IN ?", orderIDs).Order("created_at ASC").Find(&items).Error; err != nil {
			return nil, utils.NewInternal("failed to load order items", err)
		}
		for _, it := range items {
			itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
		}
	}

	var unpaid []unpaidSession
	for _, s := range sessions {
		bill := billBySession[s.ID]
		if bill != nil && models.IsSettled(bill.Status) {
			continue
		}
		u := unpaidSession{session: s, bill: bill, orders: ordersBySession[s.ID]}
		for _, o := range u.orders {
			u.items = append(u.items, itemsByOrder[o.ID]...)
		}
		unpaid = append(unpaid, u)
	}
	return unpaid, nil
}

func unpaidSubtotal(unpaid []unpaidSession) decimal.Decimal {
	subtotal := decimal.Zero
	for _, u := range unpaid {
		for _, it := range u.items {
			subtotal = subtotal.Add(it.Subtotal())
		}
	}
	return subtotal
}

// RunningItem is an order line tagged with the order and session it came from.
type RunningItem struct {
	OrderItemView
	FromOrderID   string `json:"from_order_id"`
	FromSessionID string `json:"from_session_id"`
}

type OrderRef struct {
	OrderID   string    `json:"order_id"`
	SessionID string    `json:"session_id"`
	OrderTime time.Time `json:"order_time"`
	Status    string    `json:"status"`
}

type RunningOrder struct {
	OrderID   *string       `json:"order_id"`
	SessionID string        `json:"session_id"`
	OrderTime *time.Time    `json:"order_time"`
	Status    *string       `json:"status"`
	Items     []RunningItem `json:"items"`
	Totals
	AllOrders           []OrderRef `json:"all_orders"`
	UnpaidSessionsCount int        `json:"unpaid_sessions_count"`
	SessionIDs          []string   `json:"session_ids"`
}

type BillView struct {
	BillID        *string         `json:"bill_id"`
	SessionID     string          `json:"session_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod *string         `json:"payment_method"`
	Status        string          `json:"status"`
	models.BankInfo
}

// RunningBill is the table-wide bill shown to a guest.
type RunningBill struct {
	SessionID   string       `json:"session_id"`
	TableID     string       `json:"table_id"`
	TableNumber string       `json:"table_number"`
	Order       RunningOrder `json:"order"`
	Bill        BillView     `json:"bill"`
}

// GetTableRunningBill sums every unpaid session of today at the session's table,
// adds VAT, and reconciles the stored bill total when it differs. Repeated calls
// without new orders write nothing.
func (s *BillService) GetTableRunningBill(ctx context.Context, sessionID string) (*RunningBill, error) {
	var result *RunningBill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := findSession(tx, sessionID)
		if err != nil {
			return err
		}
		table, branch, err := tableChain(tx, session)
		if err != nil {
			return err
		}

		unpaid, err := collectUnpaid(tx, table.ID, s.now())
		if err != nil {
			return err
		}

		order := RunningOrder{SessionID: session.ID, Items: []RunningItem{}, AllOrders: []OrderRef{}, UnpaidSessionsCount: len(unpaid)}
		for _, u := range unpaid {
			order.SessionIDs = append(order.SessionIDs, u.session.ID)
			for _, o := range u.orders {
				order.AllOrders = append(order.AllOrders, OrderRef{OrderID: o.ID, SessionID: u.session.ID, OrderTime: o.OrderTime, Status: o.Status})
			}
			for _, it := range u.items {
				order.Items = append(order.Items, RunningItem{OrderItemView: newItemView(it), FromOrderID: it.OrderID, FromSessionID: u.session.ID})
			}
		}
		if n := len(order.AllOrders); n > 0 {
			latest := order.AllOrders[n-1]
			order.OrderID, order.OrderTime, order.Status = &latest.OrderID, &latest.OrderTime, &latest.Status
		}
		order.Totals = totalsOf(unpaidSubtotal(unpaid))

		bill, err := s.billToReconcile(tx, session.ID, unpaid)
		if err != nil {
			return err
		}
		view := BillView{SessionID: session.ID, TotalAmount: order.Total, Status: models.BillPending, BankInfo: branch.BankInfo()}
		if bill != nil {
			if !bill.TotalAmount.Equal(order.Total) {
				old := bill.TotalAmount
				if err := tx.Model(bill).Update("total_amount", order.Total).Error; err != nil {
					return utils.NewInternal("failed to reconcile bill", err)
				}
				utils.InfoLogger.WithFields(logrus.Fields{
					"bill": bill.ID,
					"from": old.String(),
					"to":   order.Total.String(),
				}).Info("Bill total reconciled")
			}
			view.BillID, view.PaymentMethod, view.Status = &bill.ID, bill.PaymentMethod, bill.Status
		}

		result = &RunningBill{
			SessionID:   session.ID,
			TableID:     table.ID,
			TableNumber: table.TableNumber,
			Order:       order,
			Bill:        view,
		}
		return nil
	})
	if err != nil {
		return nil, asAppError("failed to compute running bill", err)
	}
	return result, nil
}

// billToReconcile picks the queried session's own unsettled bill, or else the first
// unsettled bill among the other unpaid sessions. Settled bills are never rewritten.
func (s *BillService) billToReconcile(tx *gorm.DB, sessionID string, unpaid []unpaidSession) (*models.Bill, error) {
	for _, u := range unpaid {
		if u.session.ID == sessionID && u.bill != nil {
			return u.bill, nil
		}
	}
	var own models.Bill
	err := tx.Where("session_id = ?", sessionID).Limit(1).Find(&own).Error
	if err != nil {
		return nil, utils.NewInternal("failed to load bill", err)
	}
	if own.ID != "" {
		// queried session is already settled
		return nil, nil
	}
	for _, u := range unpaid {
		if u.bill != nil {
			return u.bill, nil
		}
	}
	return nil, nil
}

// BillStatusResult is returned after a guest records a payment intent.
type BillStatusResult struct {
	BillID          *string         `json:"bill_id"`
	SessionID       string          `json:"session_id"`
	SessionsUpdated int             `json:"sessions_updated"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// ValidatePaymentIntent accepts cash_pending with cash, or paid with bank_transfer.
func ValidatePaymentIntent(status, method string) error {
	switch {
	case status == models.BillCashPending && method == models.PaymentCash:
		return nil
	case status == models.BillPaid && method == models.PaymentBankTransfer:
		return nil
	case status != models.BillCashPending && status != models.BillPaid:
		return utils.NewValidation("status must be one of: %s, %s", models.BillCashPending, models.BillPaid)
	case method != models.PaymentCash && method != models.PaymentBankTransfer:
		return utils.NewValidation("payment_method must be one of: %s, %s", models.PaymentCash, models.PaymentBankTransfer)
	default:
		return utils.NewValidation("status %s cannot be used with payment method %s", status, method)
	}
}

// UpdateBillStatus applies the guest's payment intent to every unpaid session at
// the table: each bill carries the table-wide VAT-inclusive total and each session
// completes. The table stays occupied until staff confirm the payment.
func (s *BillService) UpdateBillStatus(ctx context.Context, sessionID, status, method string) (*BillStatusResult, error) {
	if err := ValidatePaymentIntent(status, method); err != nil {
		return nil, err
	}

	var (
		result   *BillStatusResult
		tenantID string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := findSession(tx, sessionID)
		if err != nil {
			return err
		}
		// serialise with session creation and other payments at this table
		var table models.DiningTable
		if err := firstForUpdate(tx, &table, session.TableID, "Table"); err != nil {
			return err
		}
		branch, err := findBranch(tx, table.BranchID)
		if err != nil {
			return err
		}
		tenantID = branch.TenantID

		now := s.now()
		unpaid, err := collectUnpaid(tx, table.ID, now)
		if err != nil {
			return err
		}
		if len(unpaid) == 0 {
			return utils.NewConflict("No unpaid sessions at this table")
		}

		total := utils.WithVAT(unpaidSubtotal(unpaid))
		result = &BillStatusResult{
			SessionID:       sessionID,
			SessionsUpdated: len(unpaid),
			Status:          status,
			PaymentMethod:   method,
			TotalAmount:     total,
		}

		for _, u := range unpaid {
			bill := u.bill
			switch {
			case bill == nil && len(u.orders) > 0:
				bill = &models.Bill{
					SessionID:      u.session.ID,
					TotalAmount:    total,
					PointsEarned:   decimal.Zero,
					PointsRedeemed: decimal.Zero,
					PaymentMethod:  &method,
					Status:         status,
				}
				if err := tx.Create(bill).Error; err != nil {
					return utils.NewInternal("failed to create bill", err)
				}
			case bill != nil:
				if err := tx.Model(bill).Updates(map[string]interface{}{
					"status":         status,
					"payment_method": method,
					"total_amount":   total,
				}).Error; err != nil {
					return utils.NewInternal("failed to update bill", err)
				}
			}

			if err := tx.Model(&models.Session{}).Where("id = ?", u.session.ID).
				Updates(map[string]interface{}{"status": models.SessionCompleted, "end_time": now}).Error; err != nil {
				return utils.NewInternal("failed to complete session", err)
			}

			if result.BillID == nil && bill != nil {
				id := bill.ID
				result.BillID = &id
			}
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"table":    table.TableNumber,
			"sessions": len(unpaid),
			"status":   status,
			"total":    total.String(),
		}).Info("Payment intent recorded")
		return nil
	})
	if err != nil {
		return nil, asAppError("failed to update bill status", err)
	}

	s.notifier.Publish(tenantID, EventPaymentPending, result)
	return result, nil
}
