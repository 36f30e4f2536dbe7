package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// ItemInput is one requested order line. Price, when sent, must match the current menu price.
type ItemInput struct {
	MenuItemID string           `json:"menu_item_id" binding:"required"`
	Quantity   int              `json:"quantity" binding:"required,min=1,max=99"`
	Note       *string          `json:"note" binding:"omitempty,max=500"`
	Price      *decimal.Decimal `json:"price"`
}

var randomNotes = []string{"", "Không hành", "Thêm sốt", "Ít đá", "Không cay", "Chín kỹ", "", ""}

// OrderService accumulates order items per session and drives kitchen statuses.
type OrderService struct {
	db       *gorm.DB
	notifier Notifier
	intN     func(n int) int
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{
		db:       db,
		notifier: NotifierOrNoop(notifier),
		intN:     rand.IntN,
		now:      time.Now,
	}
}

// AddItemsToSession appends items to the session's single order and grows its bill.
func (s *OrderService) AddItemsToSession(ctx context.Context, sessionID string, items []ItemInput) (*OrderSnapshot, error) {
	var (
		snapshot *OrderSnapshot
		tenantID string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		var branch *models.Branch
		snapshot, _, branch, err = addItemsToSession(tx, session, items)
		if err != nil {
			return err
		}
		tenantID = branch.TenantID
		return nil
	})
	if err != nil {
		return nil, asAppError("failed to add items", err)
	}

	s.notifier.Publish(tenantID, EventOrderUpdate, snapshot)
	return snapshot, nil
}

// addItemsToSession never merges lines: a repeated dish becomes a new row. The bill
// grows by the increment, and points are recomputed from the whole bill total.
func addItemsToSession(tx *gorm.DB, session *models.Session, items []ItemInput) (*OrderSnapshot, *models.Order, *models.Branch, error) {
	if session.Status != models.SessionActive {
		return nil, nil, nil, utils.NewConflict("Session is %s. Cannot add items to completed session.", session.Status)
	}
	if len(items) == 0 {
		return nil, nil, nil, utils.NewValidation("items must not be empty")
	}

	_, branch, err := tableChain(tx, session)
	if err != nil {
		return nil, nil, nil, err
	}

	var order models.Order
	err = tx.Where("session_id = ?", session.ID).Order("order_time ASC").First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		order = models.Order{SessionID: session.ID, Status: models.OrderOrdered}
		if err := tx.Create(&order).Error; err != nil {
			return nil, nil, nil, utils.NewInternal("failed to create order", err)
		}
	} else if err != nil {
		return nil, nil, nil, utils.NewInternal("failed to load order", err)
	}

	increment := decimal.Zero
	for _, in := range items {
		if in.Quantity < 1 {
			return nil, nil, nil, utils.NewValidation("quantity must be at least 1")
		}
		var menuItem models.MenuItem
		err := tx.Where("id = ?", in.MenuItemID).First(&menuItem).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && menuItem.BranchID != branch.ID) {
			return nil, nil, nil, utils.NewNotFound("Menu item %s not found", in.MenuItemID)
		}
		if err != nil {
			return nil, nil, nil, utils.NewInternal("failed to load menu item", err)
		}
		if !models.IsOrderable(menuItem.Status) {
			return nil, nil, nil, utils.NewConflict("%s is not available", menuItem.Name)
		}

		price := utils.SnapshotPrice(menuItem.Price, menuItem.DiscountPercent)
		if in.Price != nil && !in.Price.Round(2).Equal(price) {
			return nil, nil, nil, utils.NewValidation("price of %s changed", menuItem.Name)
		}

		line := models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: menuItem.ID,
			Quantity:   in.Quantity,
			Price:      price,
			Note:       normalizeNote(in.Note),
		}
		if err := tx.Create(&line).Error; err != nil {
			return nil, nil, nil, utils.NewInternal("failed to add order item", err)
		}
		increment = increment.Add(line.Subtotal())
	}

	var bill models.Bill
	err = tx.Where("session_id = ?", session.ID).First(&bill).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		bill = models.Bill{
			SessionID:      session.ID,
			TotalAmount:    increment,
			PointsEarned:   decimal.Zero,
			PointsRedeemed: decimal.Zero,
			Status:         models.BillPending,
		}
	case err != nil:
		return nil, nil, nil, utils.NewInternal("failed to load bill", err)
	default:
		bill.TotalAmount = bill.TotalAmount.Add(increment)
	}
	if session.CustomerID != nil {
		bill.PointsEarned = utils.PointsFor(bill.TotalAmount, branch.CashbackPercent)
	}
	if err := tx.Save(&bill).Error; err != nil {
		return nil, nil, nil, utils.NewInternal("failed to save bill", err)
	}

	var all []models.OrderItem
	if err := tx.Preload("MenuItem").Where("order_id = ?", order.ID).Order("created_at ASC").Find(&all).Error; err != nil {
		return nil, nil, nil, utils.NewInternal("failed to load order items", err)
	}
	views, _ := sumItems(all)

	utils.InfoLogger.WithFields(logrus.Fields{
		"session":   session.ID,
		"order":     order.ID,
		"increment": increment.String(),
		"total":     bill.TotalAmount.String(),
	}).Info("Items added to order")

	return &OrderSnapshot{
		OrderID:     order.ID,
		SessionID:   session.ID,
		OrderTime:   order.OrderTime,
		Status:      order.Status,
		TotalItems:  len(all),
		TotalAmount: bill.TotalAmount,
		Items:       views,
	}, &order, branch, nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CreateStaffOrder opens (or reuses) the table's session and adds items to it.
func (s *OrderService) CreateStaffOrder(ctx context.Context, tenantID, tableID string, customerID *string, items []ItemInput) (*OrderView, error) {
	var view *OrderView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		view, err = s.createStaffOrder(tx, tenantID, tableID, customerID, items)
		return err
	})
	if err != nil {
		return nil, asAppError("failed to create order", err)
	}

	s.notifier.Publish(tenantID, EventOrderUpdate, view)
	return view, nil
}

func (s *OrderService) createStaffOrder(tx *gorm.DB, tenantID, tableID string, customerID *string, items []ItemInput) (*OrderView, error) {
	table, err := findTable(tx, tableID)
	if err != nil {
		return nil, err
	}
	branch, err := findBranch(tx, table.BranchID)
	if err != nil {
		return nil, err
	}
	if err := checkTenant(branch, tenantID, "table"); err != nil {
		return nil, err
	}

	session, _, err := getOrCreateActiveSession(tx, tableID, customerID, true)
	if err != nil {
		return nil, err
	}
	_, order, _, err := addItemsToSession(tx, session, items)
	if err != nil {
		return nil, err
	}
	return s.orderView(tx, order)
}

// GenerateRandomOrder places an order with random items at a random table of the branch.
func (s *OrderService) GenerateRandomOrder(ctx context.Context, tenantID, branchID string) (*OrderView, error) {
	var view *OrderView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := tenantBranch(tx, tenantID, branchID); err != nil {
			return err
		}

		var tables []models.DiningTable
		if err := tx.Where("branch_id = ? AND status IN ?", branchID,
			[]string{models.TableAvailable, models.TableOccupied}).Find(&tables).Error; err != nil {
			return utils.NewInternal("failed to load tables", err)
		}
		if len(tables) == 0 {
			return utils.NewNotFound("No available tables found in this branch")
		}

		var menu []models.MenuItem
		if err := tx.Where("branch_id = ? AND status IN ?", branchID,
			[]string{models.MenuAvailable, models.MenuActive}).Find(&menu).Error; err != nil {
			return utils.NewInternal("failed to load menu items", err)
		}
		if len(menu) == 0 {
			return utils.NewNotFound("No menu items found for this branch")
		}

		table := tables[s.intN(len(tables))]
		count := 1 + s.intN(min(4, len(menu)))
		// partial Fisher-Yates for distinct picks
		for i := 0; i < count; i++ {
			j := i + s.intN(len(menu)-i)
			menu[i], menu[j] = menu[j], menu[i]
		}

		items := make([]ItemInput, 0, count)
		for _, m := range menu[:count] {
			in := ItemInput{MenuItemID: m.ID, Quantity: 1 + s.intN(3)}
			if note := randomNotes[s.intN(len(randomNotes))]; note != "" {
				in.Note = &note
			}
			items = append(items, in)
		}

		var err error
		view, err = s.createStaffOrder(tx, tenantID, table.ID, nil, items)
		return err
	})
	if err != nil {
		return nil, asAppError("failed to generate order", err)
	}

	s.notifier.Publish(tenantID, EventOrderUpdate, view)
	return view, nil
}

// ListOrders returns the tenant's orders, newest first, optionally filtered.
func (s *OrderService) ListOrders(ctx context.Context, tenantID, branchID, status string) ([]OrderView, error) {
	if status != "" && !validOrderStatus(status) {
		return nil, invalidStatusError()
	}

	db := s.db.WithContext(ctx)
	query := db.Model(&models.Order{}).
		Joins("JOIN sessions ON sessions.id = orders.session_id").
		Joins("JOIN dining_tables ON dining_tables.id = sessions.table_id").
		Joins("JOIN branches ON branches.id = dining_tables.branch_id").
		Where("branches.tenant_id = ?", tenantID)
	if branchID != "" {
		query = query.Where("branches.id = ?", branchID)
	}
	if status != "" {
		query = query.Where("orders.status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("orders.order_time DESC").Find(&orders).Error; err != nil {
		return nil, utils.NewInternal("failed to list orders", err)
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		v, err := s.orderView(db, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// GetOrder returns one order of the tenant.
func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID string) (*OrderView, error) {
	db := s.db.WithContext(ctx)
	var order models.Order
	if err := first(db, &order, orderID, "Order"); err != nil {
		return nil, err
	}
	if err := s.checkOrderTenant(db, &order, tenantID); err != nil {
		return nil, err
	}
	return s.orderView(db, &order)
}

// OrderStatusChange is the result of UpdateOrderStatus.
type OrderStatusChange struct {
	OrderID          string `json:"order_id"`
	NewStatus        string `json:"new_status"`
	SessionID        string `json:"session_id"`
	SessionCompleted bool   `json:"session_completed"`
}

// UpdateOrderStatus moves an order through the kitchen/floor statuses. Once every
// order of the session is done the session completes; the table stays occupied
// until payment is confirmed.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, tenantID, orderID, status string) (*OrderStatusChange, error) {
	if !validOrderStatus(status) {
		return nil, invalidStatusError()
	}

	change := &OrderStatusChange{OrderID: orderID, NewStatus: status}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := firstForUpdate(tx, &order, orderID, "Order"); err != nil {
			return err
		}
		if err := s.checkOrderTenant(tx, &order, tenantID); err != nil {
			return err
		}
		change.SessionID = order.SessionID

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return utils.NewInternal("failed to update order", err)
		}
		if status != models.OrderDone {
			return nil
		}

		var pending int64
		if err := tx.Model(&models.Order{}).
			Where("session_id = ? AND status <> ?", order.SessionID, models.OrderDone).
			Count(&pending).Error; err != nil {
			return utils.NewInternal("failed to check session orders", err)
		}
		if pending > 0 {
			return nil
		}

		now := s.now()
		res := tx.Model(&models.Session{}).
			Where("id = ? AND status = ?", order.SessionID, models.SessionActive).
			Updates(map[string]interface{}{"status": models.SessionCompleted, "end_time": now})
		if res.Error != nil {
			return utils.NewInternal("failed to complete session", res.Error)
		}
		change.SessionCompleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return nil, asAppError("failed to update order status", err)
	}

	s.notifier.Publish(tenantID, EventOrderStatus, change)
	return change, nil
}

// OrderStatusView is the guest polling view of an order.
type OrderStatusView struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	OrderTime time.Time `json:"order_time"`
}

func (s *OrderService) OrderStatus(ctx context.Context, orderID string) (*OrderStatusView, error) {
	var order models.Order
	if err := first(s.db.WithContext(ctx), &order, orderID, "Order"); err != nil {
		return nil, err
	}
	return &OrderStatusView{OrderID: order.ID, Status: order.Status, OrderTime: order.OrderTime}, nil
}

// OrderDetailsView is a single order with its VAT breakdown and the branch's bank details.
type OrderDetailsView struct {
	OrderID     string          `json:"order_id"`
	SessionID   string          `json:"session_id"`
	TableNumber string          `json:"table_number"`
	OrderTime   time.Time       `json:"order_time"`
	Status      string          `json:"status"`
	Items       []OrderItemView `json:"items"`
	Totals
	BankInfo models.BankInfo `json:"bank_info"`
}

func (s *OrderService) OrderDetails(ctx context.Context, orderID string) (*OrderDetailsView, error) {
	db := s.db.WithContext(ctx)
	var order models.Order
	if err := first(db, &order, orderID, "Order"); err != nil {
		return nil, err
	}
	session, err := findSession(db, order.SessionID)
	if err != nil {
		return nil, err
	}
	table, branch, err := tableChain(db, session)
	if err != nil {
		return nil, err
	}

	var items []models.OrderItem
	if err := db.Preload("MenuItem").Where("order_id = ?", order.ID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, utils.NewInternal("failed to load order items", err)
	}
	views, subtotal := sumItems(items)

	return &OrderDetailsView{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		TableNumber: table.TableNumber,
		OrderTime:   order.OrderTime,
		Status:      order.Status,
		Items:       views,
		Totals:      totalsOf(subtotal),
		BankInfo:    branch.BankInfo(),
	}, nil
}

func (s *OrderService) checkOrderTenant(tx *gorm.DB, order *models.Order, tenantID string) error {
	session, err := findSession(tx, order.SessionID)
	if err != nil {
		return err
	}
	_, branch, err := tableChain(tx, session)
	if err != nil {
		return err
	}
	return checkTenant(branch, tenantID, "order")
}

func (s *OrderService) orderView(tx *gorm.DB, order *models.Order) (*OrderView, error) {
	session, err := findSession(tx, order.SessionID)
	if err != nil {
		return nil, err
	}
	table, branch, err := tableChain(tx, session)
	if err != nil {
		return nil, err
	}

	var items []models.OrderItem
	if err := tx.Preload("MenuItem").Where("order_id = ?", order.ID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, utils.NewInternal("failed to load order items", err)
	}
	views, _ := sumItems(items)

	return &OrderView{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		TableID:     table.ID,
		TableNumber: table.TableNumber,
		BranchID:    branch.ID,
		BranchName:  branch.Name,
		Status:      order.Status,
		OrderTime:   order.OrderTime,
		Items:       views,
		WaitMinutes: utils.MinutesSince(order.OrderTime, s.now()),
	}, nil
}

func validOrderStatus(status string) bool {
	for _, st := range models.ValidOrderStatuses {
		if st == status {
			return true
		}
	}
	return false
}

func invalidStatusError() error {
	return utils.NewValidation("Invalid status. Must be one of: %s", strings.Join(models.ValidOrderStatuses, ", "))
}
