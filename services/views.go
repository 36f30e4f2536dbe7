package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
)

// OrderItemView is an order line as shown to guests and staff.
type OrderItemView struct {
	OrderItemID   string          `json:"order_item_id"`
	MenuItemID    string          `json:"menu_item_id"`
	MenuItemName  string          `json:"menu_item_name"`
	MenuItemImage *string         `json:"menu_item_image"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Note          *string         `json:"note"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

func newItemView(item models.OrderItem) OrderItemView {
	name := item.MenuItem.Name
	if name == "" {
		name = "Unknown"
	}
	return OrderItemView{
		OrderItemID:   item.ID,
		MenuItemID:    item.MenuItemID,
		MenuItemName:  name,
		MenuItemImage: item.MenuItem.Image,
		Quantity:      item.Quantity,
		Price:         item.Price,
		Note:          item.Note,
		Subtotal:      item.Subtotal(),
	}
}

// sumItems returns the item views and their pre-VAT subtotal.
func sumItems(items []models.OrderItem) ([]OrderItemView, decimal.Decimal) {
	views := make([]OrderItemView, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		v := newItemView(item)
		subtotal = subtotal.Add(v.Subtotal)
		views = append(views, v)
	}
	return views, subtotal
}

// OrderSnapshot is the cumulative state of a session's order after items are added.
type OrderSnapshot struct {
	OrderID     string          `json:"order_id"`
	SessionID   string          `json:"session_id"`
	OrderTime   time.Time       `json:"order_time"`
	Status      string          `json:"status"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItemView `json:"items"`
}

// OrderView is the kitchen/staff view of an order.
type OrderView struct {
	OrderID     string          `json:"order_id"`
	SessionID   string          `json:"session_id"`
	TableID     string          `json:"table_id"`
	TableNumber string          `json:"table_number"`
	BranchID    string          `json:"branch_id"`
	BranchName  string          `json:"branch_name"`
	Status      string          `json:"status"`
	OrderTime   time.Time       `json:"order_time"`
	Items       []OrderItemView `json:"items"`
	WaitMinutes int             `json:"wait_minutes"`
}

// Totals groups a pre-VAT subtotal with its VAT and VAT-inclusive total.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	VAT      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

func totalsOf(subtotal decimal.Decimal) Totals {
	vat := utils.VAT(subtotal)
	return Totals{Subtotal: subtotal, VAT: vat, Total: subtotal.Add(vat)}
}
