package models

// Table status
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Session status
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Order status, in kitchen/floor order
const (
	OrderOrdered = "ordered"
	OrderCooking = "cooking"
	OrderReady   = "ready"
	OrderServing = "serving"
	OrderDone    = "done"
)

// Bill status
const (
	BillPending     = "pending"
	BillCashPending = "cash_pending"
	BillPaid        = "paid"
	BillVerified    = "verified"
	BillCompleted   = "completed"
)

// Payment methods
const (
	PaymentCash         = "cash"
	PaymentBankTransfer = "bank_transfer"
)

// Point ledger entry types
const (
	PointsEarn   = "earn"
	PointsRedeem = "redeem"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Menu item availability
const (
	MenuAvailable   = "available"
	MenuActive      = "active"
	MenuUnavailable = "unavailable"
)

// ValidOrderStatuses lists the statuses an order may be moved to.
var ValidOrderStatuses = []string{OrderOrdered, OrderCooking, OrderReady, OrderServing, OrderDone}

// SettledBillStatuses are the bill states that close a session for billing purposes.
var SettledBillStatuses = []string{BillPaid, BillVerified, BillCompleted}

// IsSettled reports whether a bill in the given status no longer belongs to a running tab.
func IsSettled(status string) bool {
	for _, s := range SettledBillStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsOrderable reports whether a menu item in the given status can be ordered.
func IsOrderable(status string) bool {
	return status == MenuAvailable || status == MenuActive
}
