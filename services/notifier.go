package services

// Notifier receives realtime events after a change has been committed.
type Notifier interface {
	Publish(tenantID, event string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, string, interface{}) {}

// NotifierOrNoop returns n, or a notifier that drops events when n is nil.
func NotifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// Event names published by the services.
const (
	EventOrderUpdate      = "order_update"
	EventOrderStatus      = "order_status"
	EventPaymentPending   = "payment_pending"
	EventPaymentConfirmed = "payment_confirmed"
	EventTableUpdate      = "table_update"
)
