package models

// Order status values. The admin endpoint may set any of these in one step;
// no transition graph is enforced.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentDirectTransfer = "direct_transfer"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultShippingFee is a flat fee added to every order.
const DefaultShippingFee = 50

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a supported payment method.
func ValidPaymentMethod(m string) bool {
	return m == PaymentCashOnDelivery || m == PaymentDirectTransfer
}
