package mail

import "fmt"

// OrderConfirmationSubject is the subject line for checkout confirmations.
const OrderConfirmationSubject = "Order Confirmation"

// OrderConfirmationBody renders the HTML body sent after a successful
// checkout. Total includes the shipping fee.
func OrderConfirmationBody(orderID string, total float64, deliveryAddress string) string {
	return fmt.Sprintf(`
    <h2>Order Confirmation</h2>
    <p>Thank you for your order!</p>
    <p><strong>Order ID:</strong> %s</p>
    <p><strong>Total Amount:</strong> %.2f</p>
    <p><strong>Delivery Address:</strong> %s</p>
    <p>We'll notify you when your order is shipped.</p>
  `, orderID, total, deliveryAddress)
}
