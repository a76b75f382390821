package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending     = "pending"
	OrderPreparation = "preparation"
	OrderOnTheWay    = "ontheway"
	OrderDelivered   = "delivered"
	OrderCancelled   = "cancelled"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentUnpaid  = "unpaid"
)

const (
	PaymentMethodCOD    = "COD"
	PaymentMethodKhalti = "khalti"
)

// OrderItem is a single product line embedded in an order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// PaymentDetails correlates the order with the external gateway. Pidx is the
// gateway transaction id stored by initiatePayment and looked up by
// verifyPayment.
type PaymentDetails struct {
	Pidx   string `bson:"pidx,omitempty" json:"pidx,omitempty"`
	Method string `bson:"method,omitempty" json:"method,omitempty"`
	Status string `bson:"status" json:"status"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress string             `bson:"shippingAddress" json:"shippingAddress"`
	PhoneNumber     string             `bson:"phoneNumber" json:"phoneNumber"`
	OrderStatus     string             `bson:"orderStatus" json:"orderStatus"`
	PaymentDetails  PaymentDetails     `bson:"paymentDetails" json:"paymentDetails"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ParseOrderStatus normalizes raw input case-insensitively against the closed
// status enum.
func ParseOrderStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case OrderPending:
		return OrderPending, true
	case OrderPreparation:
		return OrderPreparation, true
	case OrderOnTheWay:
		return OrderOnTheWay, true
	case OrderDelivered:
		return OrderDelivered, true
	case OrderCancelled:
		return OrderCancelled, true
	default:
		return "", false
	}
}

// ParsePaymentStatus normalizes raw input against {paid, unpaid, pending}.
func ParsePaymentStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PaymentPending:
		return PaymentPending, true
	case PaymentPaid:
		return PaymentPaid, true
	case PaymentUnpaid:
		return PaymentUnpaid, true
	default:
		return "", false
	}
}

// ParsePaymentMethod accepts the two supported methods, case-insensitively.
func ParsePaymentMethod(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(PaymentMethodCOD):
		return PaymentMethodCOD, true
	case PaymentMethodKhalti:
		return PaymentMethodKhalti, true
	default:
		return "", false
	}
}
