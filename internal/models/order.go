package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderCollection is the collection holding checkout orders.
const OrderCollection = "order"

// CurrencyINR is the only currency the storefront charges in.
const CurrencyINR = "INR"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus accepts only the enumerated lifecycle statuses.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	for _, s := range orderStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// OrderItem is a snapshot of a product line at order time. Title and price
// are copied so later catalog edits do not rewrite past orders.
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Title     string  `bson:"title" json:"title"`
	SizeML    int     `bson:"size_ml" json:"size_ml"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

// Order defines the persisted order document.
type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CustomerName      string             `bson:"customer_name" json:"customer_name"`
	CustomerEmail     string             `bson:"customer_email" json:"customer_email"`
	CustomerPhone     string             `bson:"customer_phone" json:"customer_phone"`
	ShippingAddress   string             `bson:"shipping_address" json:"shipping_address"`
	Items             []OrderItem        `bson:"items" json:"items"`
	Subtotal          float64            `bson:"subtotal" json:"subtotal"`
	ShippingFee       float64            `bson:"shipping_fee" json:"shipping_fee"`
	TotalAmount       float64            `bson:"total_amount" json:"total_amount"`
	Currency          string             `bson:"currency" json:"currency"`
	Status            OrderStatus        `bson:"status" json:"status"`
	RazorpayOrderID   string             `bson:"razorpay_order_id,omitempty" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string             `bson:"razorpay_payment_id,omitempty" json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string             `bson:"razorpay_signature,omitempty" json:"razorpay_signature,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}
