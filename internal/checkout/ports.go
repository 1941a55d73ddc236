package checkout

import (
	"context"

	"storefront/internal/razorpay"
)

//go:generate mockgen -source=ports.go -destination=mocks/mock_gateway.go -package=mocks

// PaymentGateway creates payment intents on the external gateway.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (razorpay.Order, error)
}
