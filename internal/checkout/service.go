// Package checkout owns the order payment lifecycle: order creation with an
// optional gateway payment intent, signature verified payment confirmation
// and administrative status changes.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/logging"
	"storefront/internal/models"
	"storefront/internal/razorpay"
	"storefront/internal/store"
)

const notConfiguredReason = "Razorpay not configured"

// Config carries gateway credentials. Leaving either credential empty runs
// checkout without payment integration.
type Config struct {
	KeyID     string
	KeySecret string
	Currency  string
}

type Service struct {
	store   store.Store
	gateway PaymentGateway
	cfg     Config
	log     *slog.Logger

	now     func() time.Time
	receipt func() (string, error)
}

// NewService builds the checkout core. gateway may be nil when payments are
// not configured.
func NewService(st store.Store, gateway PaymentGateway, cfg Config, log *slog.Logger) *Service {
	if cfg.Currency == "" {
		cfg.Currency = models.CurrencyINR
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   st,
		gateway: gateway,
		cfg:     cfg,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		receipt: newReceipt,
	}
}

// PaymentsEnabled reports whether orders get a gateway payment intent.
func (s *Service) PaymentsEnabled() bool {
	return s.cfg.KeyID != "" && s.cfg.KeySecret != "" && s.gateway != nil
}

type CreateResult struct {
	OrderID         string
	PaymentsEnabled bool
	RazorpayOrderID string
	AmountMinor     int64
	Currency        string
	KeyID           string
}

// CreateOrder validates the draft and persists it as a pending order. With
// payments enabled a gateway intent is created first; if that fails nothing
// is stored.
func (s *Service) CreateOrder(ctx context.Context, draft models.Order) (CreateResult, error) {
	if err := s.validateDraft(&draft); err != nil {
		return CreateResult{}, err
	}

	now := s.now()
	draft.ID = primitive.NilObjectID
	draft.Status = models.OrderStatusPending
	draft.RazorpayOrderID = ""
	draft.RazorpayPaymentID = ""
	draft.RazorpaySignature = ""
	draft.CreatedAt = now
	draft.UpdatedAt = now

	if !s.PaymentsEnabled() {
		id, err := s.store.Insert(ctx, models.OrderCollection, draft)
		if err != nil {
			return CreateResult{}, &StorageError{Op: "insert order", Err: err}
		}
		ordersCreated.WithLabelValues("disabled").Inc()
		s.logger(ctx).Info("order created", "order_id", id, "payments", "disabled")
		return CreateResult{OrderID: id, Currency: draft.Currency}, nil
	}

	amount, err := MinorUnits(draft.TotalAmount)
	if err != nil {
		return CreateResult{}, err
	}
	receipt, err := s.receipt()
	if err != nil {
		return CreateResult{}, fmt.Errorf("generate receipt: %w", err)
	}

	intent, err := s.createIntent(ctx, razorpay.CreateOrderRequest{
		Amount:         amount,
		Currency:       draft.Currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return CreateResult{}, err
	}

	draft.RazorpayOrderID = intent.ID
	id, err := s.store.Insert(ctx, models.OrderCollection, draft)
	if err != nil {
		// the gateway intent now has no order behind it
		s.logger(ctx).Error("order insert failed after intent creation", "razorpay_order_id", intent.ID, "err", err)
		return CreateResult{}, &StorageError{Op: "insert order", Err: err}
	}

	ordersCreated.WithLabelValues("enabled").Inc()
	s.logger(ctx).Info("order created", "order_id", id, "razorpay_order_id", intent.ID, "amount", amount)
	return CreateResult{
		OrderID:         id,
		PaymentsEnabled: true,
		RazorpayOrderID: intent.ID,
		AmountMinor:     amount,
		Currency:        draft.Currency,
		KeyID:           s.cfg.KeyID,
	}, nil
}

// logger prefers the request scoped logger carried by ctx.
func (s *Service) logger(ctx context.Context) *slog.Logger {
	return logging.FromCtx(ctx, s.log).With("component", "checkout")
}

func (s *Service) createIntent(ctx context.Context, req razorpay.CreateOrderRequest) (razorpay.Order, error) {
	start := time.Now()
	intent, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		gatewayDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		gwErr := &GatewayError{Err: err}
		var apiErr *razorpay.APIError
		if errors.As(err, &apiErr) {
			gwErr.StatusCode = apiErr.StatusCode
			gwErr.Body = apiErr.Body
		}
		s.logger(ctx).Error("payment intent creation failed", "receipt", req.Receipt, "status", gwErr.StatusCode, "err", err)
		return razorpay.Order{}, gwErr
	}
	gatewayDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return intent, nil
}

func (s *Service) validateDraft(o *models.Order) error {
	o.Currency = strings.ToUpper(strings.TrimSpace(o.Currency))
	if o.Currency == "" {
		o.Currency = s.cfg.Currency
	}
	if o.Currency != s.cfg.Currency {
		return invalid("currency", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, o.Currency))
	}
	if len(o.Items) == 0 {
		return invalid("items", errors.New("at least one item is required"))
	}
	for i, item := range o.Items {
		if item.Quantity < 1 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), errors.New("must be at least 1"))
		}
		if item.Price < 0 {
			return invalid(fmt.Sprintf("items[%d].price", i), errors.New("must not be negative"))
		}
	}
	return checkTotals(o.Subtotal, o.ShippingFee, o.TotalAmount)
}

type VerificationStatus string

const (
	VerificationSuccess VerificationStatus = "success"
	VerificationSkipped VerificationStatus = "skipped"
)

type VerifyInput struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	Signature         string
}

type VerifyResult struct {
	Status VerificationStatus
	Reason string
}

// VerifyPayment checks the gateway callback signature and marks the order
// holding the intent as paid. Repeating a successful verification is a no-op
// apart from updated_at.
func (s *Service) VerifyPayment(ctx context.Context, in VerifyInput) (VerifyResult, error) {
	if s.cfg.KeyID == "" || s.cfg.KeySecret == "" {
		verifications.WithLabelValues("skipped").Inc()
		return VerifyResult{Status: VerificationSkipped, Reason: notConfiguredReason}, nil
	}

	switch {
	case in.RazorpayOrderID == "":
		return VerifyResult{}, invalid("razorpay_order_id", errors.New("is required"))
	case in.RazorpayPaymentID == "":
		return VerifyResult{}, invalid("razorpay_payment_id", errors.New("is required"))
	case in.Signature == "":
		return VerifyResult{}, invalid("razorpay_signature", errors.New("is required"))
	}

	if !SignatureMatches(s.cfg.KeySecret, in.RazorpayOrderID, in.RazorpayPaymentID, in.Signature) {
		verifications.WithLabelValues("mismatch").Inc()
		s.logger(ctx).Warn("payment signature mismatch", "razorpay_order_id", in.RazorpayOrderID, "razorpay_payment_id", in.RazorpayPaymentID)
		return VerifyResult{}, ErrSignatureMismatch
	}

	res, err := s.store.UpdateOne(ctx, models.OrderCollection,
		store.Fields{"razorpay_order_id": in.RazorpayOrderID},
		store.Fields{
			"status":              string(models.OrderStatusPaid),
			"razorpay_payment_id": in.RazorpayPaymentID,
			"razorpay_signature":  in.Signature,
			"updated_at":          s.now(),
		},
	)
	if err != nil {
		verifications.WithLabelValues("error").Inc()
		return VerifyResult{}, &StorageError{Op: "mark order paid", Err: err}
	}
	if res.MatchedCount == 0 {
		verifications.WithLabelValues("not_found").Inc()
		s.logger(ctx).Warn("verified payment has no order", "razorpay_order_id", in.RazorpayOrderID)
		return VerifyResult{}, ErrOrderNotFound
	}

	verifications.WithLabelValues("success").Inc()
	s.logger(ctx).Info("payment verified", "razorpay_order_id", in.RazorpayOrderID, "razorpay_payment_id", in.RazorpayPaymentID)
	return VerifyResult{Status: VerificationSuccess}, nil
}

// UpdateOrderStatus sets any enumerated status on the order with the given
// primary id. Transitions are not restricted.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, rawStatus string) error {
	status, ok := models.ParseOrderStatus(strings.TrimSpace(rawStatus))
	if !ok {
		return invalid("status", fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus))
	}

	res, err := s.store.UpdateOne(ctx, models.OrderCollection,
		store.Fields{"_id": orderID},
		store.Fields{"status": string(status), "updated_at": s.now()},
	)
	if errors.Is(err, store.ErrInvalidID) {
		return invalid("id", err)
	}
	if err != nil {
		return &StorageError{Op: "update order status", Err: err}
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	s.logger(ctx).Info("order status updated", "order_id", orderID, "status", status)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := s.store.FindOne(ctx, models.OrderCollection, store.Fields{"_id": orderID}, &order)
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return models.Order{}, invalid("id", err)
	case errors.Is(err, store.ErrNotFound):
		return models.Order{}, ErrOrderNotFound
	case err != nil:
		return models.Order{}, &StorageError{Op: "find order", Err: err}
	}
	return order, nil
}

// ListOrders returns up to limit orders in the store's natural order.
func (s *Service) ListOrders(ctx context.Context, limit int64) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.store.Find(ctx, models.OrderCollection, nil, limit, &orders); err != nil {
		return nil, &StorageError{Op: "list orders", Err: err}
	}
	return orders, nil
}

func newReceipt() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "rcpt_" + hex.EncodeToString(buf), nil
}
