package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/models"
)

const defaultOrderLimit = 100

// OrderService is the order lifecycle the handlers drive.
type OrderService interface {
	CreateOrder(ctx context.Context, draft models.Order) (checkout.CreateResult, error)
	VerifyPayment(ctx context.Context, in checkout.VerifyInput) (checkout.VerifyResult, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	GetOrder(ctx context.Context, orderID string) (models.Order, error)
	ListOrders(ctx context.Context, limit int64) ([]models.Order, error)
}

/* =========================
   REQUEST DTOs
========================= */

type orderItemRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	Title     string   `json:"title" binding:"required"`
	SizeML    int      `json:"size_ml" binding:"required,gt=0"`
	Price     *float64 `json:"price" binding:"required,gte=0"`
	Quantity  int      `json:"quantity" binding:"required,gte=1"`
}

type orderRequest struct {
	CustomerName    string             `json:"customer_name" binding:"required"`
	CustomerEmail   string             `json:"customer_email" binding:"required,email"`
	CustomerPhone   string             `json:"customer_phone" binding:"required"`
	ShippingAddress string             `json:"shipping_address" binding:"required"`
	Items           []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	Subtotal        *float64           `json:"subtotal" binding:"required,gte=0"`
	ShippingFee     float64            `json:"shipping_fee" binding:"gte=0"`
	TotalAmount     *float64           `json:"total_amount" binding:"required,gte=0"`
	Currency        string             `json:"currency"`
}

type createOrderPayload struct {
	Order *orderRequest `json:"order" binding:"required"`
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r orderRequest) toModel() models.Order {
	items := make([]models.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			SizeML:    it.SizeML,
			Price:     *it.Price,
			Quantity:  it.Quantity,
		})
	}
	return models.Order{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		ShippingAddress: r.ShippingAddress,
		Items:           items,
		Subtotal:        *r.Subtotal,
		ShippingFee:     r.ShippingFee,
		TotalAmount:     *r.TotalAmount,
		Currency:        r.Currency,
	}
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(svc OrderService, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		var req createOrderPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		res, err := svc.CreateOrder(c.Request.Context(), req.Order.toModel())
		if err != nil {
			respondServiceError(c, route, err, exposeDetails)
			return
		}

		if !res.PaymentsEnabled {
			c.JSON(http.StatusOK, gin.H{"order_id": res.OrderID, "razorpay": "not_configured"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order_id":          res.OrderID,
			"razorpay_order_id": res.RazorpayOrderID,
			"amount":            res.AmountMinor,
			"currency":          res.Currency,
			"key_id":            res.KeyID,
		})
	}
}

/* =========================
   VERIFY PAYMENT
========================= */

func VerifyPayment(svc OrderService, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/verify"
		defer handlePanic(c, route)

		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		res, err := svc.VerifyPayment(c.Request.Context(), checkout.VerifyInput{
			RazorpayOrderID:   req.RazorpayOrderID,
			RazorpayPaymentID: req.RazorpayPaymentID,
			Signature:         req.RazorpaySignature,
		})
		if err != nil {
			respondServiceError(c, route, err, exposeDetails)
			return
		}

		body := gin.H{"status": string(res.Status)}
		if res.Reason != "" {
			body["reason"] = res.Reason
		}
		c.JSON(http.StatusOK, body)
	}
}

/* =========================
   ADMIN
========================= */

func ListOrders(svc OrderService, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		limit, err := parseLimit(c.Query("limit"), defaultOrderLimit)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		orders, err := svc.ListOrders(c.Request.Context(), limit)
		if err != nil {
			respondServiceError(c, route, err, exposeDetails)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetOrder(svc OrderService, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		order, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err, exposeDetails)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrderStatus(svc OrderService, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/orders/:id/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		if err := svc.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
			respondServiceError(c, route, err, exposeDetails)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}
