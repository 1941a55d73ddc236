package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/middleware"
	"storefront/internal/store"
)

type RouterDeps struct {
	Store  store.Store
	Orders OrderService
	Logger *slog.Logger

	// AdminSecret guards admin routes when non-empty.
	AdminSecret string
	CORSOrigins []string
	// ExposeDetails adds gateway and storage error text to responses.
	ExposeDetails bool
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.Logger),
		middleware.Metrics(),
		middleware.CORS(d.CORSOrigins),
	)

	r.GET("/", Root())
	r.GET("/test", Diagnostics(d.Store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/products", ListProducts(d.Store, d.ExposeDetails))
		api.POST("/orders", CreateOrder(d.Orders, d.ExposeDetails))
		api.POST("/orders/verify", VerifyPayment(d.Orders, d.ExposeDetails))
	}

	admin := api.Group("")
	admin.Use(middleware.AdminAuth(d.AdminSecret))
	{
		admin.POST("/products", CreateProduct(d.Store, d.ExposeDetails))

		admin.GET("/orders", ListOrders(d.Orders, d.ExposeDetails))
		admin.GET("/orders/:id", GetOrder(d.Orders, d.ExposeDetails))
		admin.PATCH("/orders/:id/status", UpdateOrderStatus(d.Orders, d.ExposeDetails))

		admin.POST("/shipments", CreateShipment(d.Store, d.ExposeDetails))
		admin.GET("/shipments", ListShipments(d.Store, d.ExposeDetails))

		admin.POST("/users", CreateUser(d.Store, d.ExposeDetails))
		admin.GET("/users", ListUsers(d.Store, d.ExposeDetails))
	}

	return r
}
