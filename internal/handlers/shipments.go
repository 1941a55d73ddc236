package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/logging"
	"storefront/internal/models"
	"storefront/internal/store"
)

const defaultShipmentLimit = 100

type createShipmentRequest struct {
	OrderID    string         `json:"order_id" binding:"required"`
	Provider   string         `json:"provider" binding:"omitempty,oneof=shiprocket delhivery bluedart xpressbees other"`
	TrackingID string         `json:"tracking_id"`
	Meta       map[string]any `json:"meta"`
}

func CreateShipment(st store.Store, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/shipments"
		defer handlePanic(c, route)

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createShipmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		orderID := strings.TrimSpace(req.OrderID)
		var order models.Order
		err := st.FindOne(c.Request.Context(), models.OrderCollection, store.Fields{"_id": orderID}, &order)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, exposeDetails)
			return
		}

		provider := models.ShipmentProvider(req.Provider)
		if provider == "" {
			provider = models.ProviderOther
		}

		now := time.Now().UTC()
		shipment := models.Shipment{
			OrderID:    orderID,
			Provider:   provider,
			TrackingID: strings.TrimSpace(req.TrackingID),
			Status:     models.ShipmentStatusCreated,
			Meta:       req.Meta,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		id, err := st.Insert(c.Request.Context(), models.ShipmentCollection, shipment)
		if err != nil {
			respondStoreError(c, route, err, exposeDetails)
			return
		}

		logging.From(c).Info("shipment created", "shipment_id", id, "order_id", orderID, "provider", provider)
		c.JSON(http.StatusOK, gin.H{"shipment_id": id})
	}
}

// ListShipments lists shipments, optionally only those of one order.
func ListShipments(st store.Store, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/shipments"
		defer handlePanic(c, route)

		limit, err := parseLimit(c.Query("limit"), defaultShipmentLimit)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var filter store.Fields
		if orderID := strings.TrimSpace(c.Query("order_id")); orderID != "" {
			filter = store.Fields{"order_id": orderID}
		}

		shipments := []models.Shipment{}
		if err := st.Find(c.Request.Context(), models.ShipmentCollection, filter, limit, &shipments); err != nil {
			respondStoreError(c, route, err, exposeDetails)
			return
		}
		c.JSON(http.StatusOK, shipments)
	}
}
