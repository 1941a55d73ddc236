package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/logging"
	"storefront/internal/store"
)

// respondServiceError maps checkout and store errors to a status. Gateway
// bodies and storage messages are only included when exposeDetails is set.
func respondServiceError(c *gin.Context, route string, err error, exposeDetails bool) {
	log := logging.From(c).With("route", route)

	var (
		vErr  *checkout.ValidationError
		gwErr *checkout.GatewayError
		sErr  *checkout.StorageError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("validation failed", "field", vErr.Field, "err", vErr.Err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": []string{vErr.Error()},
		})
	case errors.Is(err, checkout.ErrInvalidAmount):
		respondWithError(c, http.StatusBadRequest, route, "invalid amount")
	case errors.Is(err, checkout.ErrSignatureMismatch):
		respondWithError(c, http.StatusBadRequest, route, "Invalid signature")
	case errors.Is(err, checkout.ErrOrderNotFound):
		respondWithError(c, http.StatusNotFound, route, "order not found")
	case errors.As(err, &gwErr):
		log.Error("payment gateway error", "status", gwErr.StatusCode, "err", gwErr.Err)
		body := gin.H{"error": "payment gateway error"}
		if exposeDetails {
			body["gateway_status"] = gwErr.StatusCode
			body["details"] = gwErr.Body
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, body)
	case errors.As(err, &sErr):
		log.Error("storage error", "err", err)
		body := gin.H{"error": "storage error"}
		if exposeDetails {
			body["details"] = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	default:
		log.Error("unhandled error", "err", err)
		body := gin.H{"error": "internal server error"}
		if exposeDetails {
			body["details"] = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}
}

// respondStoreError handles errors from direct store access in the CRUD
// handlers.
func respondStoreError(c *gin.Context, route string, err error, exposeDetails bool) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		respondWithError(c, http.StatusBadRequest, route, "invalid id")
	case errors.Is(err, store.ErrDuplicate):
		respondWithError(c, http.StatusConflict, route, "duplicate record")
	default:
		respondServiceError(c, route, &checkout.StorageError{Op: route, Err: err}, exposeDetails)
	}
}
