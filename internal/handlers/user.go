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

const defaultUserLimit = 100

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"is_active"`
}

// CreateUser stores a customer profile. Emails are unique, compared
// case-insensitively.
func CreateUser(st store.Store, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users"
		defer handlePanic(c, route)

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name is required")
			return
		}

		var existing models.User
		err := st.FindOne(c.Request.Context(), models.UserCollection, store.Fields{"email": email}, &existing)
		switch {
		case err == nil:
			respondWithError(c, http.StatusConflict, route, "email already registered")
			return
		case !errors.Is(err, store.ErrNotFound):
			respondStoreError(c, route, err, exposeDetails)
			return
		}

		user := models.User{
			Name:      name,
			Email:     email,
			Address:   strings.TrimSpace(req.Address),
			Phone:     strings.TrimSpace(req.Phone),
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}

		id, err := st.Insert(c.Request.Context(), models.UserCollection, user)
		if errors.Is(err, store.ErrDuplicate) {
			respondWithError(c, http.StatusConflict, route, "email already registered")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, exposeDetails)
			return
		}

		logging.From(c).Info("user created", "user_id", id)
		c.JSON(http.StatusOK, gin.H{"_id": id})
	}
}

func ListUsers(st store.Store, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users"
		defer handlePanic(c, route)

		limit, err := parseLimit(c.Query("limit"), defaultUserLimit)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		users := []models.User{}
		if err := st.Find(c.Request.Context(), models.UserCollection, nil, limit, &users); err != nil {
			respondStoreError(c, route, err, exposeDetails)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
