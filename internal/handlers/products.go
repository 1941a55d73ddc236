package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/logging"
	"storefront/internal/models"
	"storefront/internal/store"
)

const defaultProductLimit = 50

type productRequest struct {
	Title       string            `json:"title" binding:"required"`
	Brand       string            `json:"brand"`
	Description string            `json:"description"`
	Price       *float64          `json:"price" binding:"required,gte=0"`
	Images      []string          `json:"images" binding:"omitempty,dive,url"`
	NotesTop    models.StringList `json:"notes_top"`
	NotesHeart  models.StringList `json:"notes_heart"`
	NotesBase   models.StringList `json:"notes_base"`
	SizesML     []int             `json:"sizes_ml" binding:"omitempty,dive,gt=0"`
	SKU         string            `json:"sku"`
	InStock     *bool             `json:"in_stock"`
}

func (r productRequest) toModel(now time.Time) models.Product {
	p := models.Product{
		Title:       strings.TrimSpace(r.Title),
		Brand:       strings.TrimSpace(r.Brand),
		Description: r.Description,
		Price:       *r.Price,
		Images:      r.Images,
		NotesTop:    r.NotesTop,
		NotesHeart:  r.NotesHeart,
		NotesBase:   r.NotesBase,
		SizesML:     r.SizesML,
		SKU:         strings.TrimSpace(r.SKU),
		InStock:     true,
		CreatedAt:   now,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if len(p.SizesML) == 0 {
		p.SizesML = append([]int(nil), models.DefaultSizesML...)
	}
	if r.InStock != nil {
		p.InStock = *r.InStock
	}
	return p
}

func CreateProduct(st store.Store, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			respondWithError(c, http.StatusBadRequest, route, "title is required")
			return
		}

		id, err := st.Insert(c.Request.Context(), models.ProductCollection, req.toModel(time.Now().UTC()))
		if err != nil {
			respondStoreError(c, route, err, exposeDetails)
			return
		}

		logging.From(c).Info("product created", "product_id", id, "sku", req.SKU)
		c.JSON(http.StatusOK, gin.H{"_id": id})
	}
}

func ListProducts(st store.Store, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		limit, err := parseLimit(c.Query("limit"), defaultProductLimit)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		products := []models.Product{}
		if err := st.Find(c.Request.Context(), models.ProductCollection, nil, limit, &products); err != nil {
			respondStoreError(c, route, err, exposeDetails)
			return
		}

		c.JSON(http.StatusOK, products)
	}
}
