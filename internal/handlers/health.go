package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/store"
)

const serviceName = "perfume-store-api"

// inspector is implemented by stores that can describe themselves.
type inspector interface {
	Name() string
	CollectionNames(ctx context.Context) ([]string, error)
}

func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	}
}

// Diagnostics reports backend and database health. It always answers 200;
// problems are described in the body.
func Diagnostics(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /test"
		defer handlePanic(c, route)

		resp := gin.H{
			"backend":           "running",
			"database":          "not available",
			"database_name":     nil,
			"connection_status": "not connected",
			"collections":       []string{},
		}

		if st == nil {
			c.JSON(http.StatusOK, resp)
			return
		}

		if err := ensureStore(c.Request.Context(), st); err != nil {
			resp["database"] = "error: " + truncate(err.Error(), 80)
			c.JSON(http.StatusOK, resp)
			return
		}
		resp["database"] = "connected"
		resp["connection_status"] = "connected"

		if in, ok := st.(inspector); ok {
			resp["database_name"] = in.Name()
			names, err := in.CollectionNames(c.Request.Context())
			if err != nil {
				resp["database"] = "connected but error: " + truncate(err.Error(), 80)
			} else {
				if len(names) > 10 {
					names = names[:10]
				}
				resp["collections"] = names
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
