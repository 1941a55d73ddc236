package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": c.GetString(AdminSubjectKey)})
	})
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthOpenWithoutSecret(t *testing.T) {
	w := get(guardedRouter(""), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthAcceptsIssuedToken(t *testing.T) {
	token, err := IssueAdminToken("s3cret", "ops@example.com", time.Hour)
	require.NoError(t, err)

	w := get(guardedRouter("s3cret"), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":"ops@example.com"}`, w.Body.String())
}

func TestAdminAuthRejects(t *testing.T) {
	r := guardedRouter("s3cret")

	expired, err := IssueAdminToken("s3cret", "ops", -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueAdminToken("other", "ops", time.Hour)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "ops", "role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops", "role": RoleAdmin,
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"no scheme":    expired,
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + foreign,
		"garbage":      "Bearer abc.def.ghi",
		"hs512":        "Bearer " + hs512,
		"no expiry":    "Bearer " + noExpiry,
	}
	for name, auth := range cases {
		w := get(r, auth)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestAdminAuthForbidsOtherRoles(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	w := get(guardedRouter("s3cret"), "Bearer "+signed)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIssueAdminTokenNeedsSecret(t *testing.T) {
	_, err := IssueAdminToken("", "ops", time.Hour)
	assert.Error(t, err)
}
