package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protected(issuer *helpers.TokenIssuer, admin bool) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{Auth(issuer)}
	if admin {
		chain = append(chain, AdminOnly())
	}
	chain = append(chain, func(c *gin.Context) {
		claims := c.MustGet(ClaimsKey).(*helpers.Claims)
		c.String(http.StatusOK, claims.UserID)
	})
	r.GET("/", chain...)
	return r
}

func call(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	issuer := helpers.NewTokenIssuer("middleware-secret-123", time.Hour)
	id := primitive.NewObjectID().Hex()
	token, err := issuer.CreateToken(id, "user")
	require.NoError(t, err)

	r := protected(issuer, false)

	w := call(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "You need to send token")

	w = call(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token invalid or expired")

	w = call(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, w.Body.String())
}

func TestAuthRejectsForeignSecret(t *testing.T) {
	other := helpers.NewTokenIssuer("a-different-secret-99", time.Hour)
	token, err := other.CreateToken(primitive.NewObjectID().Hex(), "admin")
	require.NoError(t, err)

	w := call(protected(helpers.NewTokenIssuer("middleware-secret-123", time.Hour), false), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	issuer := helpers.NewTokenIssuer("middleware-secret-123", time.Hour)
	r := protected(issuer, true)

	user, err := issuer.CreateToken(primitive.NewObjectID().Hex(), "user")
	require.NoError(t, err)
	w := call(r, user)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token is not admin")

	admin, err := issuer.CreateToken(primitive.NewObjectID().Hex(), "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, call(r, admin).Code)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestErrorHandlerRedacts(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestMetricsCountsByRoute(t *testing.T) {
	m := metrics.New(nil)
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/posts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/"+primitive.NewObjectID().Hex(), nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/posts/:id", "200")))
}
