package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/history"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const apiKey = "admin-key"

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cfg := &config.Config{
		Admin:   config.AdminConfig{APIKey: apiKey},
		Catalog: config.CatalogConfig{PageSize: 9},
		Payment: config.PaymentConfig{WebhookSecret: "whsec"},
	}
	r := testutil.Router()
	SetupRoutes(r, &Deps{
		DB:             testutil.NewDB(t),
		Config:         cfg,
		Calc:           testutil.Calculator(t),
		Verifier:       auth.NewVerifier(config.JWTConfig{SupabaseSecret: "s", GuestSecret: "g", GuestTTL: time.Hour}),
		Storage:        store,
		Mailer:         &testutil.Mailer{},
		Templates:      mailer.Templates{StoreName: "Shop"},
		Publisher:      events.NoopPublisher{},
		Hub:            events.NewHub(zap.NewNop()),
		History:        history.NewMemoryStore(),
		ContactLimiter: middleware.NewIPRateLimiter(5, time.Minute),
	})
	return r
}

func TestSetupRoutes_Access(t *testing.T) {
	r := newEngine(t)

	cases := []struct {
		method, path string
		header       map[string]string
		want         int
	}{
		{http.MethodGet, "/products", nil, http.StatusOK},
		{http.MethodGet, "/categories", nil, http.StatusOK},
		{http.MethodGet, "/banners", nil, http.StatusOK},
		{http.MethodGet, "/delivery-dates", nil, http.StatusOK},
		{http.MethodGet, "/api/products/stock?ids=1", nil, http.StatusOK},
		{http.MethodGet, "/cart", nil, http.StatusUnauthorized},
		{http.MethodGet, "/user", nil, http.StatusUnauthorized},
		{http.MethodGet, "/orders", nil, http.StatusUnauthorized},
		{http.MethodGet, "/admin/orders", nil, http.StatusUnauthorized},
		{http.MethodGet, "/admin/orders", map[string]string{"X-API-KEY": "wrong"}, http.StatusUnauthorized},
		{http.MethodGet, "/admin/orders", map[string]string{"X-API-KEY": apiKey}, http.StatusOK},
		{http.MethodGet, "/admin/banners", map[string]string{"X-API-KEY": apiKey}, http.StatusOK},
		{http.MethodGet, "/admin/returns", map[string]string{"X-API-KEY": apiKey}, http.StatusOK},
		{http.MethodPost, "/payment/webhook", nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestSetupRoutes_GuestToken(t *testing.T) {
	r := newEngine(t)

	w := testutil.Do(t, r, http.MethodPost, "/auth/guest", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	testutil.Decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// guests cannot reach profile routes
	req = httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
