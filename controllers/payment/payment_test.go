package paymentControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "whsec"

func setup(t *testing.T) (*gin.Engine, *gorm.DB, *testutil.Publisher, models.Order) {
	t.Helper()
	db := testutil.NewDB(t)
	published := &testutil.Publisher{}
	n := &orderControllers.Notifier{Mailer: &testutil.Mailer{}, Publisher: published}

	order := models.Order{
		OrderRef:      models.NewOrderRef(time.Now()),
		UserID:        "u1",
		TotalPrice:    decimal.RequireFromString("20.00"),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)

	r := testutil.Router()
	r.POST("/payment/webhook", middleware.WebhookSignature(secret), PaymentWebhook(db, n))
	return r, db, published, order
}

func post(r http.Handler, body any, signature string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if signature == "" {
		signature = middleware.Sign(secret, data)
	}
	req.Header.Set("X-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentWebhook_MarksPaid(t *testing.T) {
	r, db, published, order := setup(t)

	w := post(r, gin.H{"order_ref": order.OrderRef, "status": "paid", "transaction_id": "tx_1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.NotNil(t, stored.PaidAt)
	assert.Equal(t, []string{events.OrderPaymentStatus}, published.Types())
}

func TestPaymentWebhook_Rejects(t *testing.T) {
	r, db, published, order := setup(t)

	w := post(r, gin.H{"order_ref": order.OrderRef, "status": "paid"}, "deadbeef")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = post(r, gin.H{"order_ref": "unknown", "status": "paid"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = post(r, gin.H{"order_ref": order.OrderRef, "status": "settled"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, gin.H{"status": "paid"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.Empty(t, published.Types())
}
