package contactControllers

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var templates = mailer.Templates{StoreName: "Shop", PublicURL: "https://shop.test", Currency: "USD"}

func validRequest() gin.H {
	return gin.H{
		"name":    "Ana",
		"email":   "Ana@Example.com",
		"subject": "Sizing",
		"message": "Does the linen shirt run large?",
	}
}

func router(db *gorm.DB, m mailer.Mailer, adminEmail string, extra ...gin.HandlerFunc) *gin.Engine {
	r := testutil.Router()
	handlers := append(extra, SubmitContact(db, m, templates, adminEmail))
	r.POST("/api/contact", handlers...)
	return r
}

func TestSubmitContact_StoresAndForwards(t *testing.T) {
	db := testutil.NewDB(t)
	m := &testutil.Mailer{}
	r := router(db, m, "admin@shop.test")

	w := testutil.Do(t, r, http.MethodPost, "/api/contact", validRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored models.ContactMessage
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "ana@example.com", stored.Email)
	assert.NotEmpty(t, stored.ClientIP)

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"admin@shop.test"}, sent[0].To)
	assert.Equal(t, "ana@example.com", sent[0].ReplyTo)
	assert.Contains(t, sent[0].Subject, "Sizing")
}

func TestSubmitContact_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	r := router(db, &testutil.Mailer{}, "admin@shop.test")

	cases := map[string]func(gin.H){
		"missing name":  func(b gin.H) { delete(b, "name") },
		"bad email":     func(b gin.H) { b["email"] = "not-an-email" },
		"short message": func(b gin.H) { b["message"] = "hi" },
		"long message":  func(b gin.H) { b["message"] = strings.Repeat("a", 5001) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := validRequest()
			mutate(body)
			w := testutil.Do(t, r, http.MethodPost, "/api/contact", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.ContactMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitContact_MailFailureKeepsMessage(t *testing.T) {
	db := testutil.NewDB(t)
	r := router(db, &testutil.Mailer{Err: errors.New("resend down")}, "admin@shop.test")

	w := testutil.Do(t, r, http.MethodPost, "/api/contact", validRequest())
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.ContactMessage{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitContact_RateLimited(t *testing.T) {
	db := testutil.NewDB(t)
	limiter := middleware.NewIPRateLimiter(2, time.Minute)
	r := router(db, &testutil.Mailer{}, "", middleware.RateLimit(limiter))

	for i := 0; i < 2; i++ {
		w := testutil.Do(t, r, http.MethodPost, "/api/contact", validRequest())
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := testutil.Do(t, r, http.MethodPost, "/api/contact", validRequest())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
