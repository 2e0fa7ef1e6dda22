// Package testutil builds in-memory databases, fixtures and routers for handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pricing"
	"github.com/junaidrashid-git/storefront-api/slug"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database private to the test. A single connection keeps the
// in-memory database alive and shared by every query of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openDB(t, ":memory:")
}

// NewStrictDB is NewDB with foreign keys enforced, as they are on Postgres
func NewStrictDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openDB(t, "file::memory:?_foreign_keys=on")
}

func openDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Calculator is the default pricing table with 15% tax
func Calculator(t *testing.T) *pricing.Calculator {
	t.Helper()
	calc, err := pricing.FromConfig(config.PricingConfig{TaxRate: 0.15, DeliveryDates: config.DefaultDeliveryDates})
	require.NoError(t, err)
	return calc
}

// Router returns a test-mode gin engine
func Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// As authenticates every request of a route group as id
func As(id auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.SetIdentity(c, id)
		c.Next()
	}
}

func User(id string) auth.Identity {
	return auth.Identity{ID: id, Email: id + "@example.com", Role: auth.RoleUser}
}

func Guest(id string) auth.Identity {
	return auth.Identity{ID: id, Role: auth.RoleGuest}
}

// Category creates a category named name with slug
func Category(t *testing.T, db *gorm.DB, name, categorySlug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: categorySlug}
	require.NoError(t, db.Create(c).Error)
	return c
}

var seq atomic.Int64

// ProductOpts overrides fixture fields
type ProductOpts func(p *models.Product)

// Product creates a published product priced at price with stock units
func Product(t *testing.T, db *gorm.DB, name, price string, stock int, opts ...ProductOpts) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         name,
		Slug:         fmt.Sprintf("%s-%d", slug.Make(name), seq.Add(1)),
		Price:        decimal.RequireFromString(price),
		ListPrice:    decimal.RequireFromString(price),
		CountInStock: stock,
		IsPublished:  true,
		Images:       []models.ProductImage{{URL: "/uploads/products/" + slug.Make(name) + ".jpg"}},
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Do sends a JSON request and returns the recorder
func Do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the response body into v
func Decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// Upload is a file part of a multipart request
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

// DoMultipart sends a multipart form with fields and optional files
func DoMultipart(t *testing.T, h http.Handler, method, path string, fields map[string]string, files ...Upload) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Mailer records sent messages; Err makes every send fail
type Mailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	Err  error
}

func (m *Mailer) Send(_ context.Context, msg mailer.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Mailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

// Publisher records published events
type Publisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *Publisher) Close() error { return nil }

// Types lists the types of the published events in order
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}
