package public

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/offline"
	"github.com/aurix-store/internal/provider"
	"github.com/aurix-store/internal/remote"
	"github.com/aurix-store/internal/repository"
	"github.com/aurix-store/internal/service"
	"github.com/aurix-store/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// okSyncer 始终确认的远端桩
type okSyncer struct{}

func (okSyncer) SyncAdd(_ context.Context, _ remote.AddRequest) (*remote.Totals, error) {
	return &remote.Totals{}, nil
}

func (okSyncer) Health(_ context.Context) error { return nil }

type cartEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupCartHandlerTest(t *testing.T) (*gin.Engine, *models.Product) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	product := &models.Product{
		Slug:        "acme-tee",
		Name:        "Acme Tee",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(20.00)),
		Currency:    "USD",
		Stock:       10,
		IsActive:    true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("seed product failed: %v", err)
	}

	sessions := session.NewManager(okSyncer{}, offline.NewMemoryStorage())
	handler := New(&provider.Container{
		CartService: service.NewCartService(sessions, productRepo),
	})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("session_id", "sess-handler")
		c.Next()
	})
	r.POST("/cart/items", handler.AddCartItem)
	return r, product
}

func postCartItem(t *testing.T, r *gin.Engine, body string) cartEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var envelope cartEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v", err)
	}
	return envelope
}

func TestAddCartItemDefaultsOmittedQuantityToOne(t *testing.T) {
	r, product := setupCartHandlerTest(t)

	envelope := postCartItem(t, r, fmt.Sprintf(`{"product_id": %d}`, product.ID))
	if envelope.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", envelope.StatusCode, envelope.Msg)
	}

	var result service.AddItemResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		t.Fatalf("decode result failed: %v", err)
	}
	if len(result.Cart.Items) != 1 || result.Cart.Items[0].Quantity != 1 {
		t.Fatalf("omitted quantity should add one unit, got %+v", result.Cart.Items)
	}
	if result.Cart.ItemCount != 1 {
		t.Fatalf("item count want 1 got %d", result.Cart.ItemCount)
	}
}

func TestAddCartItemRejectsExplicitZeroQuantity(t *testing.T) {
	r, product := setupCartHandlerTest(t)

	envelope := postCartItem(t, r, fmt.Sprintf(`{"product_id": %d, "quantity": 0}`, product.ID))
	if envelope.StatusCode != 400 {
		t.Fatalf("explicit zero quantity want status_code 400 got %d", envelope.StatusCode)
	}
	if envelope.Msg != "error.quantity_invalid" {
		t.Fatalf("msg want error.quantity_invalid got %s", envelope.Msg)
	}
}
