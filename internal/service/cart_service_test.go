package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/offline"
	"github.com/aurix-store/internal/remote"
	"github.com/aurix-store/internal/repository"
	"github.com/aurix-store/internal/session"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// flakySyncer 可切换连通性的远端桩
type flakySyncer struct {
	unreachable bool
	stock       map[uint]int
}

func (f *flakySyncer) SyncAdd(_ context.Context, req remote.AddRequest) (*remote.Totals, error) {
	if f.unreachable {
		return nil, remote.ErrRemoteUnreachable
	}
	if available, ok := f.stock[req.ProductID]; ok {
		return nil, &remote.StockError{ProductID: req.ProductID, Available: available}
	}
	return &remote.Totals{}, nil
}

func (f *flakySyncer) Health(_ context.Context) error {
	if f.unreachable {
		return remote.ErrRemoteUnreachable
	}
	return nil
}

type serviceFixture struct {
	db          *gorm.DB
	syncer      *flakySyncer
	sessions    *session.Manager
	productRepo *repository.GormProductRepository
	orderRepo   *repository.GormOrderRepository
	cart        *CartService
	checkout    *CheckoutService
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	syncer := &flakySyncer{}
	sessions := session.NewManager(syncer, offline.NewMemoryStorage())
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	return &serviceFixture{
		db:          db,
		syncer:      syncer,
		sessions:    sessions,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cart:        NewCartService(sessions, productRepo),
		checkout:    NewCheckoutService(sessions, productRepo, orderRepo),
	}
}

func seedProduct(t *testing.T, fx *serviceFixture, slug string, price float64, stock int, active bool, axes models.JSON) *models.Product {
	t.Helper()
	product := &models.Product{
		Slug:        slug,
		Name:        "商品 " + slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		Currency:    "USD",
		VariantAxes: axes,
		Stock:       stock,
		IsActive:    active,
	}
	if err := fx.productRepo.Create(product); err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func TestCartServiceAddItemSnapshotsPrice(t *testing.T) {
	fx := setupServiceTest(t)
	product := seedProduct(t, fx, "tee", 29.99, 10, true, nil)

	result, err := fx.cart.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if result.Queued {
		t.Fatal("remote reachable, must not queue")
	}
	if len(result.Cart.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Cart.Items))
	}
	line := result.Cart.Items[0]
	if line.Name != product.Name || line.UnitPrice.String() != "29.99" {
		t.Fatalf("line = %+v, want product name and snapshotted price", line)
	}
	if result.Cart.Total.String() != "59.98" {
		t.Fatalf("total = %s, want 59.98", result.Cart.Total.String())
	}

	// 之后改价不影响已在购物车里的行项
	product.PriceAmount = models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99))
	if err := fx.productRepo.Update(product); err != nil {
		t.Fatalf("update price: %v", err)
	}
	snap, _, err := fx.cart.GetCart(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if snap.Total.String() != "59.98" {
		t.Fatalf("total after reprice = %s, want 59.98", snap.Total.String())
	}
}

func TestCartServiceAddItemRejectsUnavailableProduct(t *testing.T) {
	fx := setupServiceTest(t)
	retired := seedProduct(t, fx, "retired", 10, 5, false, nil)

	_, err := fx.cart.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: retired.ID, Quantity: 1})
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("err = %v, want ErrProductNotAvailable", err)
	}

	_, err = fx.cart.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: 9999, Quantity: 1})
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("missing product err = %v, want ErrProductNotAvailable", err)
	}
}

func TestCartServiceAddItemValidatesVariant(t *testing.T) {
	fx := setupServiceTest(t)
	axes := models.JSON{"size": []interface{}{"S", "M", "L"}}
	product := seedProduct(t, fx, "tee", 29.99, 10, true, axes)

	_, err := fx.cart.AddItem(context.Background(), "sess-1", AddItemInput{
		ProductID: product.ID,
		Quantity:  1,
		Variant:   models.Variant{"size": "XXL"},
	})
	if !errors.Is(err, ErrVariantInvalid) {
		t.Fatalf("err = %v, want ErrVariantInvalid", err)
	}

	result, err := fx.cart.AddItem(context.Background(), "sess-1", AddItemInput{
		ProductID: product.ID,
		Quantity:  1,
		Variant:   models.Variant{"size": "M"},
	})
	if err != nil {
		t.Fatalf("valid variant AddItem: %v", err)
	}
	if len(result.Cart.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Cart.Items))
	}
}

func TestCartServiceAddItemQueuesOffline(t *testing.T) {
	fx := setupServiceTest(t)
	product := seedProduct(t, fx, "tee", 29.99, 10, true, nil)
	fx.syncer.unreachable = true

	result, err := fx.cart.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !result.Queued {
		t.Fatal("expected queued while remote unreachable")
	}

	_, pending, err := fx.cart.GetCart(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if pending != 1 {
		t.Fatalf("pending = %d, want 1", pending)
	}
}

func TestCartServiceSessionIsolation(t *testing.T) {
	fx := setupServiceTest(t)
	product := seedProduct(t, fx, "tee", 29.99, 10, true, nil)

	if _, err := fx.cart.AddItem(context.Background(), "sess-a", AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	snap, _, err := fx.cart.GetCart(context.Background(), "sess-b")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatal("sessions must not share carts")
	}
}

func TestCartServiceRequiresSessionID(t *testing.T) {
	fx := setupServiceTest(t)
	_, _, err := fx.cart.GetCart(context.Background(), "  ")
	if !errors.Is(err, session.ErrSessionIDRequired) {
		t.Fatalf("err = %v, want ErrSessionIDRequired", err)
	}
}
