package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aurix-store/internal/constants"
	"github.com/aurix-store/internal/models"
)

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	fx := setupServiceTest(t)
	product := seedProduct(t, fx, "tee", 29.99, 10, true, nil)

	ctx := context.Background()
	if _, err := fx.cart.AddItem(ctx, "sess-1", AddItemInput{ProductID: product.ID, Quantity: 3}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	order, err := fx.checkout.Checkout(ctx, "sess-1", CheckoutInput{CustomerRef: "cust-1"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if !strings.HasPrefix(order.OrderNo, "AX") {
		t.Fatalf("order no = %s, want AX prefix", order.OrderNo)
	}
	if order.Status != constants.OrderStatusCreated {
		t.Fatalf("status = %s, want created", order.Status)
	}
	if order.TotalAmount.String() != "89.97" || order.ItemCount != 3 {
		t.Fatalf("order totals = %s/%d, want 89.97/3", order.TotalAmount.String(), order.ItemCount)
	}

	// 订单落库且带行项快照
	persisted, err := fx.checkout.GetOrder(ctx, order.OrderNo)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if len(persisted.Items) != 1 || persisted.Items[0].Quantity != 3 || persisted.Items[0].TotalPrice.String() != "89.97" {
		t.Fatalf("items = %+v", persisted.Items)
	}

	// 库存扣减
	reloaded, err := fx.productRepo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Stock != 7 {
		t.Fatalf("stock = %d, want 7", reloaded.Stock)
	}

	// 成功后购物车清空
	snap, _, err := fx.cart.GetCart(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(snap.Items) != 0 || snap.Total.String() != "0.00" {
		t.Fatalf("cart not cleared: %+v", snap)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	fx := setupServiceTest(t)
	_, err := fx.checkout.Checkout(context.Background(), "sess-1", CheckoutInput{CustomerRef: "cust-1"})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("err = %v, want ErrCartEmpty", err)
	}
}

func TestCheckoutRejectsPendingOfflineEntries(t *testing.T) {
	fx := setupServiceTest(t)
	product := seedProduct(t, fx, "tee", 29.99, 10, true, nil)

	ctx := context.Background()
	fx.syncer.unreachable = true
	if _, err := fx.cart.AddItem(ctx, "sess-1", AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := fx.checkout.Checkout(ctx, "sess-1", CheckoutInput{CustomerRef: "cust-1"})
	if !errors.Is(err, ErrPendingSync) {
		t.Fatalf("err = %v, want ErrPendingSync", err)
	}

	// 重放成功后结账放行
	fx.syncer.unreachable = false
	sess, err := fx.sessions.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("session Get: %v", err)
	}
	if err := sess.Queue.Replay(ctx); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if _, err := fx.checkout.Checkout(ctx, "sess-1", CheckoutInput{CustomerRef: "cust-1"}); err != nil {
		t.Fatalf("Checkout after replay: %v", err)
	}
}

func TestCheckoutInsufficientStockKeepsCart(t *testing.T) {
	fx := setupServiceTest(t)
	product := seedProduct(t, fx, "tee", 29.99, 2, true, nil)

	ctx := context.Background()
	if _, err := fx.cart.AddItem(ctx, "sess-1", AddItemInput{ProductID: product.ID, Quantity: 3}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := fx.checkout.Checkout(ctx, "sess-1", CheckoutInput{CustomerRef: "cust-1"})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// 失败不动购物车，也不落订单
	snap, _, err := fx.cart.GetCart(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatal("cart must survive a failed checkout")
	}
	var count int64
	if err := fx.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("orders = %d, want 0", count)
	}
}

func TestCheckoutDefaultsCurrency(t *testing.T) {
	fx := setupServiceTest(t)
	product := seedProduct(t, fx, "tee", 10, 5, true, nil)

	ctx := context.Background()
	if _, err := fx.cart.AddItem(ctx, "sess-1", AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	order, err := fx.checkout.Checkout(ctx, "sess-1", CheckoutInput{CustomerRef: "cust-1"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if order.Currency != constants.DefaultCurrency {
		t.Fatalf("currency = %s, want %s", order.Currency, constants.DefaultCurrency)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	fx := setupServiceTest(t)
	_, err := fx.checkout.GetOrder(context.Background(), "AX-missing")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}
