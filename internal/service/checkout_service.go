package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/aurix-store/internal/constants"
	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/repository"
	"github.com/aurix-store/internal/session"

	"gorm.io/gorm"
)

// CheckoutInput 结账输入
type CheckoutInput struct {
	CustomerRef string
	Currency    string
}

// CheckoutService 结账服务
// 把购物车快照固化成订单并扣减库存，全程单事务；
// 只有订单落库成功才清空购物车，失败时购物车原样保留。
type CheckoutService struct {
	sessions    *session.Manager
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(sessions *session.Manager, productRepo repository.ProductRepository, orderRepo repository.OrderRepository) *CheckoutService {
	return &CheckoutService{
		sessions:    sessions,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// Checkout 将会话购物车结算为订单
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*models.Order, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// 有未送达的离线条目时先等重放，数量未经远端确认不能下单
	if sess.Queue.Pending() > 0 {
		return nil, ErrPendingSync
	}

	snap := sess.Store.Snapshot()
	if len(snap.Items) == 0 {
		return nil, ErrCartEmpty
	}

	ids := make([]uint, 0, len(snap.Items))
	for _, item := range snap.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range snap.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			return nil, ErrProductNotAvailable
		}
		if product.Stock < item.Quantity {
			return nil, ErrInsufficientStock
		}
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:     generateOrderNo(),
		CustomerRef: strings.TrimSpace(input.CustomerRef),
		Status:      constants.OrderStatusCreated,
		TotalAmount: snap.Total,
		Currency:    currency,
		ItemCount:   snap.ItemCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items := make([]models.OrderItem, 0, len(snap.Items))
	for _, line := range snap.Items {
		items = append(items, models.OrderItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Variant:    line.Variant,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			TotalPrice: line.Subtotal(),
		})
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.Create(order, items); err != nil {
			return err
		}
		for _, line := range snap.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}
		return nil
	})
	if err != nil {
		logger.Warnw("checkout_failed",
			"session", sessionID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, err
	}

	sess.Store.Clear()
	logger.Infow("checkout_completed",
		"session", sessionID,
		"order_no", order.OrderNo,
		"total", order.TotalAmount.String(),
		"item_count", order.ItemCount,
	)
	return order, nil
}

// GetOrder 按订单号查询
func (s *CheckoutService) GetOrder(_ context.Context, orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 按客户引用分页查询订单
func (s *CheckoutService) ListOrders(_ context.Context, customerRef string, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByCustomer(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		CustomerRef: customerRef,
	})
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("AX%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
