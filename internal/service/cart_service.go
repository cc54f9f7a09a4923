package service

import (
	"context"

	"github.com/aurix-store/internal/cart"
	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/offline"
	"github.com/aurix-store/internal/repository"
	"github.com/aurix-store/internal/session"
)

// AddItemInput 加购输入
type AddItemInput struct {
	ProductID uint
	Quantity  int
	Variant   models.Variant
}

// AddItemResult 加购结果
// Queued 表示远端当前不可达，意图已离线保存，本地购物车照常更新。
type AddItemResult struct {
	Cart   cart.Snapshot `json:"cart"`
	Queued bool          `json:"queued"`
}

// CartService 购物车服务
// 商品解析与规格校验在这里完成，价格以加购当刻的商品价为准快照进购物车；
// 具体的本地落车与远端确认交给会话的离线队列。
type CartService struct {
	sessions    *session.Manager
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(sessions *session.Manager, productRepo repository.ProductRepository) *CartService {
	return &CartService{sessions: sessions, productRepo: productRepo}
}

// AddItem 加购：校验商品与规格后委托离线队列提交
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (AddItemResult, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return AddItemResult{}, err
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return AddItemResult{}, err
	}
	if product == nil || !product.IsActive {
		return AddItemResult{}, ErrProductNotAvailable
	}
	if !product.AllowsVariant(input.Variant) {
		return AddItemResult{}, ErrVariantInvalid
	}

	snap, queued, err := sess.Queue.SubmitAdd(ctx, product.ID, product.Name, product.PriceAmount, input.Quantity, input.Variant)
	if err != nil {
		return AddItemResult{Cart: snap, Queued: queued}, err
	}
	return AddItemResult{Cart: snap, Queued: queued}, nil
}

// UpdateQuantity 改量；减到 0 即移除
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID uint, variant models.Variant, quantity int) (cart.Snapshot, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return sess.Store.UpdateQuantity(productID, variant, quantity)
}

// RemoveItem 移除行项，重复移除幂等
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID uint, variant models.Variant) (cart.Snapshot, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return sess.Store.RemoveItem(productID, variant), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return sess.Store.Clear(), nil
}

// GetCart 当前购物车快照及未送达条目数
func (s *CartService) GetCart(ctx context.Context, sessionID string) (cart.Snapshot, int, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, 0, err
	}
	return sess.Store.Snapshot(), sess.Queue.Pending(), nil
}

// Corrections 取走累积的库存修正通知
func (s *CartService) Corrections(ctx context.Context, sessionID string) ([]offline.Correction, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Queue.Corrections(), nil
}
