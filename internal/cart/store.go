package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aurix-store/internal/models"
)

var (
	ErrQuantityInvalid  = errors.New("cart quantity must be a positive integer")
	ErrUnitPriceInvalid = errors.New("cart unit price must not be negative")
)

// LineItem 购物车行项：商品 + 可选规格 + 加购时锁定的单价
// 规格一经创建不可变，改规格需删除后重新加购
type LineItem struct {
	ProductID uint           `json:"product_id"`
	Name      string         `json:"name"`
	UnitPrice models.Money   `json:"unit_price"`
	Quantity  int            `json:"quantity"`
	Variant   models.Variant `json:"variant,omitempty"`
}

// Subtotal 行项小计
func (li LineItem) Subtotal() models.Money {
	return models.NewMoneyFromDecimal(li.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(li.Quantity))))
}

func (li LineItem) key() string {
	return lineKey(li.ProductID, li.Variant)
}

func lineKey(productID uint, variant models.Variant) string {
	return fmt.Sprintf("%d|%s", productID, variant.Key())
}

// Snapshot 购物车只读快照
type Snapshot struct {
	Items     []LineItem   `json:"items"`
	Total     models.Money `json:"total"`
	ItemCount int          `json:"item_count"`
}

// Subscriber 购物车变更通知回调
type Subscriber func(Snapshot)

// Store 会话内购物车状态的唯一持有者
// 行项按插入顺序排列；同一 (productID, variant) 组合至多一行。
// 所有可变操作整体加锁，单个操作要么完整生效要么不生效。
type Store struct {
	mu    sync.Mutex
	items []LineItem
	index map[string]int
	subs  []Subscriber
}

// NewStore 创建空购物车
func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// Subscribe 注册变更通知；回调在每次成功变更后携带最新快照触发
func (s *Store) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// AddItem 加购：已存在同 (productID, variant) 组合时累加数量，否则追加新行项
// quantity 必须为正整数，unitPrice 不得为负；校验失败不改变购物车状态。
func (s *Store) AddItem(productID uint, name string, unitPrice models.Money, quantity int, variant models.Variant) (Snapshot, error) {
	if quantity < 1 {
		return s.Snapshot(), ErrQuantityInvalid
	}
	if unitPrice.Decimal.IsNegative() {
		return s.Snapshot(), ErrUnitPriceInvalid
	}

	s.mu.Lock()
	key := lineKey(productID, variant)
	if pos, ok := s.index[key]; ok {
		s.items[pos].Quantity += quantity
	} else {
		s.items = append(s.items, LineItem{
			ProductID: productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
			Variant:   variant.Clone(),
		})
		s.index[key] = len(s.items) - 1
	}
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return snap, nil
}

// RemoveItem 删除匹配行项；不存在时为幂等空操作，不报错
func (s *Store) RemoveItem(productID uint, variant models.Variant) Snapshot {
	s.mu.Lock()
	removed := s.removeLocked(lineKey(productID, variant))
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	if removed {
		notify(subs, snap)
	}
	return snap
}

// UpdateQuantity 直接设置数量；newQuantity ≤ 0 等价于 RemoveItem
// 行项不存在时为空操作。
func (s *Store) UpdateQuantity(productID uint, variant models.Variant, newQuantity int) (Snapshot, error) {
	if newQuantity <= 0 {
		return s.RemoveItem(productID, variant), nil
	}

	s.mu.Lock()
	changed := false
	if pos, ok := s.index[lineKey(productID, variant)]; ok {
		s.items[pos].Quantity = newQuantity
		changed = true
	}
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		notify(subs, snap)
	}
	return snap, nil
}

// ForceQuantity 不经校验直接钉住数量，供库存核对回调收敛本地状态使用
// n ≤ 0 时删除行项。
func (s *Store) ForceQuantity(productID uint, variant models.Variant, n int) Snapshot {
	if n <= 0 {
		return s.RemoveItem(productID, variant)
	}
	s.mu.Lock()
	if pos, ok := s.index[lineKey(productID, variant)]; ok {
		s.items[pos].Quantity = n
	}
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return snap
}

// Clear 无条件清空购物车（结账成功后调用）
func (s *Store) Clear() Snapshot {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[string]int)
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return snap
}

// Quantity 返回匹配行项的当前数量，不存在时为 0
func (s *Store) Quantity(productID uint, variant models.Variant) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos, ok := s.index[lineKey(productID, variant)]; ok {
		return s.items[pos].Quantity
	}
	return 0
}

// Total 合计金额 = Σ 单价 × 数量，每次读取重新计算，不做冗余缓存
func (s *Store) Total() models.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalOf(s.items)
}

// ItemCount 所有行项数量之和（角标展示用）
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.items)
}

// Items 返回行项的防御性副本，保持插入顺序
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Snapshot 返回当前只读快照
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, _ := s.snapshotLocked()
	return snap
}

func (s *Store) removeLocked(key string) bool {
	pos, ok := s.index[key]
	if !ok {
		return false
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, key)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].key()] = i
	}
	return true
}

func (s *Store) snapshotLocked() (Snapshot, []Subscriber) {
	snap := Snapshot{
		Items:     copyItems(s.items),
		Total:     totalOf(s.items),
		ItemCount: countOf(s.items),
	}
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	return snap, subs
}

// notify 在锁外触发订阅回调，避免回调内再次访问 Store 造成死锁
func notify(subs []Subscriber, snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Variant = out[i].Variant.Clone()
	}
	return out
}

func totalOf(items []LineItem) models.Money {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return models.NewMoneyFromDecimal(sum)
}

func countOf(items []LineItem) int {
	count := 0
	for _, li := range items {
		count += li.Quantity
	}
	return count
}
