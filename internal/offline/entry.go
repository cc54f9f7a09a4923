package offline

import (
	"time"

	"github.com/google/uuid"

	"github.com/aurix-store/internal/constants"
	"github.com/aurix-store/internal/models"
)

// Entry 一次未能到达远端的加购意图
// 状态机：pending → replaying → confirmed/failed；重放途中再次断网回到 pending。
type Entry struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	ProductID uint           `json:"product_id"`
	Name      string         `json:"name"`
	UnitPrice models.Money   `json:"unit_price"`
	Quantity  int            `json:"quantity"`
	Variant   models.Variant `json:"variant,omitempty"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

func newEntry(sessionID string, productID uint, name string, unitPrice models.Money, quantity int, variant models.Variant) Entry {
	return Entry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Variant:   variant.Clone(),
		Status:    constants.EntryStatusPending,
		CreatedAt: time.Now(),
	}
}

// Correction 重放被远端库存校验拒绝后，对本地购物车的修正通知
type Correction struct {
	ProductID uint           `json:"product_id"`
	Name      string         `json:"name"`
	Variant   models.Variant `json:"variant,omitempty"`
	Requested int            `json:"requested"`
	Confirmed int            `json:"confirmed"`
}
