package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（结账后写入的购物车快照）
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo     string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单号
	CustomerRef string         `gorm:"type:varchar(128);index;not null" json:"customer_ref"`      // 客户标识（外部认证方提供，不解析）
	Status      string         `gorm:"type:varchar(20);not null;index" json:"status"`             // 订单状态
	TotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额
	Currency    string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`   // 币种
	ItemCount   int            `gorm:"not null;default:0" json:"item_count"`                      // 商品件数
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
