package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/aurix-store/internal/constants"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`                    // 商品名称
	Description string         `gorm:"type:text" json:"description"`                              // 商品描述
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	Currency    string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`   // 币种
	Images      StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Tags        StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	VariantAxes JSON           `gorm:"type:json" json:"variant_axes"`                             // 可选规格维度（size/color/... → 候选值）
	Stock       int            `gorm:"not null;default:0" json:"stock"`                           // 可售库存
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// StockLabel 返回库存紧张程度标签
func (p Product) StockLabel() string {
	switch {
	case p.Stock <= 0:
		return constants.StockLabelOut
	case p.Stock < constants.StockThresholdOnly:
		return constants.StockLabelOnly
	case p.Stock < constants.StockThresholdLow:
		return constants.StockLabelLow
	default:
		return constants.StockLabelIn
	}
}

// AllowsVariant 校验规格选择是否落在商品声明的维度与候选值内
func (p Product) AllowsVariant(v Variant) bool {
	if len(v) == 0 {
		return true
	}
	if len(p.VariantAxes) == 0 {
		return false
	}
	for axis, chosen := range v {
		raw, ok := p.VariantAxes[axis]
		if !ok {
			return false
		}
		candidates, ok := raw.([]interface{})
		if !ok {
			return false
		}
		found := false
		for _, c := range candidates {
			if s, ok := c.(string); ok && s == chosen {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
