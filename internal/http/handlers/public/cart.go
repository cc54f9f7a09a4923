package public

import (
	"strconv"

	"github.com/aurix-store/internal/http/response"
	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加购/改量请求
// 加购未携带 quantity 按 1 处理；显式传 0 仍按非法数量拒绝
type CartItemRequest struct {
	ProductID uint           `json:"product_id" binding:"required"`
	Quantity  *int           `json:"quantity"`
	Variant   models.Variant `json:"variant"`
}

func (r CartItemRequest) addQuantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

func (r CartItemRequest) updateQuantity() int {
	if r.Quantity == nil {
		return 0
	}
	return *r.Quantity
}

// GetCart 获取购物车快照
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}

	snap, pending, err := h.CartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"items":      snap.Items,
		"total":      snap.Total,
		"item_count": snap.ItemCount,
		"pending":    pending,
	})
}

// AddCartItem 加购
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.CartService.AddItem(c.Request.Context(), sessionID, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.addQuantity(),
		Variant:   req.Variant,
	})
	if err != nil {
		respondCartAddError(c, err, result)
		return
	}
	response.Success(c, result)
}

// UpdateCartItem 改量；数量降到 0 即移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	snap, err := h.CartService.UpdateQuantity(c.Request.Context(), sessionID, req.ProductID, req.Variant, req.updateQuantity())
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	response.Success(c, snap)
}

// DeleteCartItem 移除行项；重复删除幂等
func (h *Handler) DeleteCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	// 规格从查询串取：?variant[size]=M
	variant := models.Variant{}
	for axis, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if key, ok := variantAxisFromQuery(axis); ok {
			variant[key] = values[0]
		}
	}
	if len(variant) == 0 {
		variant = nil
	}

	snap, err := h.CartService.RemoveItem(c.Request.Context(), sessionID, uint(productID), variant)
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	response.Success(c, snap)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}

	snap, err := h.CartService.Clear(c.Request.Context(), sessionID)
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	response.Success(c, snap)
}

// GetCartCorrections 取走库存修正通知
func (h *Handler) GetCartCorrections(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}

	corrections, err := h.CartService.Corrections(c.Request.Context(), sessionID)
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_fetch_failed")
		return
	}
	response.Success(c, gin.H{"corrections": corrections})
}

// variantAxisFromQuery 解析 variant[axis] 形式的查询键
func variantAxisFromQuery(key string) (string, bool) {
	const prefix = "variant["
	if len(key) <= len(prefix)+1 || key[:len(prefix)] != prefix || key[len(key)-1] != ']' {
		return "", false
	}
	return key[len(prefix) : len(key)-1], true
}
