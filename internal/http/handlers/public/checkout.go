package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/aurix-store/internal/http/handlers/shared"
	"github.com/aurix-store/internal/http/response"
	"github.com/aurix-store/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结账请求
type CheckoutRequest struct {
	CustomerRef string `json:"customer_ref" binding:"required"`
	Currency    string `json:"currency"`
}

// Checkout 结账：购物车快照固化为订单
func (h *Handler) Checkout(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.CheckoutService.Checkout(c.Request.Context(), sessionID, service.CheckoutInput{
		CustomerRef: req.CustomerRef,
		Currency:    req.Currency,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrder 按订单号查询订单
func (h *Handler) GetOrder(c *gin.Context) {
	if _, ok := getSessionID(c); !ok {
		return
	}

	orderNo := strings.TrimSpace(c.Param("order_no"))
	order, err := h.CheckoutService.GetOrder(c.Request.Context(), orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "error.order_not_found")
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.Success(c, order)
}

// GetOrders 按客户引用分页查询订单
func (h *Handler) GetOrders(c *gin.Context) {
	if _, ok := getSessionID(c); !ok {
		return
	}

	customerRef := strings.TrimSpace(c.Query("customer_ref"))
	if customerRef == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.CheckoutService.ListOrders(c.Request.Context(), customerRef, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, gin.H{"orders": orders}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}
