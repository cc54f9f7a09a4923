package public

import (
	"errors"

	"github.com/aurix-store/internal/cart"
	"github.com/aurix-store/internal/http/response"
	"github.com/aurix-store/internal/remote"
	"github.com/aurix-store/internal/service"
	"github.com/aurix-store/internal/session"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: session.ErrSessionIDRequired, code: response.CodeUnauthorized, key: "error.session_required"},
	{target: cart.ErrQuantityInvalid, code: response.CodeBadRequest, key: "error.quantity_invalid"},
	{target: cart.ErrUnitPriceInvalid, code: response.CodeBadRequest, key: "error.unit_price_invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrVariantInvalid, code: response.CodeBadRequest, key: "error.variant_invalid"},
	{target: remote.ErrRemoteRejected, code: response.CodeBadRequest, key: "error.remote_rejected"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: session.ErrSessionIDRequired, code: response.CodeUnauthorized, key: "error.session_required"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrPendingSync, code: response.CodeConflict, key: "error.cart_sync_pending"},
	{target: service.ErrInsufficientStock, code: response.CodeConflict, key: "error.insufficient_stock"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}

// respondCartAddError 加购错误响应；库存拒绝附带远端确认的可售量
func respondCartAddError(c *gin.Context, err error, result service.AddItemResult) {
	var stockErr *remote.StockError
	if errors.As(err, &stockErr) {
		response.ErrorWithData(c, response.CodeConflict, "error.out_of_stock", gin.H{
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"cart":       result.Cart,
		})
		return
	}
	respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.order_create_failed")
}
