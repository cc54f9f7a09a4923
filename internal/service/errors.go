package service

import "errors"

// 服务层业务错误，处理器据此映射响应码
var (
	ErrProductNotAvailable = errors.New("product not available")
	ErrVariantInvalid      = errors.New("variant selection invalid")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrPendingSync         = errors.New("cart has unsynced offline entries")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderCreateFailed   = errors.New("order create failed")
)
