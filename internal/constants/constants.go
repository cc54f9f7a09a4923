package constants

// 订单状态常量
const (
	OrderStatusCreated   = "created"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

// 离线队列条目状态常量
const (
	EntryStatusPending   = "pending"
	EntryStatusReplaying = "replaying"
	EntryStatusConfirmed = "confirmed"
	EntryStatusFailed    = "failed"
)

// 远端拒绝原因常量
const (
	RemoteReasonOutOfStock = "out_of_stock"
)

// 库存状态标签常量
const (
	StockLabelOut  = "out_of_stock"
	StockLabelOnly = "only_n_left"
	StockLabelLow  = "low_stock"
	StockLabelIn   = "in_stock"
)

// 队列与任务常量
const (
	QueueDefault   = "default"
	TaskCartReplay = "cart:replay"
)

// 默认币种
const DefaultCurrency = "USD"

// 分页默认值
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// 库存紧张阈值
const (
	StockThresholdOnly = 5
	StockThresholdLow  = 15
)
