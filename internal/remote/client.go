package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aurix-store/internal/config"
	"github.com/aurix-store/internal/constants"
	"github.com/aurix-store/internal/models"
)

var (
	// ErrRemoteUnreachable 远端不可达（网络失败/超时/5xx），走离线队列路径
	ErrRemoteUnreachable = errors.New("remote cart service unreachable")
	// ErrRemoteRejected 远端明确拒绝且非库存原因，不重放
	ErrRemoteRejected = errors.New("remote cart service rejected mutation")
)

// StockError 远端确认库存不足；Available 为远端确认的可售数量
type StockError struct {
	ProductID uint
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %d available", e.ProductID, e.Available)
}

// AddRequest 加购同步请求
type AddRequest struct {
	SessionID string         `json:"-"`
	ProductID uint           `json:"product_id"`
	Quantity  int            `json:"quantity"`
	Variant   models.Variant `json:"variant,omitempty"`
}

// Totals 远端返回的合计（仅作参考，本地购物车仍是唯一事实来源）
type Totals struct {
	Total     models.Money `json:"total"`
	ItemCount int          `json:"item_count"`
}

// CartSyncer 远端购物车同步接口
type CartSyncer interface {
	SyncAdd(ctx context.Context, req AddRequest) (*Totals, error)
	Health(ctx context.Context) error
}

type wireResponse struct {
	Success       bool    `json:"success"`
	UpdatedTotals *Totals `json:"updated_totals,omitempty"`
	ErrorReason   string  `json:"error_reason,omitempty"`
	Available     int     `json:"available,omitempty"`
}

// Client 基于 HTTP 的远端购物车客户端
type Client struct {
	baseURL    string
	healthPath string
	httpClient *http.Client
}

// NewClient 创建远端客户端
func NewClient(cfg *config.RemoteConfig) *Client {
	baseURL := "http://127.0.0.1:9000/api/v1"
	healthPath := "/healthz"
	timeout := 3 * time.Second
	if cfg != nil {
		if strings.TrimSpace(cfg.BaseURL) != "" {
			baseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
		}
		if strings.TrimSpace(cfg.HealthPath) != "" {
			healthPath = cfg.HealthPath
		}
		if cfg.TimeoutMS > 0 {
			timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
		}
	}
	return &Client{
		baseURL:    baseURL,
		healthPath: healthPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SyncAdd 向远端同步一次加购意图
// 网络层失败归为 ErrRemoteUnreachable；远端拒绝按原因归为 StockError 或 ErrRemoteRejected。
func (c *Client) SyncAdd(ctx context.Context, req AddRequest) (*Totals, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart/items", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.SessionID != "" {
		httpReq.Header.Set("X-Session-ID", req.SessionID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrRemoteUnreachable, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRemoteUnreachable, err)
	}
	if wire.Success {
		return wire.UpdatedTotals, nil
	}
	if wire.ErrorReason == constants.RemoteReasonOutOfStock {
		return nil, &StockError{ProductID: req.ProductID, Available: wire.Available}
	}
	return nil, fmt.Errorf("%w: %s", ErrRemoteRejected, wire.ErrorReason)
}

// Health 探测远端可达性
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRemoteUnreachable, resp.StatusCode)
	}
	return nil
}
