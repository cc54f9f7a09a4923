package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/aurix-store/internal/constants"
	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/repository"
)

// ProductView 列表页商品视图，带库存紧张程度标签
type ProductView struct {
	models.Product
	StockLabel string `json:"stock_label"`
}

// Page 一页商品及分页元信息
type Page struct {
	Products     []ProductView `json:"products"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	Total        int64         `json:"total"`
	EndOfCatalog bool          `json:"end_of_catalog"`
	// Superseded 表示本次响应返回前已有更新的请求发出，调用方应丢弃渲染
	Superseded bool `json:"-"`
}

// Query 列表查询参数
type Query struct {
	Page     int
	PageSize int
	Search   string
	Tag      string
}

type call struct {
	done chan struct{}
	page Page
	err  error
}

// Service 商品目录服务
// 相同参数的并发请求合并为一次数据库往返，避免翻页连点导致的重复查询；
// 序号标记让后到的响应能识别自己已被更新的请求取代。
type Service struct {
	products        repository.ProductRepository
	defaultPageSize int
	maxPageSize     int

	mu       sync.Mutex
	inflight map[string]*call
	latest   uint64
}

// NewService 创建目录服务
func NewService(products repository.ProductRepository, defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize <= 0 {
		defaultPageSize = constants.DefaultPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = constants.MaxPageSize
	}
	return &Service{
		products:        products,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// FetchPage 获取一页商品
func (s *Service) FetchPage(ctx context.Context, query Query) (Page, error) {
	query = s.normalize(query)
	key := dedupKey(query)

	s.mu.Lock()
	s.latest++
	token := s.latest
	if s.inflight == nil {
		s.inflight = make(map[string]*call)
	}
	if existing, ok := s.inflight[key]; ok {
		// 并发同参请求：跟随进行中的那一次
		s.mu.Unlock()
		select {
		case <-existing.done:
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
		return s.finish(token, existing.page), existing.err
	}
	c := &call{done: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	c.page, c.err = s.fetch(query)
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
	close(c.done)

	if c.err != nil {
		logger.Errorw("catalog_fetch_failed", "page", query.Page, "error", c.err)
		return Page{}, c.err
	}
	return s.finish(token, c.page), nil
}

// finish 依据序号判断响应是否已被更新的请求取代
func (s *Service) finish(token uint64, page Page) Page {
	s.mu.Lock()
	superseded := token != s.latest
	s.mu.Unlock()
	page.Superseded = superseded
	return page
}

func (s *Service) fetch(query Query) (Page, error) {
	products, total, err := s.products.List(repository.ProductListFilter{
		Page:       query.Page,
		PageSize:   query.PageSize,
		Search:     query.Search,
		Tag:        query.Tag,
		OnlyActive: true,
	})
	if err != nil {
		return Page{}, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{Product: p, StockLabel: p.StockLabel()})
	}
	return Page{
		Products:     views,
		Page:         query.Page,
		PageSize:     query.PageSize,
		Total:        total,
		EndOfCatalog: len(products) < query.PageSize,
	}, nil
}

// GetBySlug 商品详情（仅返回上架商品）
func (s *Service) GetBySlug(_ context.Context, slug string) (*ProductView, error) {
	product, err := s.products.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return &ProductView{Product: *product, StockLabel: product.StockLabel()}, nil
}

func (s *Service) normalize(query Query) Query {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = s.defaultPageSize
	}
	if query.PageSize > s.maxPageSize {
		query.PageSize = s.maxPageSize
	}
	return query
}

func dedupKey(query Query) string {
	return fmt.Sprintf("%d|%d|%s|%s", query.Page, query.PageSize, query.Search, query.Tag)
}
