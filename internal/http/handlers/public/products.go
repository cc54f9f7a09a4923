package public

import (
	"strconv"
	"strings"

	"github.com/aurix-store/internal/catalog"
	handlershared "github.com/aurix-store/internal/http/handlers/shared"
	"github.com/aurix-store/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetProducts 商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	result, err := h.CatalogService.FetchPage(c.Request.Context(), catalog.Query{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Tag:      strings.TrimSpace(c.Query("tag")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	totalPage := int64(0)
	if result.PageSize > 0 {
		totalPage = (result.Total + int64(result.PageSize) - 1) / int64(result.PageSize)
	}
	response.SuccessWithPage(c, gin.H{"products": result.Products}, response.Pagination{
		Page:         result.Page,
		PageSize:     result.PageSize,
		Total:        result.Total,
		TotalPage:    totalPage,
		EndOfCatalog: result.EndOfCatalog,
	})
}

// GetProductBySlug 商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	product, err := h.CatalogService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	if product == nil {
		response.NotFound(c, "error.product_not_found")
		return
	}
	response.Success(c, product)
}
