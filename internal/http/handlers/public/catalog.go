package public

import (
	"errors"
	"strings"

	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 前台商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	products, total, err := h.ProductService.ListPublic(service.ProductQuery{
		Page:       page,
		PageSize:   pageSize,
		Category:   c.Query("category"),
		PriceRange: c.Query("price"),
		Sort:       c.Query("sort"),
		Search:     c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 按 slug 查询商品
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"product": product})
}

// GetDeliveryFee 查询城市配送费，未配置时为 0
func (h *Handler) GetDeliveryFee(c *gin.Context) {
	city := strings.TrimSpace(c.Param("city"))
	if city == "" {
		respondError(c, response.CodeBadRequest, "error.delivery_city", nil)
		return
	}
	fee, err := h.DeliveryFeeService.Lookup(city)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"city": city, "fee": fee})
}
