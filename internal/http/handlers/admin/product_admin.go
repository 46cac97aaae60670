package admin

import (
	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Price       *models.Money `json:"price"`
	Category    string        `json:"category"`
	BottleSize  string        `json:"bottle_size"`
	ImageURL    string        `json:"image_url"`
	InStock     *bool         `json:"in_stock"`
}

// PatchStockRequest 上下架请求
type PatchStockRequest struct {
	InStock *bool `json:"in_stock" binding:"required"`
}

var productAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductNameRequired, Code: response.CodeBadRequest, Key: "error.product_input"},
	{Target: service.ErrProductPriceInvalid, Code: response.CodeBadRequest, Key: "error.product_price"},
	{Target: service.ErrProductSlugInvalid, Code: response.CodeBadRequest, Key: "error.product_slug"},
}

func (req ProductRequest) toInput() service.ProductInput {
	input := service.ProductInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		BottleSize:  req.BottleSize,
		ImageURL:    req.ImageURL,
		InStock:     req.InStock,
	}
	if req.Price != nil {
		input.Price = *req.Price
	}
	return input
}

// ListProducts 后台商品列表（含缺货商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	rows, total, err := h.ProductService.ListAdmin(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.NewPagination(page, pageSize, total))
}

// GetProduct 后台商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		handlershared.RespondMappedError(c, err, productAdminErrorRules, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.Price == nil || req.Category == "" {
		respondError(c, response.CodeBadRequest, "error.product_input", nil)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		handlershared.RespondMappedError(c, err, productAdminErrorRules, response.CodeInternal, "error.product_create_failed")
		return
	}
	response.Created(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.Price == nil || req.Category == "" {
		respondError(c, response.CodeBadRequest, "error.product_input", nil)
		return
	}
	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		handlershared.RespondMappedError(c, err, productAdminErrorRules, response.CodeInternal, "error.product_update_failed")
		return
	}
	response.Success(c, product)
}

// PatchProductStock 切换库存状态
func (h *Handler) PatchProductStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req PatchStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.SetInStock(id, *req.InStock)
	if err != nil {
		handlershared.RespondMappedError(c, err, productAdminErrorRules, response.CodeInternal, "error.product_update_failed")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		handlershared.RespondMappedError(c, err, productAdminErrorRules, response.CodeInternal, "error.product_delete_failed")
		return
	}
	response.SuccessWithMsg(c, "Product deleted successfully")
}
