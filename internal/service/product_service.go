package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"

	"github.com/shopspring/decimal"
)

// priceRangeUnbounded 价格区间上限达到该值时视为不设上限
const priceRangeUnbounded = 999999

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// ProductService 商品服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductQuery 前台商品筛选参数
type ProductQuery struct {
	Page       int
	PageSize   int
	Category   string
	PriceRange string
	Sort       string
	Search     string
}

// ProductInput 后台商品创建/更新输入
type ProductInput struct {
	Name        string
	Slug        string
	Description string
	Price       models.Money
	Category    string
	BottleSize  string
	ImageURL    string
	InStock     *bool
}

// ListPublic 前台商品列表，仅展示有货商品
func (s *ProductService) ListPublic(query ProductQuery) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:        query.Page,
		PageSize:    query.PageSize,
		Category:    strings.TrimSpace(query.Category),
		Search:      strings.TrimSpace(query.Search),
		Sort:        normalizeProductSort(query.Sort),
		OnlyInStock: true,
	}
	filter.MinPrice, filter.MaxPrice = parsePriceRange(query.PriceRange)
	return s.repo.List(filter)
}

// ListAdmin 后台商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.Sort = normalizeProductSort(filter.Sort)
	return s.repo.List(filter)
}

// GetBySlug 前台商品详情
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Get 后台商品详情
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品，slug 冲突时追加 -1、-2 序号
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	base := slugify(input.Slug)
	if base == "" {
		base = slugify(input.Name)
	}
	if base == "" {
		return nil, ErrProductSlugInvalid
	}
	slug, err := s.uniqueSlug(base, 0)
	if err != nil {
		return nil, err
	}

	inStock := true
	if input.InStock != nil {
		inStock = *input.InStock
	}
	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
		BottleSize:  strings.TrimSpace(input.BottleSize),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		InStock:     inStock,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if base := slugify(input.Slug); base != "" && base != existing.Slug {
		slug, err := s.uniqueSlug(base, existing.ID)
		if err != nil {
			return nil, err
		}
		existing.Slug = slug
	}
	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Price = input.Price
	existing.Category = strings.TrimSpace(input.Category)
	existing.BottleSize = strings.TrimSpace(input.BottleSize)
	existing.ImageURL = strings.TrimSpace(input.ImageURL)
	if input.InStock != nil {
		existing.InStock = *input.InStock
	}
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SetInStock 切换库存状态
func (s *ProductService) SetInStock(id uint, inStock bool) (*models.Product, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(id, map[string]interface{}{
		"in_stock":   inStock,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, err
	}
	existing.InStock = inStock
	return existing, nil
}

// Delete 删除商品，历史订单项保留快照
func (s *ProductService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *ProductService) uniqueSlug(base string, excludeID uint) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := s.repo.SlugExists(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Category) == "" {
		return ErrProductNameRequired
	}
	if !input.Price.IsPositive() {
		return ErrProductPriceInvalid
	}
	return nil
}

func slugify(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	return strings.Trim(slugInvalidChars.ReplaceAllString(lowered, "-"), "-")
}

// parsePriceRange 解析 "min-max" 价格区间
func parsePriceRange(raw string) (*decimal.Decimal, *decimal.Decimal) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	minValue, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || minValue < 0 {
		return nil, nil
	}
	lower := decimal.NewFromInt(minValue)
	maxValue, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || maxValue >= priceRangeUnbounded {
		return &lower, nil
	}
	upper := decimal.NewFromInt(maxValue)
	return &lower, &upper
}

func normalizeProductSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case constants.ProductSortOldest:
		return constants.ProductSortOldest
	case constants.ProductSortPriceLow:
		return constants.ProductSortPriceLow
	case constants.ProductSortPriceHigh:
		return constants.ProductSortPriceHigh
	case constants.ProductSortName:
		return constants.ProductSortName
	default:
		return constants.ProductSortNewest
	}
}
