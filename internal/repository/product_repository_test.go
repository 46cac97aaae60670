package repository

import (
	"testing"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"

	"github.com/shopspring/decimal"
)

func seedCatalog(t *testing.T, repo *GormProductRepository) {
	t.Helper()
	products := []models.Product{
		{Name: "Jameson", Slug: "jameson", Price: models.NewMoney(18000), Category: "whiskey", BottleSize: "75cl", InStock: true},
		{Name: "Glenfiddich 12", Slug: "glenfiddich-12", Price: models.NewMoney(42000), Category: "whiskey", BottleSize: "70cl", InStock: true},
		{Name: "Moet Brut", Slug: "moet-brut", Price: models.NewMoney(65000), Category: "champagne", BottleSize: "75cl", InStock: false},
		{Name: "Absolut", Slug: "absolut", Price: models.NewMoney(9000), Category: "vodka", BottleSize: "1L", InStock: true},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}
}

func TestProductListFilters(t *testing.T) {
	repo := NewProductRepository(setupRepositoryTestDB(t))
	seedCatalog(t, repo)

	whiskey, total, err := repo.List(ProductListFilter{Category: "whiskey", Sort: constants.ProductSortPriceHigh})
	if err != nil {
		t.Fatalf("list whiskey failed: %v", err)
	}
	if total != 2 || whiskey[0].Slug != "glenfiddich-12" {
		t.Fatalf("unexpected whiskey list: total=%d first=%s", total, whiskey[0].Slug)
	}

	minPrice := decimal.NewFromInt(10000)
	maxPrice := decimal.NewFromInt(50000)
	ranged, _, err := repo.List(ProductListFilter{MinPrice: &minPrice, MaxPrice: &maxPrice, Sort: constants.ProductSortPriceLow})
	if err != nil {
		t.Fatalf("list by price failed: %v", err)
	}
	if len(ranged) != 2 || ranged[0].Slug != "jameson" {
		t.Fatalf("unexpected price range result: %+v", ranged)
	}

	inStock, total, err := repo.List(ProductListFilter{OnlyInStock: true, Sort: constants.ProductSortName})
	if err != nil {
		t.Fatalf("list in stock failed: %v", err)
	}
	if total != 3 || inStock[0].Name != "Absolut" {
		t.Fatalf("unexpected in-stock list: total=%d first=%s", total, inStock[0].Name)
	}

	search, _, err := repo.List(ProductListFilter{Search: "glen"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(search) != 1 || search[0].Slug != "glenfiddich-12" {
		t.Fatalf("unexpected search result: %+v", search)
	}
}

func TestProductSlugExists(t *testing.T) {
	repo := NewProductRepository(setupRepositoryTestDB(t))
	seedCatalog(t, repo)
	jameson, err := repo.GetBySlug("jameson")
	if err != nil || jameson == nil {
		t.Fatalf("get by slug failed: %v", err)
	}

	exists, err := repo.SlugExists("jameson", 0)
	if err != nil || !exists {
		t.Fatalf("slug should exist: %v %v", exists, err)
	}
	exists, err = repo.SlugExists("jameson", jameson.ID)
	if err != nil || exists {
		t.Fatalf("slug owned by excluded product should not count: %v %v", exists, err)
	}
	count, err := repo.CountAll()
	if err != nil || count != 4 {
		t.Fatalf("count want 4 got %d err=%v", count, err)
	}
}
