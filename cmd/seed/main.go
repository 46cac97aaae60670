package main

import (
	"errors"
	"time"

	"github.com/cellar-next/internal/app"
	"github.com/cellar-next/internal/config"
	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := app.InitDatabase(cfg); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	seedProducts(stdLog.Printf)
	seedPromoCodes(stdLog.Printf)
	seedDeliveryFees(stdLog.Printf)

	stdLog.Printf("Seed completed")
}

type printf func(format string, args ...interface{})

func seedProducts(log printf) {
	products := []models.Product{
		{Name: "Hennessy VS", Slug: "hennessy-vs", Description: "Classic cognac with notes of oak and grilled almonds.", Price: models.NewMoney(45000), Category: "cognac", BottleSize: "70cl", InStock: true},
		{Name: "Dom Pérignon Vintage", Slug: "dom-perignon-vintage", Description: "Prestige cuvée champagne.", Price: models.NewMoney(120000), Category: "champagne", BottleSize: "75cl", InStock: true},
		{Name: "Macallan 18", Slug: "macallan-18", Description: "Sherry seasoned oak single malt.", Price: models.NewMoney(180000), Category: "whisky", BottleSize: "70cl", InStock: true},
		{Name: "Jameson Irish Whiskey", Slug: "jameson-irish-whiskey", Description: "Triple distilled blended Irish whiskey.", Price: models.NewMoney(15000), Category: "whisky", BottleSize: "70cl", InStock: true},
		{Name: "Don Julio Blanco", Slug: "don-julio-blanco", Description: "Unaged tequila from the Jalisco highlands.", Price: models.NewMoney(65000), Category: "tequila", BottleSize: "75cl", InStock: true},
		{Name: "Baileys Original", Slug: "baileys-original", Description: "Irish cream liqueur.", Price: models.NewMoney(12000), Category: "liqueur", BottleSize: "1L", InStock: true},
	}
	for _, product := range products {
		var existing models.Product
		err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error
		switch {
		case err == nil:
			log("Product already exists: %s", product.Slug)
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := models.DB.Create(&product).Error; err != nil {
				log("Failed to create product %s: %v", product.Slug, err)
				continue
			}
			log("Created product: %s", product.Slug)
		default:
			log("Failed to load product %s: %v", product.Slug, err)
		}
	}
}

func seedPromoCodes(log printf) {
	welcomeLimit := 100
	maxDiscount := models.NewMoney(20000)
	validUntil := time.Now().AddDate(0, 3, 0)
	promos := []models.PromoCode{
		{
			Code:           "WELCOME10",
			Description:    "10% off your first order",
			DiscountType:   constants.DiscountTypePercentage,
			DiscountValue:  decimal.NewFromInt(10),
			MinOrderAmount: models.NewMoney(10000),
			UsageLimit:     &welcomeLimit,
			ValidFrom:      time.Now(),
			ValidUntil:     &validUntil,
			IsActive:       true,
		},
		{
			Code:              "SAVE20",
			Description:       "20% off orders above ₦50,000",
			DiscountType:      constants.DiscountTypePercentage,
			DiscountValue:     decimal.NewFromInt(20),
			MinOrderAmount:    models.NewMoney(50000),
			MaxDiscountAmount: &maxDiscount,
			ValidFrom:         time.Now(),
			IsActive:          true,
		},
		{
			Code:           "FLAT5000",
			Description:    "₦5,000 off orders above ₦30,000",
			DiscountType:   constants.DiscountTypeFixed,
			DiscountValue:  decimal.NewFromInt(5000),
			MinOrderAmount: models.NewMoney(30000),
			ValidFrom:      time.Now(),
			IsActive:       true,
		},
	}
	for _, promo := range promos {
		var count int64
		if err := models.DB.Model(&models.PromoCode{}).Where("code = ?", promo.Code).Count(&count).Error; err != nil {
			log("Failed to check promo code %s: %v", promo.Code, err)
			continue
		}
		if count > 0 {
			log("Promo code already exists: %s", promo.Code)
			continue
		}
		if err := models.DB.Create(&promo).Error; err != nil {
			log("Failed to create promo code %s: %v", promo.Code, err)
			continue
		}
		log("Created promo code: %s", promo.Code)
	}
}

func seedDeliveryFees(log printf) {
	fees := map[string]int64{
		"Lagos":         2000,
		"Abuja":         3500,
		"Port Harcourt": 4000,
		"Ibadan":        3000,
	}
	for city, fee := range fees {
		row := models.DeliveryFee{City: city, Fee: models.NewMoney(fee)}
		if err := models.DB.Where("city = ?", city).FirstOrCreate(&row).Error; err != nil {
			log("Failed to seed delivery fee %s: %v", city, err)
			continue
		}
		log("Delivery fee ready: %s = %s", city, row.Fee.Naira())
	}
}
