package main

import (
	"github.com/aurix-store/internal/config"
	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/repository"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	productRepo := repository.NewProductRepository(models.DB)

	products := []models.Product{
		{
			Slug:        "acme-circles-tee",
			Name:        "Acme Circles T-Shirt",
			Description: "60% combed ringspun cotton / 40% polyester jersey tee.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(20.00)),
			Currency:    "USD",
			Images:      models.StringArray{"/images/t-shirt-1.png"},
			Tags:        models.StringArray{"apparel", "featured"},
			VariantAxes: models.JSON{
				"size":  []interface{}{"XS", "S", "M", "L", "XL"},
				"color": []interface{}{"Black", "White"},
			},
			Stock:     120,
			IsActive:  true,
			SortOrder: 100,
		},
		{
			Slug:        "acme-drawstring-bag",
			Name:        "Acme Drawstring Bag",
			Description: "Lightweight polyester drawstring bag.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.00)),
			Currency:    "USD",
			Images:      models.StringArray{"/images/bag-1.png"},
			Tags:        models.StringArray{"accessories"},
			Stock:       48,
			IsActive:    true,
			SortOrder:   90,
		},
		{
			Slug:        "acme-mug",
			Name:        "Acme Mug",
			Description: "12 oz ceramic mug, dishwasher safe.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(15.00)),
			Currency:    "USD",
			Images:      models.StringArray{"/images/mug-1.png"},
			Tags:        models.StringArray{"kitchen", "featured"},
			Stock:       12,
			IsActive:    true,
			SortOrder:   80,
		},
		{
			Slug:        "acme-hoodie",
			Name:        "Acme Hoodie",
			Description: "Midweight fleece hoodie with kangaroo pocket.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(50.00)),
			Currency:    "USD",
			Images:      models.StringArray{"/images/hoodie-1.png"},
			Tags:        models.StringArray{"apparel"},
			VariantAxes: models.JSON{
				"size": []interface{}{"S", "M", "L", "XL"},
			},
			Stock:     3,
			IsActive:  true,
			SortOrder: 70,
		},
		{
			Slug:        "acme-cap-retired",
			Name:        "Acme Cap (Retired)",
			Description: "Discontinued colorway.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(9.00)),
			Currency:    "USD",
			Tags:        models.StringArray{"apparel"},
			Stock:       0,
			IsActive:    false,
			SortOrder:   0,
		},
	}

	for i := range products {
		product := &products[i]
		count, err := productRepo.CountBySlug(product.Slug, nil)
		if err != nil {
			stdLog.Fatalf("Failed to check product %s: %v", product.Slug, err)
		}
		if count > 0 {
			stdLog.Printf("Skip existing product: %s", product.Slug)
			continue
		}
		if err := productRepo.Create(product); err != nil {
			stdLog.Fatalf("Failed to seed product %s: %v", product.Slug, err)
		}
		stdLog.Printf("Seeded product: %s", product.Slug)
	}

	stdLog.Println("Seed completed")
}
