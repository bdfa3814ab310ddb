package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/config"
)

type seedProduct struct {
	name        string
	description string
	price       float64
	stock       int
	image       string
	category    string
	rating      float64
}

var seedProducts = []seedProduct{
	{"Smartwatch", "A sleek and modern smartwatch with health tracking features.", 199.99, 50, "https://picsum.photos/seed/smartwatch/400/300", "Electronics", 4.5},
	{"Wireless Headphones", "Noise-cancelling headphones with superior sound quality and comfort.", 149.50, 120, "https://picsum.photos/seed/headphones/400/300", "Electronics", 4.8},
	{"4K LED Monitor", "A high-resolution monitor perfect for gaming and professional design.", 399.00, 30, "https://picsum.photos/seed/monitor/400/300", "Electronics", 4.2},
	{"Vintage Leather Jacket", "Classic vintage jacket made from high-quality distressed leather.", 250.00, 15, "https://picsum.photos/seed/jacket/400/300", "Apparel", 4.7},
	{"Running Shoes", "Lightweight and durable shoes designed for long-distance running.", 85.00, 200, "https://picsum.photos/seed/shoes/400/300", "Apparel", 4.6},
	{"Ceramic Coffee Mug", "Hand-crafted ceramic mug with a unique, rustic design.", 15.00, 500, "https://picsum.photos/seed/mug/400/300", "Home & Kitchen", 4.9},
	{"Stainless Steel Water Bottle", "Insulated bottle that keeps drinks cold for up to 24 hours.", 25.00, 350, "https://picsum.photos/seed/bottle/400/300", "Home & Kitchen", 4.4},
	{"Ergonomic Office Chair", "A chair designed to provide maximum comfort and support for long workdays.", 299.00, 45, "https://picsum.photos/seed/chair/400/300", "Furniture", 4.3},
	{"Portable Bluetooth Speaker", "Compact speaker with powerful sound and a long-lasting battery.", 75.00, 90, "https://picsum.photos/seed/speaker/400/300", "Electronics", 4.6},
	{"Modern Wall Clock", "Minimalist design clock that complements any room decor.", 45.00, 60, "https://picsum.photos/seed/clock/400/300", "Home & Kitchen", 4.1},
	{"Dumbbell Set", "Adjustable weight set for a versatile home workout.", 120.00, 75, "https://picsum.photos/seed/dumbbells/400/300", "Sports & Outdoors", 4.5},
	{"Yoga Mat", "Non-slip mat for yoga and other floor exercises.", 35.00, 150, "https://picsum.photos/seed/yogamat/400/300", "Sports & Outdoors", 4.7},
	{"Digital Camera", "High-performance camera for capturing stunning photos and videos.", 550.00, 25, "https://picsum.photos/seed/camera/400/300", "Electronics", 4.9},
	{"Hardcover Notebook", "Premium notebook with a durable hardcover and high-quality paper.", 20.00, 400, "https://picsum.photos/seed/notebook/400/300", "Stationery", 4.3},
	{"Mechanical Keyboard", "RGB mechanical keyboard with a satisfying tactile feel for gaming and typing.", 130.00, 80, "https://picsum.photos/seed/keyboard/400/300", "Electronics", 4.8},
}

func seedCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample catalog products for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(logger)

			pool, err := openPool(cfg.DatabaseURL, true)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			inserted, err := seedCatalog(ctx, pool)
			if err != nil {
				return err
			}
			logger.Info("seeding finished", "products_inserted", inserted)
			return nil
		},
	}
}

// seedCatalog is idempotent: products already present by name are left
// alone so reruns do not clobber stock adjusted since the last seed.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	inserted := 0
	for _, p := range seedProducts {
		tag, err := pool.Exec(ctx, `
			INSERT INTO products (name, description, price, stock, image, category, rating)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)`,
			p.name, p.description, p.price, p.stock, p.image, p.category, p.rating,
		)
		if err != nil {
			return inserted, fmt.Errorf("seed product %q: %w", p.name, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
