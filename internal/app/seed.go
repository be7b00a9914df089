package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/product"
)

// DemoProducts is the sample catalog of the demo server. Creation times are
// spaced an hour apart, newest last.
func DemoProducts(now time.Time) []product.Product {
	ps := []product.Product{
		{
			ID:          "1",
			Title:       "Handcrafted Ceramic Vase",
			Description: "Beautiful hand-thrown ceramic vase with unique glaze patterns. Perfect for fresh flowers or as a standalone decorative piece.",
			Price:       decimal.RequireFromString("89.99"),
			Image:       "https://images.unsplash.com/photo-1578749556568-bc2c40e68b61?w=400&h=400&fit=crop",
			Category:    "Home Décor",
			Rating:      4.8,
			RatingCount: 124,
			Stock:       12,
		},
		{
			ID:          "2",
			Title:       "Sterling Silver Pendant Necklace",
			Description: "Elegant sterling silver pendant with natural gemstone. Handcrafted by local artisans with attention to detail.",
			Price:       decimal.RequireFromString("156.00"),
			Image:       "https://images.unsplash.com/photo-1515562141207-7a88fb7ce338?w=400&h=400&fit=crop",
			Category:    "Jewelry",
			Rating:      4.9,
			RatingCount: 89,
			Stock:       5,
		},
		{
			ID:          "3",
			Title:       "Artisan Leather Journal",
			Description: "Premium leather-bound journal with handmade paper. Perfect for writers, artists, or anyone who loves quality stationery.",
			Price:       decimal.RequireFromString("45.50"),
			Image:       "https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=400&h=400&fit=crop",
			Category:    "Stationery",
			Rating:      4.7,
			RatingCount: 201,
			Stock:       30,
		},
		{
			ID:          "4",
			Title:       "Wooden Cutting Board Set",
			Description: "Set of 3 handcrafted wooden cutting boards made from sustainable bamboo. Each piece is unique with beautiful grain patterns.",
			Price:       decimal.RequireFromString("67.99"),
			Image:       "https://images.unsplash.com/photo-1556909114-f6e7ad7d3136?w=400&h=400&fit=crop",
			Category:    "Kitchen",
			Rating:      4.6,
			RatingCount: 156,
			Stock:       18,
		},
		{
			ID:          "5",
			Title:       "Hand-woven Wool Scarf",
			Description: "Luxurious hand-woven scarf made from premium merino wool. Available in multiple colors with intricate patterns.",
			Price:       decimal.RequireFromString("78.00"),
			Image:       "https://images.unsplash.com/photo-1591047139829-d91aecb6caea?w=400&h=400&fit=crop",
			Category:    "Fashion",
			Rating:      4.8,
			RatingCount: 78,
			Stock:       9,
		},
		{
			ID:          "6",
			Title:       "Handmade Soap Collection",
			Description: "Set of 4 natural handmade soaps with essential oils. Each bar is crafted with organic ingredients and natural fragrances.",
			Price:       decimal.RequireFromString("32.99"),
			Image:       "https://images.unsplash.com/photo-1556228453-efd6c1ff04f6?w=400&h=400&fit=crop",
			Category:    "Bath & Body",
			Rating:      4.5,
			RatingCount: 234,
			Stock:       40,
		},
	}
	start := now.Add(-time.Duration(len(ps)) * time.Hour)
	for i := range ps {
		ps[i].CreatedAt = start.Add(time.Duration(i) * time.Hour)
	}
	return ps
}

// SeedIfEmpty stores the demo catalog when no product exists yet.
func SeedIfEmpty(ctx context.Context, repo product.Repository, now time.Time) (bool, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := repo.Reset(ctx, DemoProducts(now)); err != nil {
		return false, err
	}
	return true, nil
}
