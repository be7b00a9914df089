package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable catalog record and maps to the `products` table.
// JSON tags follow the camelCase convention used elsewhere in the project.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Rating      float64         `json:"rating"`
	RatingCount int             `json:"ratingCount"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Defaults applied to admin-created products.
const (
	DefaultRating      = 4.5
	DefaultRatingCount = 0
)

// Validate returns the field errors of p, keyed by JSON field name. Title,
// description and a positive price are required.
func Validate(p Product) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(p.Description) == "" {
		errs["description"] = "description is required"
	}
	if !p.Price.IsPositive() {
		errs["price"] = "price must be > 0"
	}
	if p.Rating < 0 || p.Rating > 5 {
		errs["rating"] = "rating must be between 0 and 5"
	}
	if p.RatingCount < 0 {
		errs["ratingCount"] = "ratingCount must be >= 0"
	}
	if p.Stock < 0 {
		errs["stock"] = "stock must be >= 0"
	}
	return errs
}

