package admin

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/offer"
	"github.com/wichananm65/cod-storefront/internal/product"
)

// ProductDraft is the admin form for a new product. Rating and RatingCount
// fall back to the catalog defaults when omitted.
type ProductDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Rating      *float64        `json:"rating"`
	RatingCount *int            `json:"ratingCount"`
	Stock       int             `json:"stock"`
}

func (d ProductDraft) product() product.Product {
	p := product.Product{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Price:       d.Price,
		Image:       strings.TrimSpace(d.Image),
		Category:    strings.TrimSpace(d.Category),
		Rating:      product.DefaultRating,
		RatingCount: product.DefaultRatingCount,
		Stock:       d.Stock,
	}
	if d.Rating != nil {
		p.Rating = *d.Rating
	}
	if d.RatingCount != nil {
		p.RatingCount = *d.RatingCount
	}
	return p
}

// ProductPatch carries only the fields the admin changed.
type ProductPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Category    *string          `json:"category"`
	Rating      *float64         `json:"rating"`
	RatingCount *int             `json:"ratingCount"`
	Stock       *int             `json:"stock"`
}

// validate checks the patched fields on their own, before the existing record
// is looked up.
func (p ProductPatch) validate() map[string]string {
	fields := map[string]string{}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields["title"] = "title is required"
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		fields["description"] = "description is required"
	}
	if p.Price != nil && !p.Price.IsPositive() {
		fields["price"] = "price must be > 0"
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		fields["rating"] = "rating must be between 0 and 5"
	}
	if p.RatingCount != nil && *p.RatingCount < 0 {
		fields["ratingCount"] = "ratingCount must be >= 0"
	}
	if p.Stock != nil && *p.Stock < 0 {
		fields["stock"] = "stock must be >= 0"
	}
	return fields
}

func (p ProductPatch) apply(to product.Product) product.Product {
	if p.Title != nil {
		to.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		to.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		to.Price = *p.Price
	}
	if p.Image != nil {
		to.Image = strings.TrimSpace(*p.Image)
	}
	if p.Category != nil {
		to.Category = strings.TrimSpace(*p.Category)
	}
	if p.Rating != nil {
		to.Rating = *p.Rating
	}
	if p.RatingCount != nil {
		to.RatingCount = *p.RatingCount
	}
	if p.Stock != nil {
		to.Stock = *p.Stock
	}
	return to
}

type OfferDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (d OfferDraft) offer() offer.Offer {
	return offer.Offer{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Image:       strings.TrimSpace(d.Image),
	}
}

type OfferPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func (p OfferPatch) validate() map[string]string {
	fields := map[string]string{}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields["title"] = "title is required"
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		fields["description"] = "description is required"
	}
	return fields
}

func (p OfferPatch) apply(to offer.Offer) offer.Offer {
	if p.Title != nil {
		to.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		to.Description = strings.TrimSpace(*p.Description)
	}
	if p.Image != nil {
		to.Image = strings.TrimSpace(*p.Image)
	}
	return to
}
