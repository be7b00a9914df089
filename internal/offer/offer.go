package offer

import (
	"strings"
	"time"
)

// Offer is a promotional item shown on the storefront. Offers are not
// purchasable.
type Offer struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns the field errors for o, or nil when o may be stored.
func Validate(o Offer) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(o.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(o.Description) == "" {
		fields["description"] = "description is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
