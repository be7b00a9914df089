// Package settings holds the process-wide storefront theming settings.
package settings

import (
	"regexp"
	"strings"
	"time"
)

// Settings is the single row of site-wide presentation settings.
type Settings struct {
	SiteName       string    `json:"siteName"`
	SiteLogo       string    `json:"siteLogo"`
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	FacebookURL    string    `json:"facebookUrl"`
	InstagramURL   string    `json:"instagramUrl"`
	WhatsappNumber string    `json:"whatsappNumber"`
	HeroTitle      string    `json:"heroTitle"`
	HeroSubtitle   string    `json:"heroSubtitle"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Default is used until an administrator saves settings.
func Default() Settings {
	return Settings{
		SiteName:       "COD Storefront",
		SiteLogo:       "/assets/logo.png",
		PrimaryColor:   "#16a34a",
		SecondaryColor: "#84cc16",
		HeroTitle:      "Handmade goods, delivered to your door",
		HeroSubtitle:   "Order today and pay cash on delivery.",
	}
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func Validate(s Settings) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(s.SiteName) == "" {
		fields["siteName"] = "site name is required"
	}
	if !hexColor.MatchString(s.PrimaryColor) {
		fields["primaryColor"] = "must be a #RRGGBB color"
	}
	if !hexColor.MatchString(s.SecondaryColor) {
		fields["secondaryColor"] = "must be a #RRGGBB color"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
