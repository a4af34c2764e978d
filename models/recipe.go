package models

import "time"

const DefaultOverhead = 10.0

// Menu channels a recipe can be published to.
const (
	ChannelPrint    = "print"
	ChannelQR       = "qr"
	ChannelWebsite  = "website"
	ChannelDelivery = "delivery"
)

type Recipe struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Name                string `gorm:"type:varchar(255);not null;index" json:"name"`
	Category            string `gorm:"type:varchar(100);not null;index" json:"category"`
	Description         string `gorm:"type:text" json:"description"`
	PreparationSteps    string `gorm:"type:text" json:"preparation_steps"`
	CookingMethod       string `gorm:"type:text" json:"cooking_method"`
	PlatingInstructions string `gorm:"type:text" json:"plating_instructions"`
	ChefsNotes          string `gorm:"type:text" json:"chefs_notes"`

	SellingPrice float64 `gorm:"type:decimal(10,2);not null;default:0" json:"selling_price"`
	MonthlySales float64 `gorm:"type:decimal(12,2);not null;default:0" json:"monthly_sales"`
	Overhead     float64 `gorm:"type:decimal(5,2);not null;default:10" json:"overhead"`

	PrintMenuReady       bool   `gorm:"not null;default:false" json:"print_menu_ready"`
	QRMenuReady          bool   `gorm:"column:qr_menu_ready;not null;default:false" json:"qr_menu_ready"`
	WebsiteMenuReady     bool   `gorm:"not null;default:false" json:"website_menu_ready"`
	AvailableForDelivery bool   `gorm:"not null;default:false" json:"available_for_delivery"`
	ImageURL             string `gorm:"column:image_url;type:varchar(512)" json:"image_url"`
	DeliveryImageURL     string `gorm:"column:delivery_image_url;type:varchar(512)" json:"delivery_image_url"`

	// Derived from ingredients, overhead, selling price and monthly sales.
	// Written by the service on every save and never taken from a request.
	TotalCost      float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total_cost"`
	ProfitMargin   float64 `gorm:"type:decimal(8,2);not null;default:0" json:"profit_margin"`
	MonthlyRevenue float64 `gorm:"type:decimal(14,2);not null;default:0" json:"monthly_revenue"`
	MonthlyProfit  float64 `gorm:"type:decimal(14,2);not null;default:0" json:"monthly_profit"`
	MarkupFactor   float64 `gorm:"type:decimal(8,2);not null;default:0" json:"markup_factor"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

// ReadyFor reports whether the recipe is flagged ready for a menu channel.
func (r *Recipe) ReadyFor(channel string) bool {
	switch channel {
	case ChannelPrint:
		return r.PrintMenuReady
	case ChannelQR:
		return r.QRMenuReady
	case ChannelWebsite:
		return r.WebsiteMenuReady
	case ChannelDelivery:
		return r.AvailableForDelivery
	}
	return false
}

// ChannelColumn maps a menu channel to its flag column.
func ChannelColumn(channel string) (string, bool) {
	switch channel {
	case ChannelPrint:
		return "print_menu_ready", true
	case ChannelQR:
		return "qr_menu_ready", true
	case ChannelWebsite:
		return "website_menu_ready", true
	case ChannelDelivery:
		return "available_for_delivery", true
	}
	return "", false
}
