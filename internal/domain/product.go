package domain

import "github.com/shopspring/decimal"

// Product is one fully assembled catalog entry ready for persistence.
type Product struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	SKU          string             `json:"sku"`
	ImageURL     string             `json:"image_url"`
	Price        decimal.Decimal    `json:"price"`
	Manufacturer string             `json:"manufacturer"`
	Quantity     int                `json:"quantity"`
	Featured     bool               `json:"featured"`
	Category     *Category          `json:"category"`
	Attributes   []ProductAttribute `json:"attributes,omitempty"`
}

// ProductAttribute is a single name/value specification entry. Attributes live and
// die with their product; duplicates are allowed and source order is preserved.
type ProductAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
