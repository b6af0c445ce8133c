package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultCurrency = "USD"
	DefaultMinStock = 10
	DefaultLocation = "Main Store"
)

// Product represents a catalog item and its on-hand inventory
type Product struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SKU         string             `gorm:"column:sku;size:100;uniqueIndex;not null" json:"sku"`
	Name        string             `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string            `gorm:"type:text" json:"description,omitempty"`
	Category    *string            `gorm:"size:100;index" json:"category,omitempty"`
	Subcategory *string            `gorm:"size:100" json:"subcategory,omitempty"`
	SupplierID  *uuid.UUID         `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Price       ProductPrice       `gorm:"embedded;embeddedPrefix:price_" json:"price"`
	Inventory   ProductInventory   `gorm:"embedded;embeddedPrefix:inventory_" json:"inventory"`
	Variants    []ProductVariant   `gorm:"type:jsonb;serializer:json" json:"variants"`
	Images      []string           `gorm:"type:jsonb;serializer:json" json:"images"`
	Weight      *float64           `json:"weight,omitempty"`
	Dimensions  *ProductDimensions `gorm:"type:jsonb;serializer:json" json:"dimensions,omitempty"`
	IsActive    bool               `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	// Relationships
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// ProductPrice holds the cost and selling price of a product
type ProductPrice struct {
	Cost     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	Selling  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"selling"`
	Currency string          `gorm:"size:3;not null" json:"currency"`
}

// ProductInventory holds the stock level of a product.
// Quantity only changes through the atomic increment and decrement on ProductRepository.
type ProductInventory struct {
	Quantity int    `gorm:"not null" json:"quantity"`
	MinStock int    `gorm:"not null" json:"min_stock"`
	Location string `gorm:"size:255" json:"location"`
}

type ProductVariant struct {
	Name          string          `json:"name"`
	Value         string          `json:"value"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

type ProductDimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether the quantity is at or below the minimum stock level
func (p *Product) IsLowStock() bool {
	return p.Inventory.Quantity <= p.Inventory.MinStock
}

// ApplyDefaults fills unset optional attributes with their catalog defaults
func (p *Product) ApplyDefaults() {
	if p.Price.Currency == "" {
		p.Price.Currency = DefaultCurrency
	}
	if p.Inventory.Location == "" {
		p.Inventory.Location = DefaultLocation
	}
	if p.Variants == nil {
		p.Variants = []ProductVariant{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}
