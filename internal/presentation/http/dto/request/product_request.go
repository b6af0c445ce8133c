package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductPriceRequest represents the price block of a product
type ProductPriceRequest struct {
	Cost     decimal.Decimal `json:"cost"`
	Selling  decimal.Decimal `json:"selling"`
	Currency string          `json:"currency" binding:"omitempty,len=3"`
}

// ProductInventoryRequest represents the inventory block of a new product
type ProductInventoryRequest struct {
	Quantity int    `json:"quantity" binding:"min=0"`
	MinStock *int   `json:"min_stock" binding:"omitempty,min=0"`
	Location string `json:"location" binding:"max=255"`
}

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	SKU         string                    `json:"sku" binding:"max=100"`
	Name        string                    `json:"name" binding:"required,max=255"`
	Description *string                   `json:"description"`
	Category    *string                   `json:"category" binding:"omitempty,max=100"`
	Subcategory *string                   `json:"subcategory" binding:"omitempty,max=100"`
	SupplierID  *uuid.UUID                `json:"supplier_id"`
	Price       ProductPriceRequest       `json:"price"`
	Inventory   ProductInventoryRequest   `json:"inventory"`
	Variants    []entity.ProductVariant   `json:"variants"`
	Images      []string                  `json:"images" binding:"omitempty,dive,url"`
	Weight      *float64                  `json:"weight" binding:"omitempty,gte=0"`
	Dimensions  *entity.ProductDimensions `json:"dimensions"`
	IsActive    *bool                     `json:"is_active"`
}

// UpdateProductPriceRequest represents a partial price update
type UpdateProductPriceRequest struct {
	Cost     *decimal.Decimal `json:"cost"`
	Selling  *decimal.Decimal `json:"selling"`
	Currency *string          `json:"currency" binding:"omitempty,len=3"`
}

// UpdateProductInventoryRequest represents a partial inventory update.
// Quantity is not accepted here; use the stock endpoint.
type UpdateProductInventoryRequest struct {
	MinStock *int    `json:"min_stock" binding:"omitempty,min=0"`
	Location *string `json:"location" binding:"omitempty,max=255"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	SKU         *string                        `json:"sku" binding:"omitempty,min=1,max=100"`
	Name        *string                        `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string                        `json:"description"`
	Category    *string                        `json:"category" binding:"omitempty,max=100"`
	Subcategory *string                        `json:"subcategory" binding:"omitempty,max=100"`
	SupplierID  *uuid.UUID                     `json:"supplier_id"`
	Price       *UpdateProductPriceRequest     `json:"price"`
	Inventory   *UpdateProductInventoryRequest `json:"inventory"`
	Variants    []entity.ProductVariant        `json:"variants"`
	Images      []string                       `json:"images" binding:"omitempty,dive,url"`
	Weight      *float64                       `json:"weight" binding:"omitempty,gte=0"`
	Dimensions  *entity.ProductDimensions      `json:"dimensions"`
	IsActive    *bool                          `json:"is_active"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	Category   string `form:"category"`
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	IsActive   *bool  `form:"is_active"`
	LowStock   bool   `form:"low_stock"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=name sku created_at updated_at price quantity"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1"`
}

// StockAdjustmentRequest represents the query of a stock adjustment
type StockAdjustmentRequest struct {
	Quantity  int    `form:"quantity" binding:"required,gt=0"`
	Operation string `form:"operation" binding:"omitempty,oneof=add subtract"`
}
