package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItemRequest represents one line of a sale
type SaleItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// PaymentRequest represents how a sale was paid
type PaymentRequest struct {
	Method     string           `json:"method" binding:"required"`
	AmountPaid *decimal.Decimal `json:"amount_paid"`
}

// CreateSaleRequest represents a sale creation request
type CreateSaleRequest struct {
	CustomerID *uuid.UUID        `json:"customer_id"`
	Items      []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Payment    PaymentRequest    `json:"payment"`
	Status     *string           `json:"status"`
	TaxRate    *decimal.Decimal  `json:"tax_rate"`
	Notes      *string           `json:"notes" binding:"omitempty,max=1000"`
}

// SaleFilterRequest represents sale filter parameters
type SaleFilterRequest struct {
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	StaffID    string `form:"staff_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending completed cancelled refunded"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=created_at total transaction_number status"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1"`
}

// SalesSummaryRequest represents the query of a sales summary
type SalesSummaryRequest struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
}
