package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shopdesk-api/internal/application/service"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: pageParams(filter.Page, filter.Limit),
		Search:     filter.Search,
		Category:   filter.Category,
		SupplierID: optionalUUID(filter.SupplierID),
		IsActive:   filter.IsActive,
		LowStock:   filter.LowStock,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", result)
}

// LowStock handles listing products at or below their minimum stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.productService.GetLowStockProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock products retrieved successfully", products)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// GetBySKU handles looking a product up by SKU
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	product, err := h.productService.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Create handles creating a new product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		SupplierID:  req.SupplierID,
		Cost:        req.Price.Cost,
		Selling:     req.Price.Selling,
		Currency:    req.Price.Currency,
		Quantity:    req.Inventory.Quantity,
		MinStock:    req.Inventory.MinStock,
		Location:    req.Inventory.Location,
		Variants:    req.Variants,
		Images:      req.Images,
		Weight:      req.Weight,
		Dimensions:  req.Dimensions,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateProductInput{
		ID:          id,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		SupplierID:  req.SupplierID,
		Variants:    req.Variants,
		Images:      req.Images,
		Weight:      req.Weight,
		Dimensions:  req.Dimensions,
		IsActive:    req.IsActive,
	}
	if req.Price != nil {
		input.Cost = req.Price.Cost
		input.Selling = req.Price.Selling
		input.Currency = req.Price.Currency
	}
	if req.Inventory != nil {
		input.MinStock = req.Inventory.MinStock
		input.Location = req.Inventory.Location
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}

// AdjustStock handles adding to or subtracting from a product's quantity
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req request.StockAdjustmentRequest
	if !bindQuery(c, &req) {
		return
	}
	op, err := enum.ParseStockOperation(req.Operation)
	if err != nil {
		response.BadRequest(c, "Invalid operation. Valid values: add, subtract")
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), id, req.Quantity, op)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock updated successfully", product)
}
