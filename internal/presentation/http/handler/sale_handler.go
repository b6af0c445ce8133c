package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shopdesk-api/internal/application/service"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/domain/repository"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/shopdesk-api/pkg/apperror"
)

// SaleHandler handles sale and sales report HTTP requests
type SaleHandler struct {
	saleService   *service.SaleService
	reportService *service.ReportService
	location      *time.Location
}

// NewSaleHandler creates a new sale handler. Date filters are read in loc.
func NewSaleHandler(saleService *service.SaleService, reportService *service.ReportService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{
		saleService:   saleService,
		reportService: reportService,
		location:      loc,
	}
}

// Create handles recording a new sale for the signed-in staff member
func (h *SaleHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.CreateSaleInput{
		StaffID:       *userID,
		CustomerID:    req.CustomerID,
		Items:         make([]service.SaleItemInput, len(req.Items)),
		PaymentMethod: enum.PaymentMethod(req.Payment.Method),
		AmountPaid:    req.Payment.AmountPaid,
		TaxRate:       req.TaxRate,
		Notes:         req.Notes,
	}
	for i, item := range req.Items {
		input.Items[i] = service.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		}
	}
	if req.Status != nil {
		status := enum.SaleStatus(*req.Status)
		input.Status = &status
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale created successfully", sale)
}

// List handles listing sales
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	start, err := parseDate("start_date", filter.StartDate, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDate("end_date", filter.EndDate, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	if end != nil {
		next := end.AddDate(0, 0, 1)
		end = &next
	}

	params := &repository.SaleFilterParams{
		Pagination: pageParams(filter.Page, filter.Limit),
		CustomerID: optionalUUID(filter.CustomerID),
		StaffID:    optionalUUID(filter.StaffID),
		StartDate:  start,
		EndDate:    end,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}
	if filter.Status != "" {
		status := enum.SaleStatus(filter.Status)
		params.Status = &status
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Sales retrieved successfully", result)
}

// Get handles getting a single sale
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// GetByTransactionNumber handles looking a sale up by its receipt number
func (h *SaleHandler) GetByTransactionNumber(c *gin.Context) {
	sale, err := h.saleService.GetSaleByTransactionNumber(c.Request.Context(), c.Param("transactionNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// UpdateStatus handles moving a sale to another status
func (h *SaleHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	raw := c.Query("status")
	if raw == "" {
		response.Error(c, apperror.NewValidationError([]apperror.FieldError{
			{Field: "status", Message: "This field is required"},
		}))
		return
	}

	sale, err := h.saleService.UpdateSaleStatus(c.Request.Context(), id, enum.SaleStatus(raw))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale status updated successfully", sale)
}

// Daily handles the report for a single calendar day
func (h *SaleHandler) Daily(c *gin.Context) {
	var query struct {
		Limit int `form:"limit" binding:"omitempty,min=1"`
	}
	if !bindQuery(c, &query) {
		return
	}

	report, err := h.reportService.Daily(c.Request.Context(), c.Param("date"), query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily sales report retrieved successfully", report)
}

// Summary handles the report over an inclusive range of days
func (h *SaleHandler) Summary(c *gin.Context) {
	var req request.SalesSummaryRequest
	if !bindQuery(c, &req) {
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), req.StartDate, req.EndDate, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales summary retrieved successfully", summary)
}
