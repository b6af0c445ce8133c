package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shopdesk-api/internal/application/service"
	"github.com/sangkips/shopdesk-api/internal/presentation/http/dto/response"
)

// ReceiptHandler handles receipt rendering and printing
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Get returns the receipt of a sale. With ?format=escpos the raw printer
// stream is returned instead of JSON.
// @Summary Get Sale Receipt
// @Tags sales
// @Security BearerAuth
// @Produce json
// @Param id path string true "Sale ID"
// @Param format query string false "json or escpos"
// @Success 200 {object} response.APIResponse
// @Router /sales/{id}/receipt [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	receipt, data, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		response.OK(c, "Receipt retrieved successfully", receipt)
	case "escpos":
		c.Header("Content-Disposition", `attachment; filename="`+receipt.TransactionNumber+`.bin"`)
		c.Data(http.StatusOK, "application/octet-stream", data)
	default:
		response.BadRequest(c, "Invalid format. Valid values: json, escpos")
	}
}

// Print sends the receipt of a sale to the shop printer
// @Summary Print Sale Receipt
// @Tags sales
// @Security BearerAuth
// @Produce json
// @Param id path string true "Sale ID"
// @Success 200 {object} response.APIResponse
// @Router /sales/{id}/receipt/print [post]
func (h *ReceiptHandler) Print(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receiptService.PrintReceipt(c.Request.Context(), id)
	if err != nil {
		// A printer failure still returns the receipt
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{"receipt": receipt})
}

// Status reports the printer connection
func (h *ReceiptHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.receiptService.Status(c.Request.Context()))
}
