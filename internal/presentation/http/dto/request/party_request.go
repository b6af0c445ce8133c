package request

// CustomerRequest represents a customer create or update request.
// On update, omitted fields are left unchanged.
type CustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address" binding:"omitempty,max=1000"`
}

// SupplierRequest represents a supplier create or update request.
// On update, omitted fields are left unchanged.
type SupplierRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Address       *string `json:"address" binding:"omitempty,max=1000"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=255"`
	Type          *string `json:"type" binding:"omitempty,oneof=distributor wholesaler producer"`
}

// ListRequest represents page-based list parameters with a free-text search
type ListRequest struct {
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
}
