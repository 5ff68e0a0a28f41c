// internal/handlers/requests.go
package handlers

type MaterialFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=identity material_type description"`
	Value string `json:"value" validate:"max=255"`
}

type PriceRequest struct {
	Field string `json:"field" validate:"required,oneof=price discount_price stock"`
	Value string `json:"value" validate:"omitempty,decimal"`
}

// AddonRequest arrives as JSON, or as multipart form when it carries an image.
type AddonRequest struct {
	Name  string `json:"name" form:"name" validate:"required,max=120"`
	Price string `json:"price" form:"price" validate:"required,decimal"`
}

type ValueRequest struct {
	Value string `json:"value" validate:"omitempty,decimal"`
}

type AttributeRequest struct {
	Key   string `json:"key" validate:"required,max=120"`
	Value string `json:"value" validate:"max=500"`
}
