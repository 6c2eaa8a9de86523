package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bakery/internal/models"
)

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type LoginResponse struct {
	Success   bool         `json:"success"`
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	Category    string          `json:"category"    validate:"max=100"`
	ImageURL    string          `json:"image_url"   validate:"omitempty,max=500"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"       validate:"omitempty,gte=0"`
	Category    *string          `json:"category"    validate:"omitempty,max=100"`
	ImageURL    *string          `json:"image_url"   validate:"omitempty,max=500"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AssignDriverRequest struct {
	DriverID uint `json:"driver_id"`
}

type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	OrderID   uint   `json:"order_id"`
	Rating    int    `json:"rating"     validate:"required"`
	Comment   string `json:"comment"    validate:"max=2000"`
}

type PromoteDriverRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PromoteDriverResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Created bool         `json:"created"`
}

type OrderResponse struct {
	Success bool          `json:"success"`
	Order   *models.Order `json:"order"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
