package service

import (
	"net/http"

	"github.com/Skotchmaster/bakery/pkg/apperr"
)

var (
	ErrCartEmpty          = apperr.New("CART_EMPTY", http.StatusBadRequest, "Your cart is empty")
	ErrProductNotFound    = apperr.New("PRODUCT_NOT_FOUND", http.StatusNotFound, "Product not found")
	ErrOutOfStock         = apperr.New("OUT_OF_STOCK", http.StatusBadRequest, "Product is out of stock")
	ErrInsufficientStock  = apperr.New("INSUFFICIENT_STOCK", http.StatusBadRequest, "Not enough stock")
	ErrInvalidQuantity    = apperr.New("INVALID_QUANTITY", http.StatusBadRequest, "Quantity must be at least 1")
	ErrCartItemNotFound   = apperr.New("CART_ITEM_NOT_FOUND", http.StatusNotFound, "Item not found in cart")
	ErrOrderNotFound      = apperr.New("ORDER_NOT_FOUND", http.StatusNotFound, "Order not found")
	ErrInvalidStatus      = apperr.New("INVALID_ORDER_STATUS", http.StatusBadRequest, "Invalid order status")
	ErrInvalidDelivery    = apperr.New("INVALID_DELIVERY_STATUS", http.StatusBadRequest, "Drivers may only set On the way, Delivered or Cancelled")
	ErrOrderCreation      = apperr.New("ORDER_CREATION_FAILED", http.StatusInternalServerError, "Failed to create order")
	ErrOrderUpdate        = apperr.New("ORDER_UPDATE_FAILED", http.StatusNotFound, "Order not found or could not be updated")
	ErrDriverNotFound     = apperr.New("DRIVER_NOT_FOUND", http.StatusNotFound, "Driver not found")
	ErrDriverDeleteFailed = apperr.New("DRIVER_DELETE_FAILED", http.StatusInternalServerError, "Failed to delete driver")
	ErrUserNotFound       = apperr.New("USER_NOT_FOUND", http.StatusNotFound, "User not found")
	ErrInvalidOTP         = apperr.New("INVALID_OTP", http.StatusBadRequest, "Invalid OTP")
	ErrOTPExpired         = apperr.New("OTP_EXPIRED", http.StatusBadRequest, "OTP has expired or was not requested")
	ErrOTPSend            = apperr.New("OTP_SEND_FAIL", http.StatusInternalServerError, "Failed to send OTP")
	ErrReviewNotAllowed   = apperr.New(apperr.CodeForbidden, http.StatusForbidden, "You can only review products from your delivered orders")
	ErrAlreadyReviewed    = apperr.New(apperr.CodeConflict, http.StatusConflict, "You have already reviewed this product for this order")
)
