package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                       json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"                  json:"email"`
	Role      Role      `gorm:"type:varchar(20);not null;default:customer;index" json:"role"`
	CreatedAt time.Time `gorm:"not null"                                       json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string          `gorm:"not null;size:255"               json:"name"`
	Description string          `gorm:"not null;default:''"             json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Category    string          `gorm:"size:100;index"                  json:"category"`
	ImageURL    string          `gorm:"size:500"                        json:"image_url"`
	CreatedAt   time.Time       `gorm:"not null"                        json:"created_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_product;not null"   json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_user_product;not null"   json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"   json:"quantity"`
	CreatedAt time.Time `gorm:"not null"                                json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusOnTheWay  OrderStatus = "On the way"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{
	StatusPending, StatusPreparing, StatusReady, StatusOnTheWay, StatusDelivered, StatusCancelled,
}

// DeliveryStatuses are the only values a driver may set.
var DeliveryStatuses = []OrderStatus{StatusOnTheWay, StatusDelivered, StatusCancelled}

type Order struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"                           json:"id"`
	UserID      uint            `gorm:"index;not null"                                     json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"                        json:"total_amount"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:Pending;index"    json:"status"`
	DriverID    *uint           `gorm:"index"                                              json:"driver_id"`
	CreatedAt   time.Time       `gorm:"not null;index"                                     json:"created_at"`

	Customer *User       `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is an immutable price snapshot taken at placement time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"                    json:"id"`
	OrderID     uint            `gorm:"uniqueIndex:idx_order_product;not null"      json:"order_id"`
	ProductID   uint            `gorm:"uniqueIndex:idx_order_product;not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255"                           json:"product_name"`
	Quantity    int             `gorm:"not null;check:quantity > 0"                 json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"                 json:"price"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null"                 json:"subtotal"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                         json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_user_product_order;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_review_user_product_order;not null;index" json:"product_id"`
	OrderID   uint      `gorm:"uniqueIndex:idx_review_user_product_order;not null" json:"order_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"       json:"rating"`
	Comment   string    `gorm:"type:text"                                        json:"comment"`
	CreatedAt time.Time `gorm:"not null"                                         json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"    json:"user,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}, &Review{}}
}

// ParseStatus matches the exact, case-sensitive status strings.
func ParseStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func IsDeliveryStatus(st OrderStatus) bool {
	for _, d := range DeliveryStatuses {
		if d == st {
			return true
		}
	}
	return false
}
