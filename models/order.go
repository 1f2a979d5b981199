package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    Status = "Pending"
	OrderStatusProcessing Status = "Processing"
	OrderStatusDelivered  Status = "Delivered"
)

// Order is a storefront purchase. Items are snapshots taken at checkout and
// never change afterwards.
type Order struct {
	ID           string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string          `json:"user_id" gorm:"type:varchar(128);index"`
	CustomerName string          `json:"customer_name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Email        string          `json:"email" gorm:"type:varchar(200)" validate:"omitempty,email"`
	Phone        string          `json:"phone" gorm:"type:varchar(30);not null" validate:"required,max=30"`
	Address      string          `json:"address" gorm:"type:varchar(500);not null" validate:"required,max=500"`
	Items        []OrderItem     `json:"items" gorm:"foreignKey:OrderID" validate:"required,min=1,dive"`
	TotalAmount  decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status       Status          `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OrderItem is one line of an order
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(200);not null" validate:"required"`
	ImageURL  string          `json:"image_url" gorm:"type:varchar(500)"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null" validate:"min=1"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

func (o *Order) EntityID() string   { return o.ID }
func (*Order) EntityKind() Kind     { return KindOrder }
func (o *Order) GetStatus() Status  { return o.Status }
func (o *Order) SetStatus(s Status) { o.Status = s }

// BeforeCreate is a GORM hook that runs before creating an order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// Subtotal is price times quantity for a single line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums every line's subtotal.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (o *Order) Validate() error {
	for i, item := range o.Items {
		if err := nonNegative(fmt.Sprintf("items[%d].price", i), item.Price); err != nil {
			return err
		}
	}
	return nil
}
