package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   Status = "Pending"
	BookingStatusSeen      Status = "Seen"
	BookingStatusCompleted Status = "Completed"
)

// Booking is an appointment request for a service. ServiceName and
// ServicePrice are copied from the catalog when the booking is made.
type Booking struct {
	ID           string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	CustomerName string          `json:"customer_name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Phone        string          `json:"phone" gorm:"type:varchar(30);not null" validate:"required,max=30"`
	ServiceID    string          `json:"service_id,omitempty" gorm:"type:varchar(36);index"`
	ServiceName  string          `json:"service_name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	ServicePrice decimal.Decimal `json:"service_price" gorm:"type:decimal(12,2);not null"`
	Date         string          `json:"date" gorm:"type:varchar(10);not null;index" validate:"required,datetime=2006-01-02"`
	Time         string          `json:"time" gorm:"type:varchar(5);not null" validate:"required,datetime=15:04"`
	Status       Status          `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) EntityID() string   { return b.ID }
func (*Booking) EntityKind() Kind     { return KindBooking }
func (b *Booking) GetStatus() Status  { return b.Status }
func (b *Booking) SetStatus(s Status) { b.Status = s }

// BeforeCreate is a GORM hook that runs before creating a booking
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (b *Booking) Validate() error {
	return nonNegative("service_price", b.ServicePrice)
}
