package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a bookable salon treatment
type Service struct {
	ID          string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ImageURL    string          `json:"image_url" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

func (s *Service) EntityID() string { return s.ID }
func (*Service) EntityKind() Kind   { return KindService }

// BeforeCreate assigns the opaque identifier
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Service) Validate() error {
	return nonNegative("price", s.Price)
}

// Product is a retail item sold through the storefront cart
type Product struct {
	ID        string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string          `json:"name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ImageURL  string          `json:"image_url" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

func (p *Product) EntityID() string { return p.ID }
func (*Product) EntityKind() Kind   { return KindProduct }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Product) Validate() error {
	return nonNegative("price", p.Price)
}
