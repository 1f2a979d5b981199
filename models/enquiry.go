package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnquiryStatusNew       Status = "New"
	EnquiryStatusContacted Status = "Contacted"
	EnquiryStatusClosed    Status = "Closed"
)

const DefaultEnquiryType = "Business Partnership"

// Enquiry is a contact-form submission
type Enquiry struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Email     string    `json:"email" gorm:"type:varchar(200);not null" validate:"required,email"`
	Phone     string    `json:"phone" gorm:"type:varchar(30)" validate:"omitempty,max=30"`
	Type      string    `json:"type" gorm:"type:varchar(100);not null"`
	Message   string    `json:"message" gorm:"type:text;not null" validate:"required"`
	Status    Status    `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Enquiry model
func (Enquiry) TableName() string {
	return "enquiries"
}

func (e *Enquiry) EntityID() string   { return e.ID }
func (*Enquiry) EntityKind() Kind     { return KindEnquiry }
func (e *Enquiry) GetStatus() Status  { return e.Status }
func (e *Enquiry) SetStatus(s Status) { e.Status = s }

// BeforeCreate is a GORM hook that runs before creating an enquiry
func (e *Enquiry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Type == "" {
		e.Type = DefaultEnquiryType
	}
	if e.Status == "" {
		e.Status = EnquiryStatusNew
	}
	return nil
}
