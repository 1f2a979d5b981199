package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is rendered as a JSON number, matching what the storefront sends.
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind names one of the five persisted entity kinds.
type Kind string

const (
	KindService Kind = "service"
	KindProduct Kind = "product"
	KindBooking Kind = "booking"
	KindOrder   Kind = "order"
	KindEnquiry Kind = "enquiry"
)

// Kinds lists every entity kind in a stable order.
var Kinds = []Kind{KindService, KindProduct, KindBooking, KindOrder, KindEnquiry}

// ParseKind accepts the singular or the plural route form ("bookings",
// "enquiries").
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "service", "services":
		return KindService, true
	case "product", "products":
		return KindProduct, true
	case "booking", "bookings":
		return KindBooking, true
	case "order", "orders":
		return KindOrder, true
	case "enquiry", "enquiries":
		return KindEnquiry, true
	}
	return "", false
}

// Plural is the collection name used in routes and table names.
func (k Kind) Plural() string {
	if k == KindEnquiry {
		return "enquiries"
	}
	return string(k) + "s"
}

// HasStatus reports whether the kind carries a workflow-managed status.
func (k Kind) HasStatus() bool {
	switch k {
	case KindBooking, KindOrder, KindEnquiry:
		return true
	}
	return false
}

// Status is a workflow state. Every status-bearing kind draws from its own set.
type Status string

// Entity is implemented by every persisted model.
type Entity interface {
	EntityID() string
	EntityKind() Kind
}

// StatusEntity is an Entity whose status field is owned by the workflow.
type StatusEntity interface {
	Entity
	GetStatus() Status
	SetStatus(Status)
}

// New returns a pointer to a zero value of the model for kind.
func New(kind Kind) Entity {
	switch kind {
	case KindService:
		return &Service{}
	case KindProduct:
		return &Product{}
	case KindBooking:
		return &Booking{}
	case KindOrder:
		return &Order{}
	case KindEnquiry:
		return &Enquiry{}
	}
	return nil
}

// Statuses returns the closed status set for kind, initial status first.
func Statuses(kind Kind) []Status {
	switch kind {
	case KindBooking:
		return []Status{BookingStatusPending, BookingStatusSeen, BookingStatusCompleted}
	case KindOrder:
		return []Status{OrderStatusPending, OrderStatusProcessing, OrderStatusDelivered}
	case KindEnquiry:
		return []Status{EnquiryStatusNew, EnquiryStatusContacted, EnquiryStatusClosed}
	}
	return nil
}

// InitialStatus is the status every new entity of kind starts in.
func InitialStatus(kind Kind) Status {
	if s := Statuses(kind); len(s) > 0 {
		return s[0]
	}
	return ""
}

// IsValidStatus reports whether s belongs to kind's status set.
func IsValidStatus(kind Kind, s Status) bool {
	for _, candidate := range Statuses(kind) {
		if candidate == s {
			return true
		}
	}
	return false
}
