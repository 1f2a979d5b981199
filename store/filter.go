package store

import "time"

// Filter narrows a List call. Zero values mean "no constraint".
type Filter struct {
	Status      string
	CreatedFrom time.Time
	CreatedTo   time.Time
	// DateFrom and DateTo bound the scheduled date (YYYY-MM-DD) of bookings
	// and are ignored for other kinds.
	DateFrom string
	DateTo   string
	Search   string
	Limit    int
	Offset   int
}

// kindSpec describes how a kind is searched, loaded and patched.
type kindSpec struct {
	searchColumns []string
	dateColumn    string
	hasStatus     bool
	preloadItems  bool
	// updatable maps payload field names to columns.
	updatable map[string]string
	// immutable lists fields that exist but may never be patched.
	immutable map[string]bool
}

var commonImmutable = map[string]bool{
	"id":         true,
	"kind":       true,
	"status":     true,
	"created_at": true,
	"updated_at": true,
}

func (s kindSpec) isImmutable(field string) bool {
	return commonImmutable[field] || s.immutable[field]
}

var (
	serviceSpec = kindSpec{
		searchColumns: []string{"name", "description"},
		updatable: map[string]string{
			"name": "name", "description": "description", "price": "price", "image_url": "image_url",
		},
	}
	productSpec = kindSpec{
		searchColumns: []string{"name"},
		updatable: map[string]string{
			"name": "name", "price": "price", "image_url": "image_url",
		},
	}
	bookingSpec = kindSpec{
		searchColumns: []string{"customer_name", "phone", "service_name"},
		dateColumn:    "date",
		hasStatus:     true,
		updatable: map[string]string{
			"customer_name": "customer_name", "phone": "phone", "service_id": "service_id",
			"service_name": "service_name", "service_price": "service_price",
			"date": "date", "time": "time",
		},
	}
	orderSpec = kindSpec{
		searchColumns: []string{"customer_name", "email", "phone"},
		hasStatus:     true,
		preloadItems:  true,
		updatable: map[string]string{
			"user_id": "user_id", "customer_name": "customer_name", "email": "email",
			"phone": "phone", "address": "address",
		},
		immutable: map[string]bool{"items": true, "total_amount": true},
	}
	enquirySpec = kindSpec{
		searchColumns: []string{"name", "email", "phone", "message"},
		hasStatus:     true,
		updatable: map[string]string{
			"name": "name", "email": "email", "phone": "phone", "type": "type", "message": "message",
		},
	}
)
