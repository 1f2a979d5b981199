package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"salon-server/models"
	"salon-server/types"
)

// Store owns the canonical record of every entity kind.
type Store struct {
	db *gorm.DB

	Services  *Repository[models.Service]
	Products  *Repository[models.Product]
	Bookings  *Repository[models.Booking]
	Orders    *Repository[models.Order]
	Enquiries *Repository[models.Enquiry]
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Services:  newRepository[models.Service](db, models.KindService, serviceSpec),
		Products:  newRepository[models.Product](db, models.KindProduct, productSpec),
		Bookings:  newRepository[models.Booking](db, models.KindBooking, bookingSpec),
		Orders:    newRepository[models.Order](db, models.KindOrder, orderSpec),
		Enquiries: newRepository[models.Enquiry](db, models.KindEnquiry, enquirySpec),
	}
}

// DB exposes the handle for read-only projections.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func asEntity[T any](v *T, err error) (models.Entity, error) {
	if err != nil {
		return nil, err
	}
	return any(v).(models.Entity), nil
}

func unknownKind(kind models.Kind) error {
	return types.NewValidation("unknown entity kind %q", kind)
}

func (s *Store) Create(ctx context.Context, e models.Entity) error {
	switch v := e.(type) {
	case *models.Service:
		return s.Services.Create(ctx, v)
	case *models.Product:
		return s.Products.Create(ctx, v)
	case *models.Booking:
		return s.Bookings.Create(ctx, v)
	case *models.Order:
		return s.Orders.Create(ctx, v)
	case *models.Enquiry:
		return s.Enquiries.Create(ctx, v)
	}
	return types.NewValidation("unsupported entity %T", e)
}

// Find loads one entity of any kind.
func (s *Store) Find(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	switch kind {
	case models.KindService:
		return asEntity(s.Services.Get(ctx, id))
	case models.KindProduct:
		return asEntity(s.Products.Get(ctx, id))
	case models.KindBooking:
		return asEntity(s.Bookings.Get(ctx, id))
	case models.KindOrder:
		return asEntity(s.Orders.Get(ctx, id))
	case models.KindEnquiry:
		return asEntity(s.Enquiries.Get(ctx, id))
	}
	return nil, unknownKind(kind)
}

// List returns a slice of the kind's model type (e.g. []models.Booking).
func (s *Store) List(ctx context.Context, kind models.Kind, f Filter) (any, int64, error) {
	switch kind {
	case models.KindService:
		return s.Services.List(ctx, f)
	case models.KindProduct:
		return s.Products.List(ctx, f)
	case models.KindBooking:
		return s.Bookings.List(ctx, f)
	case models.KindOrder:
		return s.Orders.List(ctx, f)
	case models.KindEnquiry:
		return s.Enquiries.List(ctx, f)
	}
	return nil, 0, unknownKind(kind)
}

func (s *Store) Update(ctx context.Context, kind models.Kind, id string, fields map[string]any) (models.Entity, error) {
	switch kind {
	case models.KindService:
		return asEntity(s.Services.Update(ctx, id, fields))
	case models.KindProduct:
		return asEntity(s.Products.Update(ctx, id, fields))
	case models.KindBooking:
		return asEntity(s.Bookings.Update(ctx, id, fields))
	case models.KindOrder:
		return asEntity(s.Orders.Update(ctx, id, fields))
	case models.KindEnquiry:
		return asEntity(s.Enquiries.Update(ctx, id, fields))
	}
	return nil, unknownKind(kind)
}

func (s *Store) Delete(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	switch kind {
	case models.KindService:
		return asEntity(s.Services.Delete(ctx, id))
	case models.KindProduct:
		return asEntity(s.Products.Delete(ctx, id))
	case models.KindBooking:
		return asEntity(s.Bookings.Delete(ctx, id))
	case models.KindOrder:
		return asEntity(s.Orders.Delete(ctx, id))
	case models.KindEnquiry:
		return asEntity(s.Enquiries.Delete(ctx, id))
	}
	return nil, unknownKind(kind)
}

// CurrentStatus reads the stored status of a status-bearing entity.
func (s *Store) CurrentStatus(ctx context.Context, kind models.Kind, id string) (models.Status, error) {
	if !kind.HasStatus() {
		return "", unknownKind(kind)
	}
	e, err := s.Find(ctx, kind, id)
	if err != nil {
		return "", err
	}
	return e.(models.StatusEntity).GetStatus(), nil
}

// CompareAndSetStatus writes to only if the stored status is still from. It
// reports whether the row was changed; false means the entity is gone or its
// status moved underneath the caller.
func (s *Store) CompareAndSetStatus(ctx context.Context, kind models.Kind, id string, from, to models.Status) (bool, error) {
	if !kind.HasStatus() {
		return false, unknownKind(kind)
	}
	res := s.db.WithContext(ctx).
		Model(models.New(kind)).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("set %s %s status: %w", kind, id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
