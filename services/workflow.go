package services

import (
	"context"
	"errors"
	"log"

	"salon-server/events"
	"salon-server/models"
	"salon-server/store"
	"salon-server/types"
)

// Publisher receives every change event the workflow emits
type Publisher interface {
	Publish(events.Event)
}

// transitions lists, per kind, the statuses reachable from each status.
var transitions = map[models.Kind]map[models.Status][]models.Status{
	models.KindBooking: {
		models.BookingStatusPending:   {models.BookingStatusSeen, models.BookingStatusCompleted},
		models.BookingStatusSeen:      {models.BookingStatusPending, models.BookingStatusCompleted},
		models.BookingStatusCompleted: {},
	},
	models.KindOrder: {
		models.OrderStatusPending:    {models.OrderStatusProcessing},
		models.OrderStatusProcessing: {models.OrderStatusDelivered},
		models.OrderStatusDelivered:  {},
	},
	models.KindEnquiry: {
		models.EnquiryStatusNew:       {models.EnquiryStatusContacted, models.EnquiryStatusClosed},
		models.EnquiryStatusContacted: {models.EnquiryStatusClosed, models.EnquiryStatusContacted},
		models.EnquiryStatusClosed:    {models.EnquiryStatusContacted},
	},
}

// AllowedTargets returns the statuses kind may move to from the given status.
func AllowedTargets(kind models.Kind, from models.Status) []models.Status {
	return append([]models.Status(nil), transitions[kind][from]...)
}

// CanTransition reports whether from -> to is permitted. Staying put is
// always permitted for a known status.
func CanTransition(kind models.Kind, from, to models.Status) bool {
	targets, ok := transitions[kind][from]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}

// Workflow is the single write path for entities. Every successful write
// publishes exactly one event before returning.
type Workflow struct {
	store     *store.Store
	publisher Publisher
}

func NewWorkflow(s *store.Store, p Publisher) *Workflow {
	return &Workflow{store: s, publisher: p}
}

func (w *Workflow) Store() *store.Store {
	return w.store
}

func (w *Workflow) publish(ev events.Event) {
	if w.publisher == nil {
		return
	}
	w.publisher.Publish(ev)
}

// Create persists e in its kind's initial status. Order totals are derived
// from the line items; whatever the caller supplied is ignored.
func (w *Workflow) Create(ctx context.Context, e models.Entity) error {
	if se, ok := e.(models.StatusEntity); ok {
		se.SetStatus(models.InitialStatus(e.EntityKind()))
	}
	if o, ok := e.(*models.Order); ok {
		o.TotalAmount = o.ComputeTotal()
	}

	if err := w.store.Create(ctx, e); err != nil {
		return err
	}

	log.Printf("✅ Created %s %s", e.EntityKind(), e.EntityID())
	w.publish(events.New(events.Created, e))
	return nil
}

// Update applies a partial update. Status is never writable here.
func (w *Workflow) Update(ctx context.Context, kind models.Kind, id string, fields map[string]any) (models.Entity, error) {
	updated, err := w.store.Update(ctx, kind, id, fields)
	if err != nil {
		return nil, err
	}
	w.publish(events.New(events.Updated, updated))
	return updated, nil
}

func (w *Workflow) Delete(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	removed, err := w.store.Delete(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	log.Printf("🗑️ Deleted %s %s", kind, id)
	w.publish(events.New(events.Deleted, removed))
	return removed, nil
}

// Transition moves an entity to target. Asking for the current status
// succeeds without writing or publishing. The write is a compare-and-swap on
// the status read here, so a concurrent change surfaces as ConflictRetry.
func (w *Workflow) Transition(ctx context.Context, kind models.Kind, id string, target models.Status) (models.Entity, error) {
	if !kind.HasStatus() {
		return nil, types.NewValidation("%s has no status", kind)
	}
	if !models.IsValidStatus(kind, target) {
		return nil, types.NewValidation("%q is not a %s status", target, kind)
	}

	current, err := w.store.Find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	se := current.(models.StatusEntity)
	from := se.GetStatus()

	if from == target {
		return current, nil
	}
	if !CanTransition(kind, from, target) {
		return nil, types.NewInvalidTransition(string(kind), string(from), string(target))
	}

	ok, err := w.store.CompareAndSetStatus(ctx, kind, id, from, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := w.store.Find(ctx, kind, id); err != nil {
			return nil, err
		}
		return nil, types.NewConflictRetry(string(kind), id)
	}

	result := current
	if reloaded, err := w.store.Find(ctx, kind, id); err == nil {
		result = reloaded
	} else {
		se.SetStatus(target)
	}

	log.Printf("✅ %s %s: %s -> %s", kind, id, from, target)
	w.publish(events.NewStatusChange(result.(models.StatusEntity), from))
	return result, nil
}

// AcknowledgeAll marks every Pending booking Seen and every New enquiry
// Contacted, returning how many moved. Entities that changed concurrently
// are skipped.
func (w *Workflow) AcknowledgeAll(ctx context.Context) (int, error) {
	bookings, _, err := w.store.Bookings.List(ctx, store.Filter{Status: string(models.BookingStatusPending)})
	if err != nil {
		return 0, err
	}
	enquiries, _, err := w.store.Enquiries.List(ctx, store.Filter{Status: string(models.EnquiryStatusNew)})
	if err != nil {
		return 0, err
	}

	type pending struct {
		kind   models.Kind
		id     string
		target models.Status
	}
	work := make([]pending, 0, len(bookings)+len(enquiries))
	for _, b := range bookings {
		work = append(work, pending{models.KindBooking, b.ID, models.BookingStatusSeen})
	}
	for _, e := range enquiries {
		work = append(work, pending{models.KindEnquiry, e.ID, models.EnquiryStatusContacted})
	}

	moved := 0
	for _, p := range work {
		if _, err := w.Transition(ctx, p.kind, p.id, p.target); err != nil {
			if skippable(err) {
				continue
			}
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func skippable(err error) bool {
	return errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, types.ErrConflictRetry) ||
		errors.Is(err, types.ErrInvalidTransition)
}
