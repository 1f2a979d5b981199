package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"salon-server/models"
	"salon-server/types"
)

// Repository is the CRUD surface for one entity kind.
type Repository[T any] struct {
	db   *gorm.DB
	kind models.Kind
	spec kindSpec
}

func newRepository[T any](db *gorm.DB, kind models.Kind, spec kindSpec) *Repository[T] {
	return &Repository[T]{db: db, kind: kind, spec: spec}
}

func (r *Repository[T]) scoped(db *gorm.DB) *gorm.DB {
	if r.spec.preloadItems {
		return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
	}
	return db
}

func (r *Repository[T]) notFoundOr(err error, id, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewNotFound(string(r.kind), id)
	}
	return fmt.Errorf("%s %s %s: %w", op, r.kind, id, err)
}

// Create validates and inserts entity. Identifiers and defaults are assigned
// by the model hooks.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := Validate(entity); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.kind, err)
	}
	return nil
}

func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.scoped(r.db.WithContext(ctx)).First(&entity, "id = ?", id).Error; err != nil {
		return nil, r.notFoundOr(err, id, "get")
	}
	return &entity, nil
}

func (r *Repository[T]) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))

	if f.Status != "" && r.spec.hasStatus {
		q = q.Where("status = ?", f.Status)
	}
	if !f.CreatedFrom.IsZero() {
		q = q.Where("created_at >= ?", f.CreatedFrom)
	}
	if !f.CreatedTo.IsZero() {
		q = q.Where("created_at < ?", f.CreatedTo)
	}
	if r.spec.dateColumn != "" {
		if f.DateFrom != "" {
			q = q.Where(r.spec.dateColumn+" >= ?", f.DateFrom)
		}
		if f.DateTo != "" {
			q = q.Where(r.spec.dateColumn+" <= ?", f.DateTo)
		}
	}
	if term := strings.TrimSpace(f.Search); term != "" && len(r.spec.searchColumns) > 0 {
		like := "%" + strings.ToLower(term) + "%"
		conds := make([]string, 0, len(r.spec.searchColumns))
		args := make([]any, 0, len(r.spec.searchColumns))
		for _, col := range r.spec.searchColumns {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, like)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return q
}

// List returns one page of matches plus the total match count. Results are
// ordered newest first with ties broken by identifier.
func (r *Repository[T]) List(ctx context.Context, f Filter) ([]T, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind, err)
	}

	q := r.scoped(r.filtered(ctx, f)).Order("created_at DESC").Order("id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	items := make([]T, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind, err)
	}
	return items, total, nil
}

// Update merges fields into the stored entity inside one transaction. Only
// the supplied columns are written.
func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if len(fields) == 0 {
		return nil, types.NewValidation("no fields to update")
	}

	columns := make([]string, 0, len(fields)+1)
	for name := range fields {
		if r.spec.isImmutable(name) {
			return nil, types.NewValidation("%s cannot be updated", name)
		}
		col, ok := r.spec.updatable[name]
		if !ok {
			return nil, types.NewValidation("unknown field %s", name)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)
	columns = append(columns, "updated_at")

	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, types.NewValidation("invalid update payload: %v", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity T
		if err := r.scoped(tx).First(&entity, "id = ?", id).Error; err != nil {
			return r.notFoundOr(err, id, "update")
		}
		if err := json.Unmarshal(patch, &entity); err != nil {
			return types.NewValidation("invalid update payload: %v", err)
		}
		if err := Validate(&entity); err != nil {
			return err
		}
		if err := tx.Model(&entity).Select(columns).Updates(&entity).Error; err != nil {
			return fmt.Errorf("update %s %s: %w", r.kind, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes the entity and its owned rows, returning what was removed.
func (r *Repository[T]) Delete(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.scoped(tx).First(&entity, "id = ?", id).Error; err != nil {
			return r.notFoundOr(err, id, "delete")
		}
		if err := tx.Select(clause.Associations).Delete(&entity).Error; err != nil {
			return fmt.Errorf("delete %s %s: %w", r.kind, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}
