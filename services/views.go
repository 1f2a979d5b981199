package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"salon-server/models"
	"salon-server/store"
)

// Clock returns the current time. Views bucket by the location of the time
// it returns.
type Clock func() time.Time

// DefaultRecentLimit is how many entities the recent lists show
const DefaultRecentLimit = 5

// Views computes the admin read models. Nothing is cached; every call reads
// the store.
type Views struct {
	store *store.Store
	now   Clock
}

func NewViews(s *store.Store, now Clock) *Views {
	if now == nil {
		now = time.Now
	}
	return &Views{store: s, now: now}
}

// OrderMetrics counts orders by status
type OrderMetrics struct {
	Total            int64           `json:"total"`
	Pending          int64           `json:"pending"`
	Processing       int64           `json:"processing"`
	Delivered        int64           `json:"delivered"`
	ThisMonth        int64           `json:"this_month"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
}

// Dashboard is the admin landing page
type Dashboard struct {
	TotalBookings           int64            `json:"total_bookings"`
	PendingBookings         int64            `json:"pending_bookings"`
	CompletedBookings       int64            `json:"completed_bookings"`
	ActiveServices          int64            `json:"active_services"`
	BookingRevenueThisMonth decimal.Decimal  `json:"booking_revenue_this_month"`
	PendingEnquiries        int64            `json:"pending_enquiries"`
	Orders                  OrderMetrics     `json:"orders"`
	RecentBookings          []models.Booking `json:"recent_bookings"`
	RecentOrders            []models.Order   `json:"recent_orders"`
	RecentEnquiries         []models.Enquiry `json:"recent_enquiries"`
	GeneratedAt             time.Time        `json:"generated_at"`
}

// NotificationSummary backs the admin bell
type NotificationSummary struct {
	PendingBookings []models.Booking `json:"pending_bookings"`
	NewEnquiries    []models.Enquiry `json:"new_enquiries"`
	Total           int              `json:"total"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// RevenueSplit separates treatment revenue from retail revenue
type RevenueSplit struct {
	Services decimal.Decimal `json:"services"`
	Products decimal.Decimal `json:"products"`
	Total    decimal.Decimal `json:"total"`
}

func (r *RevenueSplit) add(services, products decimal.Decimal) {
	r.Services = r.Services.Add(services)
	r.Products = r.Products.Add(products)
	r.Total = r.Services.Add(r.Products)
}

// MonthlyRevenue is one point of the revenue chart
type MonthlyRevenue struct {
	Month string `json:"month"`
	RevenueSplit
}

type RevenueSummary struct {
	Today     RevenueSplit     `json:"today"`
	ThisMonth RevenueSplit     `json:"this_month"`
	ThisYear  RevenueSplit     `json:"this_year"`
	Monthly   []MonthlyRevenue `json:"monthly"`
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

func (v *Views) countStatus(ctx context.Context, model any, status models.Status) (int64, error) {
	var n int64
	q := v.store.DB().WithContext(ctx).Model(model)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %T: %w", model, err)
	}
	return n, nil
}

// PendingBookings counts bookings still waiting for the salon.
func (v *Views) PendingBookings(ctx context.Context) (int64, error) {
	return v.countStatus(ctx, &models.Booking{}, models.BookingStatusPending)
}

// PendingEnquiries counts enquiries nobody has responded to.
func (v *Views) PendingEnquiries(ctx context.Context) (int64, error) {
	return v.countStatus(ctx, &models.Enquiry{}, models.EnquiryStatusNew)
}

// OrdersThisMonth counts orders of any status created in the current
// calendar month.
func (v *Views) OrdersThisMonth(ctx context.Context) (int64, error) {
	start, end := monthBounds(v.now())
	var n int64
	err := v.store.DB().WithContext(ctx).Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count orders this month: %w", err)
	}
	return n, nil
}

// RevenueThisMonth sums Delivered orders created in the current month.
func (v *Views) RevenueThisMonth(ctx context.Context) (decimal.Decimal, error) {
	start, end := monthBounds(v.now())
	orders, err := v.deliveredOrders(ctx, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}

func (v *Views) RecentBookings(ctx context.Context, n int) ([]models.Booking, error) {
	items, _, err := v.store.Bookings.List(ctx, store.Filter{Limit: n})
	return items, err
}

func (v *Views) RecentOrders(ctx context.Context, n int) ([]models.Order, error) {
	items, _, err := v.store.Orders.List(ctx, store.Filter{Limit: n})
	return items, err
}

func (v *Views) RecentEnquiries(ctx context.Context, n int) ([]models.Enquiry, error) {
	items, _, err := v.store.Enquiries.List(ctx, store.Filter{Limit: n})
	return items, err
}

// Orders reports order counts per status plus this month's activity.
func (v *Views) Orders(ctx context.Context) (OrderMetrics, error) {
	var m OrderMetrics
	var err error
	if m.Total, err = v.countStatus(ctx, &models.Order{}, ""); err != nil {
		return m, err
	}
	if m.Pending, err = v.countStatus(ctx, &models.Order{}, models.OrderStatusPending); err != nil {
		return m, err
	}
	if m.Processing, err = v.countStatus(ctx, &models.Order{}, models.OrderStatusProcessing); err != nil {
		return m, err
	}
	if m.Delivered, err = v.countStatus(ctx, &models.Order{}, models.OrderStatusDelivered); err != nil {
		return m, err
	}
	if m.ThisMonth, err = v.OrdersThisMonth(ctx); err != nil {
		return m, err
	}
	if m.RevenueThisMonth, err = v.RevenueThisMonth(ctx); err != nil {
		return m, err
	}
	return m, nil
}

func (v *Views) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := v.now()
	d := &Dashboard{GeneratedAt: now}
	var err error

	if d.TotalBookings, err = v.countStatus(ctx, &models.Booking{}, ""); err != nil {
		return nil, err
	}
	if d.PendingBookings, err = v.PendingBookings(ctx); err != nil {
		return nil, err
	}
	if d.CompletedBookings, err = v.countStatus(ctx, &models.Booking{}, models.BookingStatusCompleted); err != nil {
		return nil, err
	}
	if d.PendingEnquiries, err = v.PendingEnquiries(ctx); err != nil {
		return nil, err
	}

	err = v.store.DB().WithContext(ctx).Model(&models.Booking{}).
		Distinct("service_name").
		Count(&d.ActiveServices).Error
	if err != nil {
		return nil, fmt.Errorf("count booked services: %w", err)
	}

	start, end := monthBounds(now)
	bookings, err := v.completedBookings(ctx, start, end)
	if err != nil {
		return nil, err
	}
	d.BookingRevenueThisMonth = decimal.Zero
	for _, b := range bookings {
		d.BookingRevenueThisMonth = d.BookingRevenueThisMonth.Add(b.ServicePrice)
	}

	if d.Orders, err = v.Orders(ctx); err != nil {
		return nil, err
	}
	if d.RecentBookings, err = v.RecentBookings(ctx, DefaultRecentLimit); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = v.RecentOrders(ctx, DefaultRecentLimit); err != nil {
		return nil, err
	}
	if d.RecentEnquiries, err = v.RecentEnquiries(ctx, DefaultRecentLimit); err != nil {
		return nil, err
	}
	return d, nil
}

// Notifications lists everything waiting on the admin.
func (v *Views) Notifications(ctx context.Context) (*NotificationSummary, error) {
	bookings, _, err := v.store.Bookings.List(ctx, store.Filter{Status: string(models.BookingStatusPending)})
	if err != nil {
		return nil, err
	}
	enquiries, _, err := v.store.Enquiries.List(ctx, store.Filter{Status: string(models.EnquiryStatusNew)})
	if err != nil {
		return nil, err
	}
	return &NotificationSummary{
		PendingBookings: bookings,
		NewEnquiries:    enquiries,
		Total:           len(bookings) + len(enquiries),
		GeneratedAt:     v.now(),
	}, nil
}

// Revenue reports service revenue (Completed bookings) and product revenue
// (Delivered orders) for today, this month, this year and the last months
// calendar months including the current one.
func (v *Views) Revenue(ctx context.Context, months int) (*RevenueSummary, error) {
	if months < 1 {
		months = 1
	}
	now := v.now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	monthStart, end := monthBounds(now)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
	seriesStart := monthStart.AddDate(0, -(months - 1), 0)

	from := yearStart
	if seriesStart.Before(from) {
		from = seriesStart
	}

	bookings, err := v.completedBookings(ctx, from, end)
	if err != nil {
		return nil, err
	}
	orders, err := v.deliveredOrders(ctx, from, end)
	if err != nil {
		return nil, err
	}

	summary := &RevenueSummary{Monthly: make([]MonthlyRevenue, months)}
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := seriesStart.AddDate(0, i, 0).Format("2006-01")
		summary.Monthly[i] = MonthlyRevenue{Month: key}
		index[key] = i
	}

	bucket := func(at time.Time, services, products decimal.Decimal) {
		at = at.In(loc)
		if !at.Before(today) {
			summary.Today.add(services, products)
		}
		if !at.Before(monthStart) {
			summary.ThisMonth.add(services, products)
		}
		if !at.Before(yearStart) {
			summary.ThisYear.add(services, products)
		}
		if i, ok := index[at.Format("2006-01")]; ok {
			summary.Monthly[i].add(services, products)
		}
	}
	for _, b := range bookings {
		bucket(b.CreatedAt, b.ServicePrice, decimal.Zero)
	}
	for _, o := range orders {
		bucket(o.CreatedAt, decimal.Zero, o.TotalAmount)
	}
	return summary, nil
}

// Amounts are summed in Go so decimal columns stay exact on every dialect.
func (v *Views) completedBookings(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	var rows []models.Booking
	err := v.store.DB().WithContext(ctx).
		Select("id", "service_price", "created_at").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.BookingStatusCompleted, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load completed bookings: %w", err)
	}
	return rows, nil
}

func (v *Views) deliveredOrders(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := v.store.DB().WithContext(ctx).
		Select("id", "total_amount", "created_at").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.OrderStatusDelivered, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load delivered orders: %w", err)
	}
	return rows, nil
}
