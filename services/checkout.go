package services

import (
	"context"
	"errors"
	"strings"

	"salon-server/cart"
	"salon-server/models"
	"salon-server/types"
)

// Customer is the contact and delivery details captured at checkout
type Customer struct {
	UserID  string `json:"user_id"`
	Name    string `json:"customer_name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Checkout turns cart lines into orders
type Checkout struct {
	workflow *Workflow
}

func NewCheckout(w *Workflow) *Checkout {
	return &Checkout{workflow: w}
}

// PlaceOrder resolves every line against the product catalog and creates an
// order whose items carry the name, image and price in effect right now.
// Later catalog edits do not reach the order.
func (c *Checkout) PlaceOrder(ctx context.Context, lines []cart.Line, customer Customer) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, types.NewValidation("cart is empty")
	}

	order := &models.Order{
		UserID:       strings.TrimSpace(customer.UserID),
		CustomerName: strings.TrimSpace(customer.Name),
		Email:        strings.TrimSpace(customer.Email),
		Phone:        strings.TrimSpace(customer.Phone),
		Address:      strings.TrimSpace(customer.Address),
		Items:        make([]models.OrderItem, 0, len(lines)),
	}

	products := c.workflow.Store().Products
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, types.NewValidation("quantity for %s must be at least 1", line.ProductID)
		}
		p, err := products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return nil, types.NewValidation("product %s is no longer available", line.ProductID)
			}
			return nil, err
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}

	if err := c.workflow.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CheckoutCart places an order for the cart's contents and, once the order
// is stored, removes the ordered quantities from the cart.
func (c *Checkout) CheckoutCart(ctx context.Context, sc *cart.Cart, customer Customer) (*models.Order, error) {
	lines := sc.Lines()
	order, err := c.PlaceOrder(ctx, lines, customer)
	if err != nil {
		return nil, err
	}
	sc.Subtract(lines)
	return order, nil
}
