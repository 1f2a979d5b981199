package cart

import (
	"strings"
	"sync"
	"time"

	"salon-server/types"
)

// Line is one product in a cart
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is a shopper's pending selection. Lines keep the order in which
// products were first added. Safe for concurrent use.
type Cart struct {
	mu         sync.Mutex
	order      []string
	quantities map[string]int
	lastActive time.Time
}

func New() *Cart {
	return &Cart{quantities: make(map[string]int), lastActive: time.Now()}
}

func (c *Cart) touch() {
	c.lastActive = time.Now()
}

// Add increases the quantity of productID by qty, adding the line if needed.
func (c *Cart) Add(productID string, qty int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return types.NewValidation("product_id is required")
	}
	if qty < 1 {
		return types.NewValidation("quantity must be at least 1")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	if _, ok := c.quantities[productID]; !ok {
		c.order = append(c.order, productID)
	}
	c.quantities[productID] += qty
	return nil
}

// Set replaces the quantity of an existing line. A quantity of zero or less
// removes it.
func (c *Cart) Set(productID string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if _, ok := c.quantities[productID]; !ok {
		return types.NewNotFound("cart item", productID)
	}
	if qty <= 0 {
		c.remove(productID)
		return nil
	}
	c.quantities[productID] = qty
	return nil
}

// Remove drops the line for productID and reports whether it existed.
func (c *Cart) Remove(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.remove(productID)
}

func (c *Cart) remove(productID string) bool {
	if _, ok := c.quantities[productID]; !ok {
		return false
	}
	delete(c.quantities, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, Line{ProductID: id, Quantity: c.quantities[id]})
	}
	return lines
}

// Count is the total number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, q := range c.quantities {
		n += q
	}
	return n
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.order = nil
	c.quantities = make(map[string]int)
}

// Subtract takes the given quantities out of the cart, dropping lines that
// reach zero. Units added after lines were read stay in the cart.
func (c *Cart) Subtract(lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	for _, l := range lines {
		q, ok := c.quantities[l.ProductID]
		if !ok {
			continue
		}
		if q -= l.Quantity; q > 0 {
			c.quantities[l.ProductID] = q
		} else {
			c.remove(l.ProductID)
		}
	}
}

func (c *Cart) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Store keeps one cart per session and forgets carts left idle for longer
// than its TTL.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{carts: make(map[string]*Cart), ttl: ttl}
}

// Get returns the cart for sessionID, creating an empty one on first use.
func (s *Store) Get(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		c = New()
		s.carts[sessionID] = c
	}
	return c
}

// Peek returns the cart for sessionID without creating one.
func (s *Store) Peek(sessionID string) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	return c, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Prune removes carts idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Prune(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.carts {
		if now.Sub(c.LastActive()) > s.ttl {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}
