package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salon-server/cart"
	"salon-server/models"
	"salon-server/services"
	"salon-server/types"
)

// SessionHeader carries the shopper's cart session id. A new id is issued in
// the response when the request has none.
const SessionHeader = "X-Session-ID"

// RegisterCartRoutes exposes the session cart and checkout
func RegisterCartRoutes(rg *gin.RouterGroup, a *API) {
	rg.GET("/cart", a.getCart)
	rg.POST("/cart/items", a.addCartItem)
	rg.PATCH("/cart/items/:product_id", a.setCartItem)
	rg.DELETE("/cart/items/:product_id", a.removeCartItem)
	rg.DELETE("/cart", a.clearCart)
	rg.POST("/checkout", a.checkout)
}

func sessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(SessionHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(SessionHeader, id)
	return id
}

type cartLineView struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available bool            `json:"available"`
}

type cartView struct {
	SessionID string          `json:"session_id"`
	Items     []cartLineView  `json:"items"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
}

// renderCart prices every line at the current catalog price. Lines whose
// product was removed stay in the cart but are flagged unavailable.
func (a *API) renderCart(c *gin.Context, session string, sc *cart.Cart) {
	view := cartView{SessionID: session, Items: make([]cartLineView, 0), Total: decimal.Zero}
	products := a.Workflow.Store().Products

	for _, line := range sc.Lines() {
		lv := cartLineView{ProductID: line.ProductID, Quantity: line.Quantity}
		p, err := products.Get(c.Request.Context(), line.ProductID)
		switch {
		case err == nil:
			lv.Name = p.Name
			lv.ImageURL = p.ImageURL
			lv.Price = p.Price
			lv.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			lv.Available = true
			view.Total = view.Total.Add(lv.Subtotal)
		case errors.Is(err, types.ErrNotFound):
		default:
			respondError(c, err)
			return
		}
		view.Count += line.Quantity
		view.Items = append(view.Items, lv)
	}
	respondData(c, http.StatusOK, view)
}

func (a *API) getCart(c *gin.Context) {
	session := sessionID(c)
	sc, ok := a.Carts.Peek(session)
	if !ok {
		sc = cart.New()
	}
	a.renderCart(c, session, sc)
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (a *API) addCartItem(c *gin.Context) {
	session := sessionID(c)
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if _, err := a.Workflow.Store().Products.Get(c.Request.Context(), req.ProductID); err != nil {
		respondError(c, err)
		return
	}

	sc := a.Carts.Get(session)
	if err := sc.Add(req.ProductID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	a.renderCart(c, session, sc)
}

func (a *API) setCartItem(c *gin.Context) {
	session := sessionID(c)
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	sc := a.Carts.Get(session)
	if err := sc.Set(c.Param("product_id"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	a.renderCart(c, session, sc)
}

func (a *API) removeCartItem(c *gin.Context) {
	session := sessionID(c)
	sc := a.Carts.Get(session)
	productID := c.Param("product_id")
	if !sc.Remove(productID) {
		respondError(c, types.NewNotFound("cart item", productID))
		return
	}
	a.renderCart(c, session, sc)
}

func (a *API) clearCart(c *gin.Context) {
	session := sessionID(c)
	sc, ok := a.Carts.Peek(session)
	if !ok {
		sc = cart.New()
	}
	sc.Clear()
	a.renderCart(c, session, sc)
}

type checkoutRequest struct {
	services.Customer
	// Items, when present, are ordered instead of the session cart.
	Items []cart.Line `json:"items"`
}

func (a *API) checkout(c *gin.Context) {
	session := sessionID(c)
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	ctx := c.Request.Context()
	var (
		order *models.Order
		err   error
	)
	if len(req.Items) > 0 {
		order, err = a.Checkout.PlaceOrder(ctx, req.Items, req.Customer)
	} else {
		sc, ok := a.Carts.Peek(session)
		if !ok {
			badRequest(c, "cart is empty")
			return
		}
		order, err = a.Checkout.CheckoutCart(ctx, sc, req.Customer)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, order)
}
