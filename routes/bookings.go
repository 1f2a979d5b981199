package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"salon-server/models"
	"salon-server/types"
)

// RegisterBookingRoutes accepts appointment requests and contact-form
// enquiries from the storefront.
func RegisterBookingRoutes(rg *gin.RouterGroup, a *API) {
	rg.POST("/bookings", a.createBooking)
	rg.POST("/enquiries", a.createEnquiry)
}

type bookingRequest struct {
	CustomerName string           `json:"customer_name"`
	Phone        string           `json:"phone"`
	ServiceID    string           `json:"service_id"`
	ServiceName  string           `json:"service_name"`
	ServicePrice *decimal.Decimal `json:"service_price"`
	Date         string           `json:"date"`
	Time         string           `json:"time"`
}

// createBooking snapshots the catalog name and price when a service_id is
// given; otherwise service_name and service_price must both be present.
func (a *API) createBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	booking := &models.Booking{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        strings.TrimSpace(req.Phone),
		Date:         strings.TrimSpace(req.Date),
		Time:         strings.TrimSpace(req.Time),
	}

	if id := strings.TrimSpace(req.ServiceID); id != "" {
		svc, err := a.Workflow.Store().Services.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				badRequest(c, "service %s is not offered", id)
				return
			}
			respondError(c, err)
			return
		}
		booking.ServiceID = svc.ID
		booking.ServiceName = svc.Name
		booking.ServicePrice = svc.Price
	} else {
		if req.ServicePrice == nil {
			badRequest(c, "service_id or service_price is required")
			return
		}
		booking.ServiceName = strings.TrimSpace(req.ServiceName)
		booking.ServicePrice = *req.ServicePrice
	}

	if err := a.Workflow.Create(c.Request.Context(), booking); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, booking)
}

type enquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (a *API) createEnquiry(c *gin.Context) {
	var req enquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}

	enquiry := &models.Enquiry{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Type:    strings.TrimSpace(req.Type),
		Message: strings.TrimSpace(req.Message),
	}
	if err := a.Workflow.Create(c.Request.Context(), enquiry); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, enquiry)
}
