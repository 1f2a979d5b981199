package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxRevenueMonths = 36

// RegisterDashboardRoutes mounts the admin read models
func RegisterDashboardRoutes(rg *gin.RouterGroup, a *API) {
	rg.GET("/dashboard", a.dashboard)
	rg.GET("/metrics/orders", a.orderMetrics)
	rg.GET("/revenue", a.revenue)
	rg.GET("/notifications", a.notifications)
	rg.POST("/notifications/clear", a.clearNotifications)
}

func (a *API) dashboard(c *gin.Context) {
	d, err := a.Views.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, d)
}

func (a *API) orderMetrics(c *gin.Context) {
	m, err := a.Views.Orders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, m)
}

// revenue reports today, this month, this year and a monthly series whose
// length is set by ?months= (default 12).
func (a *API) revenue(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", "12"))
	if err != nil || months < 1 || months > maxRevenueMonths {
		badRequest(c, "months must be between 1 and %d", maxRevenueMonths)
		return
	}
	summary, err := a.Views.Revenue(c.Request.Context(), months)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, summary)
}

func (a *API) notifications(c *gin.Context) {
	summary, err := a.Views.Notifications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, summary)
}

// clearNotifications acknowledges everything in the bell: pending bookings
// become Seen and new enquiries become Contacted.
func (a *API) clearNotifications(c *gin.Context) {
	moved, err := a.Workflow.AcknowledgeAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"acknowledged": moved}})
}
