package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salon-server/store"
)

// RegisterCatalogRoutes exposes the public service menu and product shelf
func RegisterCatalogRoutes(rg *gin.RouterGroup, a *API) {
	rg.GET("/services", a.listServices)
	rg.GET("/services/:id", a.getService)
	rg.GET("/products", a.listProducts)
	rg.GET("/products/:id", a.getProduct)
}

func catalogFilter(c *gin.Context) (store.Filter, int, int) {
	page, limit := pagination(c)
	return store.Filter{Search: c.Query("q"), Limit: limit, Offset: (page - 1) * limit}, page, limit
}

func (a *API) listServices(c *gin.Context) {
	f, page, limit := catalogFilter(c)
	items, total, err := a.Workflow.Store().Services.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, total, page, limit)
}

func (a *API) getService(c *gin.Context) {
	svc, err := a.Workflow.Store().Services.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, svc)
}

func (a *API) listProducts(c *gin.Context) {
	f, page, limit := catalogFilter(c)
	items, total, err := a.Workflow.Store().Products.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, total, page, limit)
}

func (a *API) getProduct(c *gin.Context) {
	p, err := a.Workflow.Store().Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, p)
}
