package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salon-server/models"
)

// RegisterAdminRoutes mounts list/get/patch/delete for every entity kind and
// the status endpoint for kinds that have one.
func RegisterAdminRoutes(rg *gin.RouterGroup, a *API) {
	for _, kind := range models.Kinds {
		group := rg.Group("/" + kind.Plural())
		h := entityHandlers{api: a, kind: kind}

		group.GET("", h.list)
		group.GET("/:id", h.get)
		group.PATCH("/:id", h.update)
		group.DELETE("/:id", h.remove)
		if kind.HasStatus() {
			group.PUT("/:id/status", h.transition)
		}
	}

	rg.POST("/services", a.createService)
	rg.POST("/products", a.createProduct)
}

type entityHandlers struct {
	api  *API
	kind models.Kind
}

func (h entityHandlers) list(c *gin.Context) {
	f, page, limit, err := listFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if f.Status != "" {
		if !h.kind.HasStatus() {
			badRequest(c, "%s has no status", h.kind)
			return
		}
		if !models.IsValidStatus(h.kind, models.Status(f.Status)) {
			badRequest(c, "%q is not a %s status", f.Status, h.kind)
			return
		}
	}

	items, total, err := h.api.Workflow.Store().List(c.Request.Context(), h.kind, f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, total, page, limit)
}

func (h entityHandlers) get(c *gin.Context) {
	entity, err := h.api.Workflow.Store().Find(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, entity)
}

// update applies a partial update. Numbers are kept as json.Number so money
// fields reach the decimal decoder unrounded.
func (h entityHandlers) update(c *gin.Context) {
	if isMultipart(c) && (h.kind == models.KindService || h.kind == models.KindProduct) {
		h.updateCatalogForm(c)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "could not read request body")
		return
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		badRequest(c, "request body must be a JSON object")
		return
	}

	entity, err := h.api.Workflow.Update(c.Request.Context(), h.kind, c.Param("id"), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, entity)
}

func (h entityHandlers) remove(c *gin.Context) {
	entity, err := h.api.Workflow.Delete(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, entity)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h entityHandlers) transition(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	target := models.Status(strings.TrimSpace(req.Status))
	if target == "" {
		badRequest(c, "status is required")
		return
	}

	entity, err := h.api.Workflow.Transition(c.Request.Context(), h.kind, c.Param("id"), target)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, entity)
}
