package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"salon-server/models"
)

// catalogInput is the body of service and product create and edit. It is
// read from JSON or from a multipart form carrying an "image" file. Nil
// fields were not sent.
type catalogInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func formValue(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

// bindCatalogInput parses the request and, for multipart requests with an
// image, uploads it into folder and sets ImageURL.
func (a *API) bindCatalogInput(c *gin.Context, folder string) (*catalogInput, bool) {
	var in catalogInput

	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body: %v", err)
			return nil, false
		}
		return &in, true
	}

	if _, err := c.MultipartForm(); err != nil {
		badRequest(c, "invalid form: %v", err)
		return nil, false
	}
	in.Name = formValue(c, "name")
	in.Description = formValue(c, "description")
	in.ImageURL = formValue(c, "image_url")
	if price := formValue(c, "price"); price != nil && *price != "" {
		p, err := decimal.NewFromString(*price)
		if err != nil {
			badRequest(c, "price must be a number")
			return nil, false
		}
		in.Price = &p
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return &in, true
	}
	if err != nil {
		badRequest(c, "invalid image upload: %v", err)
		return nil, false
	}
	url, err := a.Uploader.Upload(c.Request.Context(), header, folder)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	in.ImageURL = &url
	return &in, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// fields turns the sent values into a partial update.
func (in *catalogInput) fields() map[string]any {
	fields := make(map[string]any)
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	return fields
}

func (a *API) createService(c *gin.Context) {
	in, ok := a.bindCatalogInput(c, models.KindService.Plural())
	if !ok {
		return
	}
	if in.Price == nil {
		badRequest(c, "price is required")
		return
	}
	svc := &models.Service{
		Name:        deref(in.Name),
		Description: deref(in.Description),
		Price:       *in.Price,
		ImageURL:    deref(in.ImageURL),
	}
	if err := a.Workflow.Create(c.Request.Context(), svc); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, svc)
}

func (a *API) createProduct(c *gin.Context) {
	in, ok := a.bindCatalogInput(c, models.KindProduct.Plural())
	if !ok {
		return
	}
	if in.Price == nil {
		badRequest(c, "price is required")
		return
	}
	p := &models.Product{
		Name:     deref(in.Name),
		Price:    *in.Price,
		ImageURL: deref(in.ImageURL),
	}
	if err := a.Workflow.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, p)
}

// updateCatalogForm edits a service or product from a multipart form. A new
// "image" file replaces the stored image URL.
func (h entityHandlers) updateCatalogForm(c *gin.Context) {
	in, ok := h.api.bindCatalogInput(c, h.kind.Plural())
	if !ok {
		return
	}
	entity, err := h.api.Workflow.Update(c.Request.Context(), h.kind, c.Param("id"), in.fields())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, entity)
}
