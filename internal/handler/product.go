package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/media"
	"github.com/iliyamo/tour-shop-backend/internal/middleware"
	"github.com/iliyamo/tour-shop-backend/internal/model"
)

type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

// ProductHandler manages the shop catalog.  Writes purge the listing cache.
type ProductHandler struct {
	Products ProductStore
	Media    media.Uploader
	Cache    middleware.Purger
	Log      *zap.Logger
}

var productImageFields = []string{"image1", "image2", "image3", "image4"}

func (h *ProductHandler) purge(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Purge(ctx)
	}
}

func (h *ProductHandler) images(c echo.Context) (model.StringList, error) {
	var urls model.StringList
	for _, field := range productImageFields {
		url, err := uploader{h.Media}.image(c, field)
		if err != nil {
			return nil, err
		}
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// Add: POST /api/product/add (multipart)
func (h *ProductHandler) Add(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return failure(c, http.StatusBadRequest, "name is required")
	}
	price, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("price")), 10, 64)
	if err != nil || price < 0 {
		return failure(c, http.StatusBadRequest, "price must be a non-negative integer")
	}
	imgs, err := h.images(c)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	p := &model.Product{
		Name:        name,
		Description: strings.TrimSpace(c.FormValue("description")),
		Price:       price,
		Images:      imgs,
		Category:    strings.TrimSpace(c.FormValue("category")),
		SubCategory: strings.TrimSpace(c.FormValue("subCategory")),
		Sizes:       formList(c.FormValue("sizes")),
		Bestseller:  formBool(c.FormValue("bestseller")),
	}
	ctx := c.Request().Context()
	if err := h.Products.Create(ctx, p); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusCreated, echo.Map{"message": "Product Added", "product": p})
}

// Update: POST /api/product/update (multipart).  Absent fields keep their
// value; uploaded images replace the whole gallery.
func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.Products.GetByID(ctx, strings.TrimSpace(c.FormValue("id")))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if v := strings.TrimSpace(c.FormValue("name")); v != "" {
		p.Name = v
	}
	if v := strings.TrimSpace(c.FormValue("description")); v != "" {
		p.Description = v
	}
	if v := strings.TrimSpace(c.FormValue("price")); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			return failure(c, http.StatusBadRequest, "price must be a non-negative integer")
		}
		p.Price = price
	}
	if v := strings.TrimSpace(c.FormValue("category")); v != "" {
		p.Category = v
	}
	if v := strings.TrimSpace(c.FormValue("subCategory")); v != "" {
		p.SubCategory = v
	}
	if v := c.FormValue("sizes"); v != "" {
		p.Sizes = formList(v)
	}
	if v := c.FormValue("bestseller"); v != "" {
		p.Bestseller = formBool(v)
	}
	imgs, err := h.images(c)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if len(imgs) > 0 {
		p.Images = imgs
	}
	if err := h.Products.Update(ctx, p); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Product Updated", "product": p})
}

// Remove: POST /api/product/remove
func (h *ProductHandler) Remove(c echo.Context) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		return failure(c, http.StatusBadRequest, "id is required")
	}
	ctx := c.Request().Context()
	if err := h.Products.Delete(ctx, strings.TrimSpace(req.ID)); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Product Removed"})
}

// Single: POST /api/product/single
func (h *ProductHandler) Single(c echo.Context) error {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ProductID) == "" {
		return failure(c, http.StatusBadRequest, "productId is required")
	}
	p, err := h.Products.GetByID(c.Request().Context(), strings.TrimSpace(req.ProductID))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"product": p})
}

// List: GET /api/product/list
func (h *ProductHandler) List(c echo.Context) error {
	list, err := h.Products.List(c.Request().Context())
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"products": list})
}
