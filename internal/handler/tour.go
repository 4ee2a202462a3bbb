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

type TourStore interface {
	Create(ctx context.Context, t *model.Tour) error
	GetByID(ctx context.Context, id string) (*model.Tour, error)
	List(ctx context.Context, status string) ([]model.Tour, error)
	Update(ctx context.Context, t *model.Tour, expectedAvailable int) error
	Delete(ctx context.Context, id string) error
}

// TourHandler manages the tour catalog.
type TourHandler struct {
	Tours TourStore
	Media media.Uploader
	Cache middleware.Purger
	Log   *zap.Logger
}

func (h *TourHandler) purge(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Purge(ctx)
	}
}

func validTourStatus(s string) bool {
	return s == model.TourPlanned || s == model.TourPublished
}

// applyTourForm copies the tour fields present in the form onto t.  Seat counts
// are handled by the caller.
func applyTourForm(c echo.Context, t *model.Tour) error {
	if v := strings.TrimSpace(c.FormValue("name")); v != "" {
		t.Name = v
	}
	if v := strings.TrimSpace(c.FormValue("type")); v != "" {
		t.Type = v
	}
	if v := c.FormValue("startDate"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return err
		}
		t.StartDate = d
	}
	if v := c.FormValue("endDate"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return err
		}
		t.EndDate = d
	}
	if v := strings.TrimSpace(c.FormValue("price")); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil || p < 0 {
			return errText("price must be a non-negative integer")
		}
		t.Price = p
	}
	if v := strings.TrimSpace(c.FormValue("description")); v != "" {
		t.Description = v
	}
	if v := c.FormValue("highlights"); v != "" {
		t.Highlights = formList(v)
	}
	if v := strings.TrimSpace(c.FormValue("duration")); v != "" {
		t.Duration = v
	}
	if v := strings.TrimSpace(c.FormValue("status")); v != "" {
		if !validTourStatus(v) {
			return errText("status must be Planned or Published")
		}
		t.Status = v
	}
	if !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return errText("endDate must not be before startDate")
	}
	return nil
}

type errText string

func (e errText) Error() string { return string(e) }

func formSeats(c echo.Context) (int, bool, error) {
	v := strings.TrimSpace(c.FormValue("totalSeats"))
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, true, errText("totalSeats must be a non-negative integer")
	}
	return n, true, nil
}

// Add: POST /api/tour/add (multipart)
func (h *TourHandler) Add(c echo.Context) error {
	t := &model.Tour{Status: model.TourPlanned}
	if err := applyTourForm(c, t); err != nil {
		return failure(c, http.StatusBadRequest, err.Error())
	}
	seats, given, err := formSeats(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, err.Error())
	}
	if t.Name == "" || !given || t.StartDate.IsZero() || t.EndDate.IsZero() {
		return failure(c, http.StatusBadRequest, "name, startDate, endDate and totalSeats are required")
	}
	t.TotalSeats, t.AvailableSeats = seats, seats

	img, err := uploader{h.Media}.image(c, "image")
	if err != nil {
		return fromError(c, h.Log, err)
	}
	t.Image = img

	ctx := c.Request().Context()
	if err := h.Tours.Create(ctx, t); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusCreated, echo.Map{"message": "Tour Added", "tour": t})
}

// Update: POST /api/tour/update (multipart).  Changing totalSeats keeps the
// seats already sold: available = total - sold.  The write is guarded by
// the available count read here, so a confirmation in between makes it
// fail with 409 instead of restoring sold seats.
func (h *TourHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	cur, err := h.Tours.GetByID(ctx, strings.TrimSpace(c.FormValue("id")))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	expected := cur.AvailableSeats
	next := *cur
	if err := applyTourForm(c, &next); err != nil {
		return failure(c, http.StatusBadRequest, err.Error())
	}
	seats, given, err := formSeats(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, err.Error())
	}
	if given {
		sold := cur.SoldSeats()
		if seats < sold {
			return failure(c, http.StatusBadRequest, "totalSeats cannot be less than seats already booked ("+strconv.Itoa(sold)+")")
		}
		next.TotalSeats, next.AvailableSeats = seats, seats-sold
	}
	img, err := uploader{h.Media}.image(c, "image")
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if img != "" {
		next.Image = img
	}
	if err := h.Tours.Update(ctx, &next, expected); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Tour Updated", "tour": next})
}

// Remove: POST /api/tour/remove
func (h *TourHandler) Remove(c echo.Context) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		return failure(c, http.StatusBadRequest, "id is required")
	}
	ctx := c.Request().Context()
	if err := h.Tours.Delete(ctx, strings.TrimSpace(req.ID)); err != nil {
		return fromError(c, h.Log, err)
	}
	h.purge(ctx)
	return ok(c, http.StatusOK, echo.Map{"message": "Tour Removed"})
}

// List: GET /api/tour/list?status=Published
func (h *TourHandler) List(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	if status != "" && !validTourStatus(status) {
		return failure(c, http.StatusBadRequest, "status must be Planned or Published")
	}
	list, err := h.Tours.List(c.Request().Context(), status)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"tours": list})
}

// Get: GET /api/tour/:id
func (h *TourHandler) Get(c echo.Context) error {
	t, err := h.Tours.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"tour": t})
}
