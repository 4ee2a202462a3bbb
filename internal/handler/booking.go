package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/middleware"
	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/receipt"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
	"github.com/iliyamo/tour-shop-backend/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Bookings *service.BookingService
	Tours    service.TourReader
	Currency string
	Log      *zap.Logger
}

type createBookingReq struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BookingType    string `json:"bookingType"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	Guests         int    `json:"guests"`
	PaymentOption  string `json:"paymentOption"`
	SpecialRequest string `json:"specialRequest"`
	TourID         string `json:"tourId"`
}

// Create: POST /api/booking/create
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return failure(c, http.StatusBadRequest, err.Error())
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return failure(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), gatewayTimeout)
	defer cancel()

	res, err := h.Bookings.Create(ctx, service.CreateBookingInput{
		UserID:         middleware.UserID(c),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		BookingType:    strings.TrimSpace(req.BookingType),
		StartDate:      start,
		EndDate:        end,
		Guests:         req.Guests,
		PaymentOption:  strings.TrimSpace(req.PaymentOption),
		SpecialRequest: strings.TrimSpace(req.SpecialRequest),
		TourID:         strings.TrimSpace(req.TourID),
	})
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, echo.Map{
		"bookingId": res.Booking.ID,
		"booking":   res.Booking,
		"order":     res.Order,
	})
}

type verifyBookingReq struct {
	BookingID string `json:"bookingId"`
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verify: POST /api/booking/verify
func (h *BookingHandler) Verify(c echo.Context) error {
	var req verifyBookingReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), gatewayTimeout)
	defer cancel()

	in := service.VerifyBookingInput{
		BookingID: strings.TrimSpace(req.BookingID),
		OrderID:   strings.TrimSpace(req.OrderID),
		PaymentID: strings.TrimSpace(req.PaymentID),
		Signature: strings.TrimSpace(req.Signature),
	}
	if !model.IsAdmin(middleware.Role(c)) {
		in.UserID = middleware.UserID(c)
	}
	confirmed, err := h.Bookings.Verify(ctx, in)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if !confirmed {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "confirmed": false, "message": "Payment not completed"})
	}
	return ok(c, http.StatusOK, echo.Map{"confirmed": true, "message": "Booking confirmed"})
}

// List: GET /api/booking/list
func (h *BookingHandler) List(c echo.Context) error {
	list, err := h.Bookings.List(c.Request().Context())
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"bookings": list})
}

// UpdateStatus: POST /api/booking/status
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		BookingID string `json:"bookingId"`
		Status    string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.Bookings.UpdateStatus(c.Request().Context(), strings.TrimSpace(req.BookingID), req.Status); err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Status Updated"})
}

// UserBookings: POST /api/booking/user-bookings
func (h *BookingHandler) UserBookings(c echo.Context) error {
	list, err := h.Bookings.ListForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"bookings": list})
}

// Applicants: POST /api/booking/get-applicants
func (h *BookingHandler) Applicants(c echo.Context) error {
	var req struct {
		TourID string `json:"tourId"`
	}
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	list, err := h.Bookings.Applicants(c.Request().Context(), strings.TrimSpace(req.TourID))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"applicants": list})
}

// Receipt: GET /api/booking/receipt/:id renders a PDF for the booking's
// owner or an admin.
func (h *BookingHandler) Receipt(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Bookings.Get(ctx, c.Param("id"))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if b.UserID != middleware.UserID(c) && !model.IsAdmin(middleware.Role(c)) {
		return failure(c, http.StatusNotFound, "booking not found")
	}
	var tour *model.Tour
	if b.IsTour() && h.Tours != nil {
		tour, err = h.Tours.GetByID(ctx, b.TourID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fromError(c, h.Log, err)
		}
	}
	doc, name, err := receipt.Booking(b, tour, h.Currency)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
