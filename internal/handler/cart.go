package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/middleware"
	"github.com/iliyamo/tour-shop-backend/internal/service"
)

type CartHandler struct {
	Carts *service.CartService
	Log   *zap.Logger
}

type cartReq struct {
	ItemID   string `json:"itemId"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) Get(c echo.Context) error {
	cart, err := h.Carts.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"cartData": cart})
}

func (h *CartHandler) Add(c echo.Context) error {
	var req cartReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	cart, err := h.Carts.Add(c.Request().Context(), middleware.UserID(c), req.ItemID, req.Size)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Added To Cart", "cartData": cart})
}

func (h *CartHandler) Update(c echo.Context) error {
	var req cartReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	cart, err := h.Carts.Update(c.Request().Context(), middleware.UserID(c), req.ItemID, req.Size, req.Quantity)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Cart Updated", "cartData": cart})
}
