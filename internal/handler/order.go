package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/middleware"
	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/service"
)

// OrderHandler serves cart checkout for the three payment methods.
type OrderHandler struct {
	Orders *service.OrderService
	Log    *zap.Logger
}

type placeOrderReq struct {
	Items   []service.OrderLine `json:"items"`
	Address model.Address       `json:"address"`
}

func (h *OrderHandler) input(c echo.Context) (service.PlaceOrderInput, error) {
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return service.PlaceOrderInput{}, err
	}
	return service.PlaceOrderInput{UserID: middleware.UserID(c), Items: req.Items, Address: req.Address}, nil
}

// Place: POST /api/order/place (cash on delivery)
func (h *OrderHandler) Place(c echo.Context) error {
	in, err := h.input(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	o, err := h.Orders.Place(c.Request().Context(), in)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Order Placed", "orderId": o.ID, "amount": o.Amount})
}

// PlaceRazorpay: POST /api/order/razorpay
func (h *OrderHandler) PlaceRazorpay(c echo.Context) error {
	in, err := h.input(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), gatewayTimeout)
	defer cancel()
	res, err := h.Orders.PlaceGateway(ctx, in)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"orderId": res.Order.ID, "order": res.Payment})
}

// VerifyRazorpay: POST /api/order/verifyRazorpay
func (h *OrderHandler) VerifyRazorpay(c echo.Context) error {
	var req struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), gatewayTimeout)
	defer cancel()
	paid, err := h.Orders.VerifyGateway(ctx, service.VerifyGatewayInput{
		UserID:    middleware.UserID(c),
		OrderID:   strings.TrimSpace(req.OrderID),
		PaymentID: strings.TrimSpace(req.PaymentID),
		Signature: strings.TrimSpace(req.Signature),
	})
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if !paid {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "Payment Failed"})
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Payment Successful"})
}

// PlaceStripe: POST /api/order/stripe
func (h *OrderHandler) PlaceStripe(c echo.Context) error {
	in, err := h.input(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), gatewayTimeout)
	defer cancel()
	res, err := h.Orders.PlaceCard(ctx, in)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"orderId": res.Order.ID, "session_url": res.Payment.CheckoutURL})
}

// VerifyStripe: POST /api/order/verifyStripe
func (h *OrderHandler) VerifyStripe(c echo.Context) error {
	var req struct {
		OrderID string   `json:"orderId"`
		Success flexBool `json:"success"`
	}
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), gatewayTimeout)
	defer cancel()
	paid, err := h.Orders.VerifyCard(ctx, middleware.UserID(c), strings.TrimSpace(req.OrderID), bool(req.Success))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if !paid {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "Payment Failed"})
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Payment Successful"})
}

// UserOrders: POST /api/order/userorders
func (h *OrderHandler) UserOrders(c echo.Context) error {
	list, err := h.Orders.ListForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"orders": list})
}

// List: POST /api/order/list (admin)
func (h *OrderHandler) List(c echo.Context) error {
	list, err := h.Orders.List(c.Request().Context())
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"orders": list})
}

// UpdateStatus: POST /api/order/status (admin)
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.Orders.UpdateStatus(c.Request().Context(), strings.TrimSpace(req.OrderID), req.Status); err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Status Updated"})
}
