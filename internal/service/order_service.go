package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/payment"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
)

type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByGatewayRef(ctx context.Context, ref string) (*model.Order, error)
	SetGatewayRef(ctx context.Context, id, ref string) error
	MarkPaid(ctx context.Context, id string) (bool, error)
	DeleteUnpaid(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context) ([]model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
}

type ProductReader interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

type CartStore interface {
	GetCart(ctx context.Context, userID string) (model.Cart, error)
	SaveCart(ctx context.Context, userID string, cart model.Cart) error
	ClearCart(ctx context.Context, userID string) error
}

// OrderService runs cart checkout: cash on delivery, a Razorpay order, or a
// Stripe checkout session.  Either gateway may be nil when not configured.
type OrderService struct {
	Orders   OrderStore
	Products ProductReader
	Carts    CartStore
	Razorpay payment.Gateway
	Stripe   payment.Gateway
	Log      *zap.Logger

	Currency      string
	DeliveryFee   int64
	SigningSecret string
}

type OrderLine struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderInput struct {
	UserID  string
	Items   []OrderLine
	Address model.Address
}

type PlaceOrderResult struct {
	Order   *model.Order   `json:"order"`
	Payment *payment.Order `json:"payment,omitempty"`
}

// build snapshots product prices into order lines.  Without explicit lines
// the user's cart is checked out.
func (s *OrderService) build(ctx context.Context, in PlaceOrderInput, method string) (*model.Order, error) {
	if in.UserID == "" {
		return nil, fail(ErrUnauthorized, "not authorized")
	}
	lines := in.Items
	if len(lines) == 0 {
		cart, err := s.Carts.GetCart(ctx, in.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		for pid, sizes := range cart {
			for size, qty := range sizes {
				lines = append(lines, OrderLine{ProductID: pid, Size: size, Quantity: qty})
			}
		}
	}
	if len(lines) == 0 {
		return nil, fail(ErrValidation, "cart is empty")
	}
	if strings.TrimSpace(in.Address.Street) == "" || strings.TrimSpace(in.Address.City) == "" {
		return nil, fail(ErrValidation, "delivery address is incomplete")
	}

	items := make(model.OrderItems, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fail(ErrValidation, "quantity must be at least 1")
		}
		p, err := s.Products.GetByID(ctx, l.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrValidation, "unknown product %s", l.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if !p.HasSize(l.Size) {
			return nil, fail(ErrValidation, "size %s is not offered for %s", l.Size, p.Name)
		}
		item := model.OrderItem{ProductID: p.ID, Name: p.Name, Size: l.Size, Quantity: l.Quantity, Price: p.Price}
		if len(p.Images) > 0 {
			item.Image = p.Images[0]
		}
		items = append(items, item)
	}

	total, err := OrderTotal(items, s.DeliveryFee)
	if err != nil {
		return nil, wrap(ErrValidation, err, "order total is too large")
	}
	if err := chargeable(total); err != nil {
		return nil, err
	}
	return &model.Order{
		UserID:        in.UserID,
		Items:         items,
		Amount:        total,
		Address:       in.Address,
		PaymentMethod: method,
		Status:        model.OrderStatusPlaced,
	}, nil
}

// Place stores a cash-on-delivery order and clears the cart.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	o, err := s.build(ctx, in, model.PaymentCOD)
	if err != nil {
		return nil, err
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	s.clearCart(ctx, o.UserID)
	return o, nil
}

// PlaceGateway stores an unpaid order and opens a Razorpay order for it.
func (s *OrderService) PlaceGateway(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	return s.placeRemote(ctx, in, model.PaymentRazorpay, s.Razorpay)
}

// PlaceCard stores an unpaid order and opens a Stripe checkout session whose
// URL the buyer is sent to.
func (s *OrderService) PlaceCard(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	return s.placeRemote(ctx, in, model.PaymentStripe, s.Stripe)
}

func (s *OrderService) placeRemote(ctx context.Context, in PlaceOrderInput, method string, gw payment.Gateway) (*PlaceOrderResult, error) {
	if gw == nil {
		return nil, fail(ErrGateway, "%s payments are not available", method)
	}
	o, err := s.build(ctx, in, method)
	if err != nil {
		return nil, err
	}
	amountMinor, err := payment.ToMinor(o.Amount)
	if err != nil {
		return nil, wrap(ErrValidation, err, "order total is too large")
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	po, err := gw.CreateOrder(ctx, amountMinor, s.Currency, o.ID)
	if err != nil {
		s.Log.Error("order gateway call failed", zap.String("order_id", o.ID), zap.String("method", method), zap.Error(err))
		if delErr := s.Orders.DeleteUnpaid(ctx, o.ID); delErr != nil {
			s.Log.Warn("could not remove unpaid order", zap.String("order_id", o.ID), zap.Error(delErr))
		}
		return nil, wrap(ErrGateway, err, "could not create payment order")
	}
	if err := s.Orders.SetGatewayRef(ctx, o.ID, po.ID); err != nil {
		return nil, err
	}
	o.GatewayRef = po.ID
	return &PlaceOrderResult{Order: o, Payment: &po}, nil
}

type VerifyGatewayInput struct {
	UserID    string
	OrderID   string // Razorpay order id
	PaymentID string
	Signature string
}

// VerifyGateway confirms a Razorpay order.  It reports whether the order is
// paid; a paid confirmation clears the buyer's cart.
func (s *OrderService) VerifyGateway(ctx context.Context, in VerifyGatewayInput) (bool, error) {
	if s.Razorpay == nil {
		return false, fail(ErrGateway, "Razorpay payments are not available")
	}
	if in.OrderID == "" {
		return false, fail(ErrValidation, "razorpay_order_id is required")
	}
	if in.Signature != "" && s.SigningSecret != "" &&
		!payment.VerifySignature(in.OrderID, in.PaymentID, in.Signature, s.SigningSecret) {
		return false, fail(ErrUnauthorized, "invalid payment signature")
	}
	o, err := s.Orders.GetByGatewayRef(ctx, in.OrderID)
	if err == nil && ((in.UserID != "" && o.UserID != in.UserID) || o.PaymentMethod != model.PaymentRazorpay) {
		err = repository.ErrNotFound
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, fail(ErrNotFound, "order not found")
	}
	if err != nil {
		return false, err
	}
	if o.Payment {
		return true, nil
	}
	status, err := s.Razorpay.FetchStatus(ctx, in.OrderID)
	if err != nil {
		return false, wrap(ErrGateway, err, "could not fetch payment status")
	}
	if status != payment.StatusPaid {
		return false, nil
	}
	return s.markPaid(ctx, o)
}

// VerifyCard handles the return from a Stripe checkout.  Only Stripe orders
// are accepted.  success=false deletes the unpaid order.  success=true is
// checked against the session before the order is marked paid.
func (s *OrderService) VerifyCard(ctx context.Context, userID, orderID string, success bool) (bool, error) {
	if orderID == "" {
		return false, fail(ErrValidation, "orderId is required")
	}
	o, err := s.Orders.GetByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && userID != "" && o.UserID != userID) {
		return false, fail(ErrNotFound, "order not found")
	}
	if err != nil {
		return false, err
	}
	if o.PaymentMethod != model.PaymentStripe {
		return false, fail(ErrValidation, "order was not placed for card payment")
	}
	if !success {
		err := s.Orders.DeleteUnpaid(ctx, o.ID)
		switch {
		case errors.Is(err, repository.ErrConflict):
			return false, fail(ErrConflict, "order is already paid")
		case errors.Is(err, repository.ErrNotFound):
			return false, fail(ErrNotFound, "order not found")
		case err != nil:
			return false, err
		}
		return false, nil
	}
	if o.Payment {
		return true, nil
	}
	if s.Stripe == nil {
		return false, fail(ErrGateway, "Stripe payments are not available")
	}
	if o.GatewayRef == "" {
		return false, nil
	}
	status, err := s.Stripe.FetchStatus(ctx, o.GatewayRef)
	if err != nil {
		return false, wrap(ErrGateway, err, "could not fetch payment status")
	}
	if status != payment.StatusPaid {
		return false, nil
	}
	return s.markPaid(ctx, o)
}

func (s *OrderService) markPaid(ctx context.Context, o *model.Order) (bool, error) {
	first, err := s.Orders.MarkPaid(ctx, o.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, fail(ErrNotFound, "order not found")
	}
	if err != nil {
		return false, err
	}
	if first {
		o.Payment = true
		s.Log.Info("order paid", zap.String("order_id", o.ID), zap.Int64("amount", o.Amount))
		s.clearCart(ctx, o.UserID)
	}
	return true, nil
}

func (s *OrderService) clearCart(ctx context.Context, userID string) {
	if err := s.Carts.ClearCart(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.Log.Warn("cart not cleared", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	return s.Orders.List(ctx)
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, fail(ErrUnauthorized, "not authorized")
	}
	return s.Orders.ListByUser(ctx, userID)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) error {
	if id == "" || strings.TrimSpace(status) == "" {
		return fail(ErrValidation, "orderId and status are required")
	}
	err := s.Orders.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "order not found")
	}
	return err
}
