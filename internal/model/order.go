package model

import (
    "database/sql/driver"
    "encoding/json"
    "time"
)

// Payment methods accepted at checkout.
const (
    PaymentCOD      = "COD"
    PaymentRazorpay = "Razorpay"
    PaymentStripe   = "Stripe"
)

// OrderStatusPlaced is the initial status of every order.  Later statuses are
// free text set by an administrator (Packing, Shipped, Delivered...).
const OrderStatusPlaced = "Order Placed"

// OrderItem snapshots a product line at checkout time.
type OrderItem struct {
    ProductID string `json:"productId"`
    Name      string `json:"name"`
    Size      string `json:"size"`
    Quantity  int    `json:"quantity"`
    Price     int64  `json:"price"`
    Image     string `json:"image,omitempty"`
}

// OrderItems is stored as a JSON array column.
type OrderItems []OrderItem

func (it OrderItems) Value() (driver.Value, error) {
    if it == nil {
        return []byte("[]"), nil
    }
    return json.Marshal(it)
}

func (it *OrderItems) Scan(src any) error { return scanJSON(src, it) }

// Address is the shipping address, stored as a JSON object column.
type Address struct {
    FirstName string `json:"firstName"`
    LastName  string `json:"lastName"`
    Email     string `json:"email"`
    Street    string `json:"street"`
    City      string `json:"city"`
    State     string `json:"state"`
    Zipcode   string `json:"zipcode"`
    Country   string `json:"country"`
    Phone     string `json:"phone"`
}

func (a Address) Value() (driver.Value, error) { return json.Marshal(a) }

func (a *Address) Scan(src any) error { return scanJSON(src, a) }

// Order is a cart checkout.  Amount is in major currency units and includes
// the delivery fee.  GatewayRef holds the Razorpay order id or the Stripe
// checkout session id depending on PaymentMethod.
type Order struct {
    ID            string     `json:"_id"`
    UserID        string     `json:"userId"`
    Items         OrderItems `json:"items"`
    Amount        int64      `json:"amount"`
    Address       Address    `json:"address"`
    PaymentMethod string     `json:"paymentMethod"`
    Payment       bool       `json:"payment"`
    GatewayRef    string     `json:"gatewayRef,omitempty"`
    Status        string     `json:"status"`
    CreatedAt     time.Time  `json:"date"`
}
