package model

import (
    "database/sql/driver"
    "encoding/json"
    "errors"
)

// SizeQuantities maps a size label (S, M, XL...) to a quantity.
type SizeQuantities map[string]int

// Cart maps a product identifier to the quantities ordered per size.  Both
// levels are keyed uniquely; a size with quantity zero is removed, and a
// product with no sizes left is removed as well.
type Cart map[string]SizeQuantities

// Add increases the quantity of productID/size by qty.
func (c Cart) Add(productID, size string, qty int) {
    c.Set(productID, size, c.Quantity(productID, size)+qty)
}

// Set overwrites the quantity of productID/size.  qty <= 0 removes the entry.
func (c Cart) Set(productID, size string, qty int) {
    if qty <= 0 {
        if sizes, ok := c[productID]; ok {
            delete(sizes, size)
            if len(sizes) == 0 {
                delete(c, productID)
            }
        }
        return
    }
    sizes, ok := c[productID]
    if !ok {
        sizes = SizeQuantities{}
        c[productID] = sizes
    }
    sizes[size] = qty
}

// Quantity returns the quantity of productID/size, zero when absent.
func (c Cart) Quantity(productID, size string) int {
    return c[productID][size]
}

// Count returns the total number of units in the cart.
func (c Cart) Count() int {
    n := 0
    for _, sizes := range c {
        for _, q := range sizes {
            n += q
        }
    }
    return n
}

// Value stores the cart as a JSON object.
func (c Cart) Value() (driver.Value, error) {
    if c == nil {
        return []byte("{}"), nil
    }
    return json.Marshal(c)
}

// Scan reads a JSON object column; NULL yields an empty cart.
func (c *Cart) Scan(src any) error {
    out := Cart{}
    switch v := src.(type) {
    case nil:
    case []byte:
        if len(v) > 0 {
            if err := json.Unmarshal(v, &out); err != nil {
                return err
            }
        }
    case string:
        if v != "" {
            if err := json.Unmarshal([]byte(v), &out); err != nil {
                return err
            }
        }
    default:
        return errors.New("cart: unsupported column type")
    }
    out.prune()
    *c = out
    return nil
}

func (c Cart) prune() {
    for pid, sizes := range c {
        for size, q := range sizes {
            if q <= 0 {
                delete(sizes, size)
            }
        }
        if len(sizes) == 0 {
            delete(c, pid)
        }
    }
}
