package model

import (
    "testing"
    "time"
)

func TestCartAddSet(t *testing.T) {
    c := Cart{}
    c.Add("p1", "M", 1)
    c.Add("p1", "M", 2)
    c.Add("p1", "L", 1)
    if got := c.Quantity("p1", "M"); got != 3 {
        t.Fatalf("expected 3, got %d", got)
    }
    if c.Count() != 4 {
        t.Fatalf("expected 4 units, got %d", c.Count())
    }

    c.Set("p1", "M", 0)
    c.Set("p1", "L", 0)
    if _, ok := c["p1"]; ok {
        t.Fatalf("product with no sizes left should be removed")
    }
}

func TestCartScanPrunesZeroes(t *testing.T) {
    var c Cart
    if err := c.Scan([]byte(`{"p1":{"S":0,"M":2},"p2":{"L":0}}`)); err != nil {
        t.Fatal(err)
    }
    if len(c) != 1 || c.Quantity("p1", "M") != 2 {
        t.Fatalf("unexpected cart %v", c)
    }
    if err := c.Scan(nil); err != nil || c == nil || len(c) != 0 {
        t.Fatalf("NULL should give an empty cart, got %v %v", c, err)
    }
    if err := c.Scan(42); err == nil {
        t.Fatalf("expected error for int column")
    }
}

func TestTourSoldSeats(t *testing.T) {
    tour := Tour{TotalSeats: 20, AvailableSeats: 14, StartDate: time.Now()}
    if tour.SoldSeats() != 6 {
        t.Fatalf("expected 6 sold, got %d", tour.SoldSeats())
    }
}
