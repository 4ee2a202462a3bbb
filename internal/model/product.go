package model

import "time"

// Product is a catalog item.  Price is in major currency units.
type Product struct {
    ID          string     `json:"_id"`
    Name        string     `json:"name"`
    Description string     `json:"description"`
    Price       int64      `json:"price"`
    Images      StringList `json:"image"`
    Category    string     `json:"category"`
    SubCategory string     `json:"subCategory"`
    Sizes       StringList `json:"sizes"`
    Bestseller  bool       `json:"bestseller"`
    CreatedAt   time.Time  `json:"date"`
}

// HasSize reports whether size is offered.  Products without sizes accept any.
func (p Product) HasSize(size string) bool {
    if len(p.Sizes) == 0 {
        return true
    }
    for _, s := range p.Sizes {
        if s == size {
            return true
        }
    }
    return false
}
