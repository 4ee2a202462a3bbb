package model

import "time"

// Tour publication statuses.
const (
    TourPlanned   = "Planned"
    TourPublished = "Published"
)

// Tour is a cataloged, schedulable offering.  Price is per guest in major
// currency units.  0 <= AvailableSeats <= TotalSeats; AvailableSeats only
// decreases through confirmed bookings.
type Tour struct {
    ID             string     `json:"_id"`
    Name           string     `json:"name"`
    Type           string     `json:"type"`
    StartDate      time.Time  `json:"startDate"`
    EndDate        time.Time  `json:"endDate"`
    Price          int64      `json:"price"`
    TotalSeats     int        `json:"totalSeats"`
    AvailableSeats int        `json:"availableSeats"`
    Description    string     `json:"description"`
    Highlights     StringList `json:"highlights"`
    Duration       string     `json:"duration"`
    Image          string     `json:"image"`
    Status         string     `json:"status"`
    CreatedAt      time.Time  `json:"createdAt"`
}

// SoldSeats is the number of seats taken by confirmed bookings.
func (t Tour) SoldSeats() int { return t.TotalSeats - t.AvailableSeats }
