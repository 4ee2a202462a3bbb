package model

import "time"

// Publication is an article or press item shown on the site.
type Publication struct {
    ID          string    `json:"_id"`
    Title       string    `json:"title"`
    Description string    `json:"description"`
    Author      string    `json:"author"`
    Image       string    `json:"image"`
    CreatedAt   time.Time `json:"createdAt"`
}

// Story is a traveller story with an optional cover image.
type Story struct {
    ID        string    `json:"_id"`
    Title     string    `json:"title"`
    Content   string    `json:"content"`
    Author    string    `json:"author"`
    Location  string    `json:"location"`
    Image     string    `json:"image"`
    CreatedAt time.Time `json:"createdAt"`
}

// Contact is a message left through the public contact form.
type Contact struct {
    ID        string    `json:"_id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    Phone     string    `json:"phone"`
    Subject   string    `json:"subject"`
    Message   string    `json:"message"`
    CreatedAt time.Time `json:"createdAt"`
}
