package model

import "time"

// Roles gate the administrative endpoints.  master_admin is never stored;
// it is carried only by the token minted from the configured credentials.
const (
    RoleUser        = "user"
    RoleAdmin       = "admin"
    RoleMasterAdmin = "master_admin"
)

// User represents an account as stored in the `users` table, including the
// embedded shopping cart.
//
// Fields:
//  ID           – UUID primary key.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password, never serialized.
//  Role         – one of RoleUser, RoleAdmin.
//  Cart         – product → size → quantity.
type User struct {
    ID           string    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    Cart         Cart      `json:"cartData"`
    CreatedAt    time.Time `json:"createdAt"`
    UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether role may use the admin endpoints.
func IsAdmin(role string) bool {
    return role == RoleAdmin || role == RoleMasterAdmin
}
