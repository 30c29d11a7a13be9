package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the authorization role embedded in issued tokens.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleKitchen  Role = "kitchen"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleKitchen, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is an account able to sign in.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:",pk,autoincrement"`
	Username  string    `bun:"username,notnull"`
	Email     string    `bun:"email,notnull,unique"`
	Password  string    `bun:"password,notnull"`
	Role      Role      `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Favorite marks a menu item as starred by a user.
type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:f"`

	UserID     int64 `bun:",pk"`
	MenuItemID int64 `bun:",pk"`
}
