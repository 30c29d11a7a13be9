package dto

import "github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"

// UserResponse is a user account without credentials.
type UserResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     entity.Role `json:"role"`
}

// LoginResponse carries an issued access token.
type LoginResponse struct {
	Token string      `json:"token"`
	Role  entity.Role `json:"role"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// FromUser converts a user account.
func FromUser(u *entity.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// FromUsers converts a listing, keeping its order.
func FromUsers(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}
