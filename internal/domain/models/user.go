package models

import "time"

// User представляет зарегистрированного покупателя магазина
type User struct {
	ID        int64     `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	Phone     *string   `json:"phone,omitempty"`
	UserType  string    `json:"user_type"`
	IsActive  bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
