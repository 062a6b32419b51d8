// Package entity defines the JSON bodies exchanged by the HTTP API.
package entity

import (
	"time"

	"github.com/authsvc/auth-service/database/model"
)

// ErrorItem is one entry of an error response. Path and Location are set
// for request field errors and empty otherwise.
type ErrorItem struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Errors []ErrorItem `json:"errors"`
}

type IDResponse struct {
	Id int `json:"id"`
}

// User is the public view of a user; it never carries the password hash.
type User struct {
	Id        int        `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewUser(u *model.User) User {
	return User{
		Id:        u.Id,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type UserList struct {
	Users  []User `json:"users"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type Health struct {
	Ok      bool   `json:"ok"`
	Version string `json:"version"`
}
