package model

import (
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
)

// DefaultRole is assigned to every self-registered user.
const DefaultRole = RoleCustomer

type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName string    `json:"firstName" gorm:"not null"`
	LastName  string    `json:"lastName" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      Role      `json:"role" gorm:"not null;default:customer"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RefreshToken is the server-side record of an issued refresh token.
// Its Id is the token's jti claim.
type RefreshToken struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int       `json:"userId" gorm:"index;not null"`
	User      *User     `json:"-" gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&RefreshToken{},
	}
}
