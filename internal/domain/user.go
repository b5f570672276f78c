package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Password     string      `json:"-"` // never expose the hash
	Role         Role        `json:"role"`
	IsVerified   bool        `json:"is_verified"`
	OtpCode      null.String `json:"-"`
	OtpExpiresAt null.Time   `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Actor is the authenticated identity extracted from a verified token.
type Actor struct {
	ID   int
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type RegisterUserDTO struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type VerifyOtpDTO struct {
	UserID  int    `json:"userId" binding:"required"`
	OtpCode string `json:"otpCode" binding:"required,len=6"`
}

type ResendOtpDTO struct {
	UserID int `json:"userId" binding:"required"`
}

type LoginUserDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// PublicUser is the subset of User returned by profile and listing endpoints.
type PublicUser struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsVerified: u.IsVerified}
}

type UpdateProfileDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=6,max=100"`
}
