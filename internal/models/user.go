package models

import (
	"encoding/json"
	"time"
)

// OTP verification states for a user account.
const (
	OTPStatusPending  = "pending"
	OTPStatusVerified = "verified"
)

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never leaves the service
	Role         string `json:"role"`

	// verification state: OTP is set only while status is pending
	OTP             string     `json:"-"`
	OTPExpiresAt    *time.Time `json:"-"`
	OTPVerifyStatus string     `json:"-"`

	// bookkeeping, not part of any response payload
	RememberToken *string    `json:"-"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
	DeletedAt     *time.Time `json:"-"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4"`
}

// OTP is a json.Number so clients may send the code either as a string
// or as a bare number; comparison is done on the string form.
type VerifyEmailRequest struct {
	Email string      `json:"email" binding:"required,email"`
	OTP   json.Number `json:"otp" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ForgotPasswordChangeRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4"`
}

type EditProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=4"`
}
