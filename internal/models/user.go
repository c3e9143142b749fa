package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Profile struct {
	UserID       uuid.UUID  `json:"user_id"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Gender       *string    `json:"gender"`
	Place        *string    `json:"place"`
	BatchNumber  int        `json:"batch_number"`
	ReferralCode string     `json:"referral_code"`
	ReferredBy   *uuid.UUID `json:"referred_by"`
	SignupSource *string    `json:"signup_source"`
	IsBlocked    bool       `json:"is_blocked"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type SignupRequest struct {
	Phone           string  `json:"phone" validate:"required"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	FullName        string  `json:"full_name" validate:"notblank"`
	Gender          *string `json:"gender" validate:"omitempty,oneof=male female other"`
	Place           *string `json:"place"`
	SignupSource    *string `json:"signup_source" validate:"omitempty,signup_source"`
	ReferralCode    string  `json:"referral_code"`
}

type LoginRequest struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Phone       string `json:"phone"`
	NewPassword string `json:"new_password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Role         string `json:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type WhitelistEntry struct {
	ID                   uuid.UUID  `json:"id"`
	Email                *string    `json:"email"`
	PhoneNumber          *string    `json:"phone_number"`
	BatchNumber          int        `json:"batch_number"`
	PasswordResetEnabled bool       `json:"password_reset_enabled"`
	AddedBy              *uuid.UUID `json:"added_by,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

type WhitelistRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
	BatchNumber int    `json:"batch_number" validate:"min=0"`
}

type BulkWhitelistRequest struct {
	Entries     string `json:"entries" validate:"notblank"`
	BatchNumber int    `json:"batch_number" validate:"min=0"`
}

type BulkWhitelistResult struct {
	Added   int      `json:"added"`
	Skipped []string `json:"skipped"`
}

type Application struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Place          string    `json:"place"`
	Gender         string    `json:"gender"`
	Age            int       `json:"age"`
	WhatsAppNumber string    `json:"whatsapp_number"`
	ScreenshotURL  *string   `json:"screenshot_url"`
	ReferredByCode *string   `json:"referred_by_code"`
	CreatedAt      time.Time `json:"created_at"`
}

type ApplicationRequest struct {
	FullName       string  `json:"full_name" validate:"notblank"`
	Place          string  `json:"place" validate:"notblank"`
	Gender         string  `json:"gender" validate:"required,oneof=male female other"`
	Age            int     `json:"age" validate:"min=5,max=100"`
	WhatsAppNumber string  `json:"whatsapp_number" validate:"required,min=10"`
	ScreenshotURL  *string `json:"screenshot_url" validate:"omitempty,url"`
	ReferredByCode string  `json:"referred_by_code"`
}
