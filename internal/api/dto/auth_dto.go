package dto

import "time"

// StudentRegisterRequest payload.
type StudentRegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"roll_number"`
	Branch     string `json:"branch"`
	Semester   int    `json:"semester"`
	Password   string `json:"password"`
}

// StudentLoginRequest payload.
type StudentLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
