package dto

// LoginRequest payload for session login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest starts a reset flow.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm completes a reset flow.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest changes the password of the authenticated member.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
