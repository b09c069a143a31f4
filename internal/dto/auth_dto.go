package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse carries a token pair. When the account still has a temporary
// password, PasswordChangeRequired is true, AccessToken is scoped to the
// password-change endpoint only and no refresh token is issued.
type AuthResponse struct {
	AccessToken            string       `json:"access_token"`
	RefreshToken           string       `json:"refresh_token,omitempty"`
	PasswordChangeRequired bool         `json:"password_change_required,omitempty"`
	User                   UserResponse `json:"user"`
}
