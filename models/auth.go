package models

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest представляет тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse представляет тело ответа при успешной регистрации или входе.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// ProfileUpdateRequest - частичное обновление профиля.
// nil-поля не меняются.
type ProfileUpdateRequest struct {
	Name            *string      `json:"name,omitempty"`
	Preferences     *Preferences `json:"preferences,omitempty"`
	CurrentPassword *string      `json:"currentPassword,omitempty"`
	NewPassword     *string      `json:"newPassword,omitempty"`
}
