package models

// TokenResponse is the Upstox authorization-code exchange payload. Only the
// token fields matter here; the profile fields come along for logging.
type TokenResponse struct {
	Email       string `json:"email"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Broker      string `json:"broker"`
	IsActive    bool   `json:"is_active"`
	AccessToken string `json:"access_token"`
}
