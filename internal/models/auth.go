package models

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest holds the payload for first-time registration. The role is
// inferred from the email, never supplied by the client.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse returns the issued bearer token. Both login and registration
// answer with the same shape.
type TokenResponse struct {
	Token string `json:"token"`
}
