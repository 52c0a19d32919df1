package dto

// TokenRes is returned by signup and signin.
type TokenRes struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// MeRes describes the authenticated caller.
type MeRes struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// ErrorRes is the body of every non-2xx response.
type ErrorRes struct {
	Error string `json:"error"`
}
