package types

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// ErrorResponse is the body of every failed request. Field names the
// offending input for validation failures.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Page is a paginated list response.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
