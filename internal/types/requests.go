package types

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AvatarRequest carries a base64 data URI image.
type AvatarRequest struct {
	Avatar string `json:"avatar"`
}
