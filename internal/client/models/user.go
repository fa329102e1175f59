// Package models defines the JSON bodies exchanged with the marketplace
// backend by the auth and user endpoints.
package models

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Captcha    string `json:"captcha"`
	CaptchaKey string `json:"captchaKey"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Nickname   string `json:"nickname"`
	Email      string `json:"email"`
	Captcha    string `json:"captcha"`
	CaptchaKey string `json:"captchaKey"`
}

// AuthResponse is the data returned by login and register.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   ID     `json:"userId"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
}

// Captcha is a challenge from GET /auth/captcha. Image is usually a
// base64 data URL.
type Captcha struct {
	Key   string `json:"captchaKey"`
	Image string `json:"captchaImage"`
}

// CaptchaAnswer pairs a challenge key with the user's answer.
type CaptchaAnswer struct {
	Key  string
	Code string
}

// UserInfo is the data of GET /user/info.
type UserInfo struct {
	UserID   ID     `json:"userId"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio"`
}

// ProfileUpdate is the body of PUT /user/info. Nil fields are not sent.
type ProfileUpdate struct {
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// PasswordChange is the body of PUT /user/password.
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
