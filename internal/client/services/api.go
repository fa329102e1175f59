package services

//go:generate mockgen -source=api.go -destination=mocks/mocks.go -package=mocks API

import (
	"context"

	"github.com/dmitrijs2005/fleamarket/internal/client/models"
)

// API is the subset of backend endpoints the service calls.
type API interface {
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error)
	Captcha(ctx context.Context) (models.Captcha, error)
	GetUserInfo(ctx context.Context) (models.UserInfo, error)
	UpdateUserInfo(ctx context.Context, upd models.ProfileUpdate) error
	UpdatePassword(ctx context.Context, change models.PasswordChange) error
}
