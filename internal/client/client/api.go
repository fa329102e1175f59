package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/fleamarket/internal/client/models"
)

// API wraps the auth and user endpoints the session layer needs.
type API struct {
	s Sender
}

func NewAPI(s Sender) *API {
	return &API{s: s}
}

func (a *API) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	return Call[models.AuthResponse](ctx, a.s, Request{Method: http.MethodPost, Path: "/auth/login", Body: req})
}

func (a *API) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	return Call[models.AuthResponse](ctx, a.s, Request{Method: http.MethodPost, Path: "/auth/register", Body: req})
}

func (a *API) Captcha(ctx context.Context) (models.Captcha, error) {
	return Call[models.Captcha](ctx, a.s, Request{Method: http.MethodGet, Path: "/auth/captcha"})
}

func (a *API) GetUserInfo(ctx context.Context) (models.UserInfo, error) {
	return Call[models.UserInfo](ctx, a.s, Request{Method: http.MethodGet, Path: "/user/info"})
}

func (a *API) UpdateUserInfo(ctx context.Context, upd models.ProfileUpdate) error {
	_, err := a.s.Send(ctx, Request{Method: http.MethodPut, Path: "/user/info", Body: upd})
	return err
}

func (a *API) UpdatePassword(ctx context.Context, change models.PasswordChange) error {
	_, err := a.s.Send(ctx, Request{Method: http.MethodPut, Path: "/user/password", Body: change})
	return err
}
