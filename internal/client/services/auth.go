// Package services contains application services for the fleamarket client.
// This file defines the authentication service: the only writer of the
// session and of the persisted credential.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fleamarket/internal/client/client"
	"github.com/dmitrijs2005/fleamarket/internal/client/credential"
	"github.com/dmitrijs2005/fleamarket/internal/client/models"
	"github.com/dmitrijs2005/fleamarket/internal/client/notify"
	"github.com/dmitrijs2005/fleamarket/internal/client/router"
	"github.com/dmitrijs2005/fleamarket/internal/client/session"
	"github.com/dmitrijs2005/fleamarket/internal/common"
	"github.com/dmitrijs2005/fleamarket/internal/logging"
)

// DefaultLogoutDelay lets the password-change confirmation be read before
// the client returns to the login screen.
const DefaultLogoutDelay = 1500 * time.Millisecond

// MessagePasswordChanged is shown after a successful password change.
const MessagePasswordChanged = "password changed, please log in again"

// CredentialStore persists the credential across restarts.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Remove(ctx context.Context) error
	LoadProfile(ctx context.Context) (credential.ProfileSummary, error)
	SaveProfile(ctx context.Context, p credential.ProfileSummary) error
}

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(ctx context.Context, target string) (router.Decision, error)
}

// LoginInput is what the user types on the login screen.
type LoginInput struct {
	Username string
	Password []byte
	Captcha  models.CaptchaAnswer
}

// RegisterInput is what the user types on the register screen.
type RegisterInput struct {
	Username string
	Password []byte
	Nickname string
	Email    string
	Captcha  models.CaptchaAnswer
}

// AuthService defines the session operations of the CLI.
//
// Contract:
//   - Restore: rebuild the session from the persisted credential at startup.
//   - Login/Register: authenticate, persist the credential, establish the session.
//   - RefreshProfile/UpdateProfile: keep the cached profile in sync with the server.
//   - ChangePassword: change the password, then log out.
//   - Logout: clear everything and go to the login route. Idempotent.
//   - OnFailure: dispatcher observer tearing the session down on code 401.
type AuthService interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, in LoginInput) (session.Snapshot, error)
	Register(ctx context.Context, in RegisterInput) (session.Snapshot, error)
	Captcha(ctx context.Context) (models.Captcha, error)
	RefreshProfile(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd session.ProfileUpdate) error
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
	Logout(ctx context.Context) error
	OnFailure(ctx context.Context, f *client.Failure)
}

type authService struct {
	api         API
	store       CredentialStore
	session     *session.Session
	nav         Navigator
	notifier    notify.Notifier
	log         logging.Logger
	logoutDelay time.Duration
}

type Option func(*authService)

func WithNotifier(n notify.Notifier) Option {
	return func(a *authService) { a.notifier = n }
}

func WithLogger(l logging.Logger) Option {
	return func(a *authService) { a.log = l }
}

// WithLogoutDelay sets the pause between a password change and the logout.
// Zero logs out immediately.
func WithLogoutDelay(d time.Duration) Option {
	return func(a *authService) { a.logoutDelay = d }
}

// NewAuthService binds the service to its collaborators. The service
// becomes the single writer of sess.
func NewAuthService(api API, store CredentialStore, sess *session.Session, nav Navigator, opts ...Option) AuthService {
	a := &authService{
		api:         api,
		store:       store,
		session:     sess,
		nav:         nav,
		notifier:    notify.Discard,
		log:         logging.Nop(),
		logoutDelay: DefaultLogoutDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Restore loads the persisted credential. A credential whose claims cannot
// be decoded is dropped with a silent logout. Profile refresh failures are
// logged only.
func (a *authService) Restore(ctx context.Context) error {
	token, err := a.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if token == "" {
		return nil
	}

	id, err := session.DecodeClaims(token)
	if err != nil {
		a.log.Info(ctx, "stored credential unreadable, logging out", "error", err)
		return a.Logout(ctx)
	}

	summary, err := a.store.LoadProfile(ctx)
	if err != nil {
		a.log.Warn(ctx, "cached profile unavailable", "error", err)
	}
	if err := a.session.Establish(token, id, profileFromSummary(summary)); err != nil {
		return a.Logout(ctx)
	}

	if err := a.RefreshProfile(ctx); err != nil {
		a.log.Warn(ctx, "profile refresh failed", "error", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, in LoginInput) (session.Snapshot, error) {
	if in.Username == "" || len(in.Password) == 0 {
		return session.Snapshot{}, common.ErrorEmptyInput
	}

	resp, err := a.api.Login(ctx, models.LoginRequest{
		Username:   in.Username,
		Password:   string(in.Password),
		Captcha:    in.Captcha.Code,
		CaptchaKey: in.Captcha.Key,
	})
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("login error: %w", err)
	}
	return a.establish(ctx, resp)
}

func (a *authService) Register(ctx context.Context, in RegisterInput) (session.Snapshot, error) {
	if in.Username == "" || len(in.Password) == 0 {
		return session.Snapshot{}, common.ErrorEmptyInput
	}

	resp, err := a.api.Register(ctx, models.RegisterRequest{
		Username:   in.Username,
		Password:   string(in.Password),
		Nickname:   in.Nickname,
		Email:      in.Email,
		Captcha:    in.Captcha.Code,
		CaptchaKey: in.Captcha.Key,
	})
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("register error: %w", err)
	}
	return a.establish(ctx, resp)
}

// establish decodes, persists and installs the credential from resp. The
// session is untouched if any step fails.
func (a *authService) establish(ctx context.Context, resp models.AuthResponse) (session.Snapshot, error) {
	id, err := session.DecodeClaims(resp.Token)
	if err != nil {
		return session.Snapshot{}, err
	}

	profile := session.Profile{Username: resp.Username, Nickname: resp.Nickname, Avatar: resp.Avatar}
	if err := a.store.Save(ctx, resp.Token); err != nil {
		return session.Snapshot{}, fmt.Errorf("credential saving error: %w", err)
	}
	if err := a.store.SaveProfile(ctx, summaryFromProfile(profile)); err != nil {
		a.log.Warn(ctx, "profile summary not cached", "error", err)
	}
	if err := a.session.Establish(resp.Token, id, profile); err != nil {
		return session.Snapshot{}, err
	}

	a.log.Info(ctx, "session established", "user_id", id.UserID, "role", id.Role)
	return a.session.Snapshot(), nil
}

func (a *authService) Captcha(ctx context.Context) (models.Captcha, error) {
	return a.api.Captcha(ctx)
}

// RefreshProfile fetches the profile. Non-empty username, nickname and
// avatar from the server replace the local ones; email, phone and bio are
// always overwritten.
func (a *authService) RefreshProfile(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		return nil
	}

	info, err := a.api.GetUserInfo(ctx)
	if err != nil {
		return fmt.Errorf("get user info error: %w", err)
	}
	// Logged out while the request was in flight.
	if !a.session.IsAuthenticated() {
		return nil
	}

	cur := a.session.Profile()
	p := session.Profile{
		Username: common.FirstNonEmpty(info.Username, cur.Username),
		Nickname: common.FirstNonEmpty(info.Nickname, cur.Nickname),
		Avatar:   common.FirstNonEmpty(info.Avatar, cur.Avatar),
		Email:    info.Email,
		Phone:    info.Phone,
		Bio:      info.Bio,
	}
	a.session.ReplaceProfile(p)
	return a.store.SaveProfile(ctx, summaryFromProfile(p))
}

func (a *authService) UpdateProfile(ctx context.Context, upd session.ProfileUpdate) error {
	if !a.session.IsAuthenticated() {
		return common.ErrNotLoggedIn
	}
	if upd.Empty() {
		return common.ErrorEmptyInput
	}

	if err := a.api.UpdateUserInfo(ctx, models.ProfileUpdate(upd)); err != nil {
		return fmt.Errorf("update user info error: %w", err)
	}
	p := a.session.MergeProfile(upd)
	return a.store.SaveProfile(ctx, summaryFromProfile(p))
}

// ChangePassword logs out after success. Cancelling ctx during the delay
// logs out at once.
func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	if !a.session.IsAuthenticated() {
		return common.ErrNotLoggedIn
	}
	if len(oldPassword) == 0 || len(newPassword) == 0 {
		return common.ErrorEmptyInput
	}

	err := a.api.UpdatePassword(ctx, models.PasswordChange{
		OldPassword: string(oldPassword),
		NewPassword: string(newPassword),
	})
	if err != nil {
		return fmt.Errorf("update password error: %w", err)
	}

	a.notifier.Notify(ctx, notify.Success, MessagePasswordChanged)
	if a.logoutDelay > 0 {
		t := time.NewTimer(a.logoutDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	return a.Logout(context.WithoutCancel(ctx))
}

// Logout clears the session and the persisted credential, then navigates
// to the login route.
func (a *authService) Logout(ctx context.Context) error {
	a.session.Clear()

	var errs []error
	if err := a.store.Remove(ctx); err != nil {
		errs = append(errs, fmt.Errorf("remove credential: %w", err))
	}
	if _, err := a.nav.Navigate(ctx, router.LoginPath); err != nil {
		errs = append(errs, fmt.Errorf("navigate to login: %w", err))
	}
	return errors.Join(errs...)
}

// OnFailure reacts to code 401 only.
func (a *authService) OnFailure(ctx context.Context, f *client.Failure) {
	if f == nil || f.Kind != client.KindUnauthorized {
		return
	}
	a.log.Info(ctx, "credential rejected by server, logging out", "message", f.Message)
	if err := a.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout after 401 failed", "error", err)
	}
}

func profileFromSummary(s credential.ProfileSummary) session.Profile {
	return session.Profile{Username: s.Username, Nickname: s.Nickname, Avatar: s.Avatar}
}

func summaryFromProfile(p session.Profile) credential.ProfileSummary {
	return credential.ProfileSummary{Username: p.Username, Nickname: p.Nickname, Avatar: p.Avatar}
}
