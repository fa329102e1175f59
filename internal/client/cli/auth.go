package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/fleamarket/internal/client/models"
	"github.com/dmitrijs2005/fleamarket/internal/client/router"
	"github.com/dmitrijs2005/fleamarket/internal/client/services"
	"github.com/dmitrijs2005/fleamarket/internal/common"
)

// askCaptcha fetches a challenge, shows where its image was saved and reads
// the answer.
func (a *App) askCaptcha(ctx context.Context) (models.CaptchaAnswer, error) {
	c, err := a.authService.Captcha(ctx)
	if err != nil {
		return models.CaptchaAnswer{}, err
	}
	if c.Key == "" {
		return models.CaptchaAnswer{}, nil
	}

	where, err := saveCaptcha(c.Image)
	if err != nil {
		return models.CaptchaAnswer{}, err
	}
	printlnFn("Captcha image:", where)

	code, err := getSimpleText(a.reader, "Enter captcha", a.out)
	if err != nil {
		return models.CaptchaAnswer{}, err
	}
	return models.CaptchaAnswer{Key: c.Key, Code: code}, nil
}

// Register prompts for the account fields and creates the account. On
// success the new session is active.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	nickname, err := getSimpleText(a.reader, "Enter nickname (optional)", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", a.out)
	if err != nil {
		return err
	}
	captcha, err := a.askCaptcha(ctx)
	if err != nil {
		return err
	}

	snap, err := a.authService.Register(ctx, services.RegisterInput{
		Username: userName,
		Password: password,
		Nickname: nickname,
		Email:    email,
		Captcha:  captcha,
	})
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", common.FirstNonEmpty(snap.Profile.Nickname, snap.Profile.Username)))
	return a.leaveAuthScreen(ctx)
}

// Login prompts for credentials. On success the shell continues to the
// location that sent the user to the login route, or home.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	captcha, err := a.askCaptcha(ctx)
	if err != nil {
		return err
	}

	snap, err := a.authService.Login(ctx, services.LoginInput{
		Username: userName,
		Password: password,
		Captcha:  captcha,
	})
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Logged in as %s (%s)", common.FirstNonEmpty(snap.Profile.Username, snap.Identity.UserID), snap.Identity.Role))
	return a.leaveAuthScreen(ctx)
}

// leaveAuthScreen moves off the login or register route to its ?redirect=
// target, or home. Other locations are kept.
func (a *App) leaveAuthScreen(ctx context.Context) error {
	path := a.nav.CurrentMatch().Location.Path
	if path != router.LoginPath && path != router.RegisterPath {
		return nil
	}
	_, err := a.nav.Navigate(ctx, router.RedirectTarget(a.nav.Current()))
	return err
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}

// ChangePassword asks for the old password and the new one twice. A
// successful change ends the session.
func (a *App) ChangePassword(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotLoggedIn
	}

	oldPassword, err := getPassword("Enter current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	confirm, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(newPassword, confirm) {
		printlnFn("Passwords do not match.")
		return nil
	}
	return a.authService.ChangePassword(ctx, oldPassword, newPassword)
}
