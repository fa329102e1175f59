package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fleamarket/internal/client/client"
	"github.com/dmitrijs2005/fleamarket/internal/client/credential"
	"github.com/dmitrijs2005/fleamarket/internal/client/models"
	"github.com/dmitrijs2005/fleamarket/internal/client/notify"
	"github.com/dmitrijs2005/fleamarket/internal/client/router"
	"github.com/dmitrijs2005/fleamarket/internal/client/session"
	"github.com/dmitrijs2005/fleamarket/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func modelsAuth(token, username, nickname, avatar string) models.AuthResponse {
	return models.AuthResponse{Token: token, Username: username, Nickname: nickname, Avatar: avatar}
}

func strPtr(s string) *string { return &s }

func (s *AuthSuite) assertLoggedOut() {
	t := s.T()
	assert.Equal(t, session.Snapshot{}, s.session.Snapshot())
	assert.Empty(t, s.session.Credential())

	token, err := s.store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	summary, err := s.store.LoadProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, credential.ProfileSummary{}, summary)

	assert.Equal(t, router.LoginPath, s.nav.Current())
}

func (s *AuthSuite) TestLogin() {
	ctx := context.Background()

	s.T().Run("identity comes from the returned credential", func(t *testing.T) {
		token := makeToken(t, jwt.MapClaims{"userId": 42, "role": "admin"})
		s.api.EXPECT().Login(gomock.Any(), models.LoginRequest{
			Username: "alice", Password: "secret", Captcha: "x7k2", CaptchaKey: "cap-1",
		}).Return(modelsAuth(token, "alice", "Al", "a.png"), nil)

		snap, err := s.service.Login(ctx, LoginInput{
			Username: "alice",
			Password: []byte("secret"),
			Captcha:  models.CaptchaAnswer{Key: "cap-1", Code: "x7k2"},
		})
		require.NoError(t, err)

		want := session.Snapshot{
			Authenticated: true,
			Identity:      session.Identity{UserID: "42", Role: "admin"},
			Profile:       session.Profile{Username: "alice", Nickname: "Al", Avatar: "a.png"},
		}
		if diff := cmp.Diff(want, snap); diff != "" {
			t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, token, s.session.Credential())

		stored, err := s.store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, token, stored)

		summary, err := s.store.LoadProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, credential.ProfileSummary{Username: "alice", Nickname: "Al", Avatar: "a.png"}, summary)
	})

	s.T().Run("rejected login leaves the session alone", func(t *testing.T) {
		before := s.session.Snapshot()
		s.api.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(models.AuthResponse{}, &client.Failure{Kind: client.KindApplication, Code: 500, Message: "bad captcha"})

		_, err := s.service.Login(ctx, LoginInput{Username: "bob", Password: []byte("pw")})
		f, ok := client.AsFailure(err)
		require.True(t, ok)
		assert.Equal(t, "bad captcha", f.Message)
		assert.Equal(t, before, s.session.Snapshot())
	})
}

func (s *AuthSuite) TestLogin_UndecodableCredential() {
	s.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(modelsAuth("not-a-jwt", "alice", "", ""), nil)

	_, err := s.service.Login(context.Background(), LoginInput{Username: "alice", Password: []byte("pw")})
	require.ErrorIs(s.T(), err, common.ErrInvalidToken)
	assert.False(s.T(), s.session.IsAuthenticated())

	stored, err := s.store.Load(context.Background())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), stored)
}

func (s *AuthSuite) TestLoginAndRegister_EmptyInput() {
	ctx := context.Background()
	_, err := s.service.Login(ctx, LoginInput{Username: "alice"})
	assert.ErrorIs(s.T(), err, common.ErrorEmptyInput)
	_, err = s.service.Register(ctx, RegisterInput{Password: []byte("pw")})
	assert.ErrorIs(s.T(), err, common.ErrorEmptyInput)
}

func (s *AuthSuite) TestRegister() {
	token := makeToken(s.T(), jwt.MapClaims{"sub": "7"})
	s.api.EXPECT().Register(gomock.Any(), models.RegisterRequest{
		Username: "carol", Password: "pw", Nickname: "C", Email: "c@example.com", Captcha: "1", CaptchaKey: "k",
	}).Return(modelsAuth(token, "carol", "C", ""), nil)

	snap, err := s.service.Register(context.Background(), RegisterInput{
		Username: "carol",
		Password: []byte("pw"),
		Nickname: "C",
		Email:    "c@example.com",
		Captcha:  models.CaptchaAnswer{Key: "k", Code: "1"},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), session.Identity{UserID: "7", Role: common.RoleUser}, snap.Identity)
}

func (s *AuthSuite) TestCaptcha() {
	s.api.EXPECT().Captcha(gomock.Any()).Return(models.Captcha{Key: "k", Image: "data:image/png;base64,AA=="}, nil)

	c, err := s.service.Captcha(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "k", c.Key)
}

func (s *AuthSuite) TestRestore() {
	ctx := context.Background()

	s.T().Run("no credential stays anonymous", func(t *testing.T) {
		require.NoError(t, s.service.Restore(ctx))
		assert.False(t, s.session.IsAuthenticated())
		assert.Equal(t, router.HomePath, s.nav.Current())
	})

	s.T().Run("valid credential is restored and refreshed", func(t *testing.T) {
		token := makeToken(t, jwt.MapClaims{"userId": "9", "role": "admin"})
		require.NoError(t, s.store.Save(ctx, token))
		require.NoError(t, s.store.SaveProfile(ctx, credential.ProfileSummary{Username: "dave", Nickname: "D", Avatar: "d.png"}))

		s.api.EXPECT().GetUserInfo(gomock.Any()).Return(models.UserInfo{Nickname: "Dave", Email: "d@example.com"}, nil)

		require.NoError(t, s.service.Restore(ctx))

		snap := s.session.Snapshot()
		assert.True(t, snap.Authenticated)
		assert.Equal(t, session.Identity{UserID: "9", Role: "admin"}, snap.Identity)
		assert.Equal(t, session.Profile{Username: "dave", Nickname: "Dave", Avatar: "d.png", Email: "d@example.com"}, snap.Profile)
	})
}

func (s *AuthSuite) TestRestore_RefreshFailureIsNotFatal() {
	ctx := context.Background()
	token := makeToken(s.T(), jwt.MapClaims{"userId": 1})
	require.NoError(s.T(), s.store.Save(ctx, token))

	s.api.EXPECT().GetUserInfo(gomock.Any()).
		Return(models.UserInfo{}, &client.Failure{Kind: client.KindTransport, Message: client.MessageNetworkError})

	require.NoError(s.T(), s.service.Restore(ctx))
	assert.True(s.T(), s.session.IsAuthenticated())
}

func (s *AuthSuite) TestRestore_UndecodableCredentialLogsOutSilently() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, "garbage"))
	require.NoError(s.T(), s.store.SaveProfile(ctx, credential.ProfileSummary{Username: "ghost"}))

	require.NoError(s.T(), s.service.Restore(ctx))

	s.assertLoggedOut()
	assert.Empty(s.T(), s.notes.All())
}

func (s *AuthSuite) TestRefreshProfile() {
	ctx := context.Background()

	s.T().Run("anonymous is a no-op", func(t *testing.T) {
		require.NoError(t, s.service.RefreshProfile(ctx))
	})

	s.loginAs(5, "user")

	s.T().Run("server values win where present", func(t *testing.T) {
		s.api.EXPECT().GetUserInfo(gomock.Any()).Return(models.UserInfo{
			UserID: "999", Username: "", Nickname: "Alice", Avatar: "", Email: "a@example.com", Phone: "", Bio: "hello",
		}, nil)

		require.NoError(t, s.service.RefreshProfile(ctx))

		snap := s.session.Snapshot()
		assert.Equal(t, session.Profile{Username: "alice", Nickname: "Alice", Avatar: "a.png", Email: "a@example.com", Bio: "hello"}, snap.Profile)
		assert.Equal(t, "5", snap.Identity.UserID)

		summary, err := s.store.LoadProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, credential.ProfileSummary{Username: "alice", Nickname: "Alice", Avatar: "a.png"}, summary)
	})

	s.T().Run("email phone and bio are overwritten with empty values", func(t *testing.T) {
		s.api.EXPECT().GetUserInfo(gomock.Any()).Return(models.UserInfo{Username: "alice"}, nil)

		require.NoError(t, s.service.RefreshProfile(ctx))
		p := s.session.Profile()
		assert.Empty(t, p.Email)
		assert.Empty(t, p.Bio)
		assert.Equal(t, "Alice", p.Nickname)
	})
}

func (s *AuthSuite) TestUpdateProfile() {
	ctx := context.Background()

	s.T().Run("anonymous is refused", func(t *testing.T) {
		err := s.service.UpdateProfile(ctx, session.ProfileUpdate{Nickname: strPtr("x")})
		assert.ErrorIs(t, err, common.ErrNotLoggedIn)
	})

	s.loginAs(5, "user")

	s.T().Run("empty update is refused", func(t *testing.T) {
		assert.ErrorIs(t, s.service.UpdateProfile(ctx, session.ProfileUpdate{}), common.ErrorEmptyInput)
	})

	s.T().Run("only provided fields change", func(t *testing.T) {
		upd := session.ProfileUpdate{Nickname: strPtr("Ally"), Phone: strPtr("555")}
		s.api.EXPECT().UpdateUserInfo(gomock.Any(), models.ProfileUpdate{Nickname: strPtr("Ally"), Phone: strPtr("555")}).Return(nil)

		require.NoError(t, s.service.UpdateProfile(ctx, upd))
		assert.Equal(t, session.Profile{Username: "alice", Nickname: "Ally", Avatar: "a.png", Phone: "555"}, s.session.Profile())

		summary, err := s.store.LoadProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ally", summary.Nickname)
	})

	s.T().Run("rejected update changes nothing", func(t *testing.T) {
		before := s.session.Profile()
		s.api.EXPECT().UpdateUserInfo(gomock.Any(), gomock.Any()).
			Return(&client.Failure{Kind: client.KindApplication, Code: 400, Message: "nickname taken"})

		err := s.service.UpdateProfile(ctx, session.ProfileUpdate{Nickname: strPtr("Bob")})
		require.Error(t, err)
		assert.Equal(t, before, s.session.Profile())
	})
}

func (s *AuthSuite) TestChangePassword() {
	ctx := context.Background()

	assert.ErrorIs(s.T(), s.service.ChangePassword(ctx, []byte("a"), []byte("b")), common.ErrNotLoggedIn)

	s.loginAs(5, "user")
	_, err := s.nav.Navigate(ctx, "/user/profile")
	require.NoError(s.T(), err)

	s.api.EXPECT().UpdatePassword(gomock.Any(), models.PasswordChange{OldPassword: "old", NewPassword: "new"}).Return(nil)

	require.NoError(s.T(), s.service.ChangePassword(ctx, []byte("old"), []byte("new")))
	s.assertLoggedOut()
	assert.Equal(s.T(), []notify.Notification{{Level: notify.Success, Message: MessagePasswordChanged}}, s.notes.All())
}

func (s *AuthSuite) TestChangePassword_FailureKeepsSession() {
	s.loginAs(5, "user")
	s.api.EXPECT().UpdatePassword(gomock.Any(), gomock.Any()).
		Return(&client.Failure{Kind: client.KindApplication, Code: 400, Message: "wrong old password"})

	err := s.service.ChangePassword(context.Background(), []byte("bad"), []byte("new"))
	require.Error(s.T(), err)
	assert.True(s.T(), s.session.IsAuthenticated())
	assert.Empty(s.T(), s.notes.All())
}

func (s *AuthSuite) TestChangePassword_CancelledDelayLogsOutAtOnce() {
	svc := NewAuthService(s.api, s.store, s.session, s.nav, WithLogoutDelay(time.Hour))
	s.loginAs(5, "user")
	s.api.EXPECT().UpdatePassword(gomock.Any(), gomock.Any()).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- svc.ChangePassword(ctx, []byte("old"), []byte("new")) }()

	select {
	case err := <-done:
		require.NoError(s.T(), err)
	case <-time.After(5 * time.Second):
		s.T().Fatal("ChangePassword did not return after cancellation")
	}
	s.assertLoggedOut()
}

func (s *AuthSuite) TestLogout_Idempotent() {
	ctx := context.Background()
	s.loginAs(5, "user")

	require.NoError(s.T(), s.service.Logout(ctx))
	first := s.session.Snapshot()
	s.assertLoggedOut()

	require.NoError(s.T(), s.service.Logout(ctx))
	assert.Equal(s.T(), first, s.session.Snapshot())
	s.assertLoggedOut()
}

func (s *AuthSuite) TestOnFailure() {
	ctx := context.Background()
	s.loginAs(5, "user")

	s.service.OnFailure(ctx, &client.Failure{Kind: client.KindApplication, Code: 500, Message: "boom"})
	s.service.OnFailure(ctx, &client.Failure{Kind: client.KindTransport, Message: client.MessageNetworkError, Err: errors.New("refused")})
	s.service.OnFailure(ctx, nil)
	assert.True(s.T(), s.session.IsAuthenticated())

	s.service.OnFailure(ctx, &client.Failure{Kind: client.KindUnauthorized, Code: 401, Message: "token expired"})
	s.assertLoggedOut()
}
