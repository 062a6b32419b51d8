package service

import (
	"context"
	"testing"
	"time"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/database/dbtest"
	"github.com/authsvc/auth-service/database/model"
	"github.com/authsvc/auth-service/util/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:          "access-secret",
		RefreshTokenSecret: "refresh-secret",
		Issuer:             "auth-service",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		BcryptCost:         bcrypt.MinCost,
	}
}

type testServices struct {
	db     *gorm.DB
	users  *UserService
	tokens *TokenService
	auth   *AuthService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	d := dbtest.Open(t)
	cfg := testAuthConfig()

	tokens, err := NewTokenService(d, cfg)
	require.NoError(t, err)
	users := NewUserService(d)

	return &testServices{
		db:     d,
		users:  users,
		tokens: tokens,
		auth:   NewAuthService(d, users, tokens, cfg.BcryptCost),
	}
}

func (s *testServices) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{FirstName: "Ann", LastName: "Lee", Email: email, Password: "x"}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func requireHTTPError(t *testing.T, err error, status int, msg string) *common.HTTPError {
	t.Helper()
	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
	assert.Equal(t, msg, httpErr.Msg)
	return httpErr
}
