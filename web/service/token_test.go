package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/authsvc/auth-service/database/dbtest"
	"github.com/authsvc/auth-service/database/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_RequiresSecrets(t *testing.T) {
	cfg := testAuthConfig()
	cfg.RefreshTokenSecret = ""
	_, err := NewTokenService(nil, cfg)
	assert.Error(t, err)

	cfg = testAuthConfig()
	cfg.JWTSecret = ""
	_, err = NewTokenService(nil, cfg)
	assert.Error(t, err)
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	s := newTestServices(t)
	user := &model.User{Id: 7, Role: model.RoleAdmin}

	raw, err := s.tokens.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := s.tokens.ParseAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "auth-service", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	_, err = s.tokens.ParseRefreshToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	user := s.createUser(t, "ann@example.com")

	row, err := s.tokens.PersistRefreshToken(ctx, user.Id)
	require.NoError(t, err)
	raw, err := s.tokens.GenerateRefreshToken(user, row)
	require.NoError(t, err)

	claims, err := s.tokens.ParseRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(row.Id), claims.ID)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.True(t, claims.ExpiresAt.Time.Equal(row.ExpiresAt))

	exists, err := s.tokens.RefreshTokenExists(ctx, row.Id, user.Id)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.tokens.RefreshTokenExists(ctx, row.Id, user.Id+1)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.tokens.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	s := newTestServices(t)
	user := &model.User{Id: 1, Role: model.RoleCustomer}

	expired := s.tokens.WithDB(s.db)
	expired.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }
	raw, err := expired.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = s.tokens.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	cfg := testAuthConfig()
	cfg.Issuer = "someone-else"
	foreign, err := NewTokenService(s.db, cfg)
	require.NoError(t, err)
	raw, err = foreign.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = s.tokens.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong issuer")

	cfg = testAuthConfig()
	cfg.JWTSecret = "other-secret"
	forged, err := NewTokenService(s.db, cfg)
	require.NoError(t, err)
	raw, err = forged.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = s.tokens.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong key")

	_, err = s.tokens.ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RS256AccessTokens(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "private.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	cfg := testAuthConfig()
	cfg.JWTSecret = ""
	cfg.PrivateKeyPath = path
	tokens, err := NewTokenService(nil, cfg)
	require.NoError(t, err)

	raw, err := tokens.GenerateAccessToken(&model.User{Id: 3, Role: model.RoleManager})
	require.NoError(t, err)

	unverified, _, err := jwt.NewParser().ParseUnverified(raw, &TokenClaims{})
	require.NoError(t, err)
	assert.Equal(t, "RS256", unverified.Method.Alg())

	claims, err := tokens.ParseAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, claims.Role)
}

func TestTokenService_BadPrivateKeyPath(t *testing.T) {
	cfg := testAuthConfig()
	cfg.PrivateKeyPath = filepath.Join(t.TempDir(), "missing.pem")
	_, err := NewTokenService(nil, cfg)
	assert.Error(t, err)
}

func TestTokenService_DeleteRefreshToken(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	user := s.createUser(t, "ann@example.com")

	row, err := s.tokens.PersistRefreshToken(ctx, user.Id)
	require.NoError(t, err)

	deleted, err := s.tokens.DeleteRefreshToken(ctx, row.Id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.tokens.DeleteRefreshToken(ctx, row.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTokenService_PurgeExpired(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	user := s.createUser(t, "ann@example.com")
	now := time.Now().UTC().Truncate(time.Second)

	rows := []*model.RefreshToken{
		{UserId: user.Id, ExpiresAt: now.Add(-48 * time.Hour)},
		{UserId: user.Id, ExpiresAt: now.Add(-time.Minute)},
		{UserId: user.Id, ExpiresAt: now.Add(time.Hour)},
	}
	for _, row := range rows {
		require.NoError(t, s.db.Create(row).Error)
	}

	purged, err := s.tokens.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, purged)
	assert.EqualValues(t, 1, dbtest.Count(t, s.db, &model.RefreshToken{}))

	var left model.RefreshToken
	require.NoError(t, s.db.First(&left).Error)
	assert.Equal(t, rows[2].Id, left.Id)
}
