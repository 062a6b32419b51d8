package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/database/model"
	"github.com/authsvc/auth-service/util/common"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the payload of both access and refresh tokens.
// Refresh tokens additionally carry the refresh_tokens row id as jti.
type TokenClaims struct {
	Role model.Role `json:"role"`
	Type string     `json:"type"`
	jwt.RegisteredClaims
}

func (c *TokenClaims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

func (c *TokenClaims) TokenID() (int, error) {
	return strconv.Atoi(c.ID)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService signs and verifies tokens and owns the refresh_tokens table.
type TokenService struct {
	db         *gorm.DB
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	accessMethod    jwt.SigningMethod
	accessSignKey   any
	accessVerifyKey any
	refreshSecret   []byte

	now func() time.Time
}

// NewTokenService signs access tokens with RS256 when a private key path is
// configured and with HS256 otherwise. Refresh tokens always use HS256.
func NewTokenService(db *gorm.DB, cfg config.AuthConfig) (*TokenService, error) {
	if cfg.RefreshTokenSecret == "" {
		return nil, common.NewError("refresh token secret is empty")
	}

	s := &TokenService{
		db:            db,
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	if cfg.PrivateKeyPath != "" {
		data, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read access token private key: %w", err)
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
		if err != nil {
			return nil, fmt.Errorf("parse access token private key: %w", err)
		}
		s.accessMethod = jwt.SigningMethodRS256
		s.accessSignKey = key
		s.accessVerifyKey = &key.PublicKey
	} else {
		if cfg.JWTSecret == "" {
			return nil, common.NewError("jwt secret is empty")
		}
		s.accessMethod = jwt.SigningMethodHS256
		s.accessSignKey = []byte(cfg.JWTSecret)
		s.accessVerifyKey = []byte(cfg.JWTSecret)
	}
	return s, nil
}

// WithDB returns a copy of the service bound to d, typically a transaction.
func (s *TokenService) WithDB(d *gorm.DB) *TokenService {
	clone := *s
	clone.db = d
	return &clone
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) claims(user *model.User, typ string, expiresAt time.Time) *TokenClaims {
	return &TokenClaims{
		Role: user.Role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.Id),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

func (s *TokenService) GenerateAccessToken(user *model.User) (string, error) {
	claims := s.claims(user, TokenTypeAccess, s.now().Add(s.accessTTL))
	token, err := jwt.NewWithClaims(s.accessMethod, claims).SignedString(s.accessSignKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken signs a refresh token for a persisted row. The token
// expires together with the row.
func (s *TokenService) GenerateRefreshToken(user *model.User, row *model.RefreshToken) (string, error) {
	claims := s.claims(user, TokenTypeRefresh, row.ExpiresAt)
	claims.ID = strconv.Itoa(row.Id)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return token, nil
}

func (s *TokenService) PersistRefreshToken(ctx context.Context, userID int) (*model.RefreshToken, error) {
	row := &model.RefreshToken{
		UserId:    userID,
		ExpiresAt: s.now().Add(s.refreshTTL).Truncate(time.Second),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return row, nil
}

// IssueTokens persists a new refresh-token row for user and signs both tokens.
func (s *TokenService) IssueTokens(ctx context.Context, user *model.User) (TokenPair, error) {
	row, err := s.PersistRefreshToken(ctx, user.Id)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := s.GenerateAccessToken(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.GenerateRefreshToken(user, row)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) parse(raw, typ string, method jwt.SigningMethod, key any) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

func (s *TokenService) ParseAccessToken(raw string) (*TokenClaims, error) {
	return s.parse(raw, TokenTypeAccess, s.accessMethod, s.accessVerifyKey)
}

func (s *TokenService) ParseRefreshToken(raw string) (*TokenClaims, error) {
	claims, err := s.parse(raw, TokenTypeRefresh, jwt.SigningMethodHS256, s.refreshSecret)
	if err != nil {
		return nil, err
	}
	if _, err := claims.TokenID(); err != nil {
		return nil, fmt.Errorf("%w: bad token id", ErrInvalidToken)
	}
	return claims, nil
}

// RefreshTokenExists reports whether the row id belongs to userID and has not expired.
func (s *TokenService) RefreshTokenExists(ctx context.Context, id, userID int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("id = ? AND user_id = ? AND expires_at > ?", id, userID, s.now()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup refresh token: %w", err)
	}
	return count > 0, nil
}

// DeleteRefreshToken removes the row and reports whether it existed.
func (s *TokenService) DeleteRefreshToken(ctx context.Context, id int) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&model.RefreshToken{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete refresh token: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// PurgeExpired deletes every refresh-token row that expired at or before now.
func (s *TokenService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&model.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
