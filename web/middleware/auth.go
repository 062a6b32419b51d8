package middleware

import (
	"strings"

	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/web/service"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	ContextUserID        = "user_id"
	ContextRole          = "role"
	ContextRefreshClaims = "refresh_claims"
)

func abortUnauthorized(c *gin.Context, err error) {
	_ = c.Error(common.Unauthorized(service.MsgUnauthorized).Wrap(err))
	c.Abort()
}

// accessToken reads the access token cookie, falling back to a bearer token.
func accessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate requires a valid access token and stores the caller's id and role.
func Authenticate(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := accessToken(c)
		if raw == "" {
			abortUnauthorized(c, nil)
			return
		}
		claims, err := tokens.ParseAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		userID, _ := claims.UserID()
		c.Set(ContextUserID, userID)
		c.Set(ContextRole, string(claims.Role))
		c.Next()
	}
}

// ValidateRefreshToken requires a refresh token cookie whose row still exists.
func ValidateRefreshToken(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(RefreshTokenCookie)
		if err != nil || raw == "" {
			abortUnauthorized(c, err)
			return
		}
		claims, err := tokens.ParseRefreshToken(raw)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		userID, _ := claims.UserID()
		tokenID, _ := claims.TokenID()
		exists, err := tokens.RefreshTokenExists(c.Request.Context(), tokenID, userID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !exists {
			abortUnauthorized(c, nil)
			return
		}
		c.Set(ContextRefreshClaims, claims)
		c.Next()
	}
}

// GetUserID returns the id stored by Authenticate.
func GetUserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

// GetRefreshClaims returns the claims stored by ValidateRefreshToken.
func GetRefreshClaims(c *gin.Context) (*service.TokenClaims, bool) {
	v, ok := c.Get(ContextRefreshClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.TokenClaims)
	return claims, ok
}
