package controller

import (
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/web/middleware"
	"github.com/authsvc/auth-service/web/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

const (
	maxBodyBytes     = 1 << 20
	msgInvalidBody   = "request.invalidBody"
	msgInvalidUserID = "user.invalidId"
	msgUserNotFound  = "user.notFound"
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// bindJSON decodes the request body into obj. An empty body decodes as {} so
// that missing fields are reported by validation rather than as a bad body.
func bindJSON(c *gin.Context, obj any) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.NewHTTPError(http.StatusRequestEntityTooLarge, msgInvalidBody).Wrap(err)
		}
		return common.BadRequest(msgInvalidBody).Wrap(err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return common.BadRequest(msgInvalidBody).Wrap(err)
	}
	return nil
}

func setCookie(c *gin.Context, cfg config.CookieConfig, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// setTokenCookies stores both tokens as HttpOnly cookies living as long as the tokens.
func setTokenCookies(c *gin.Context, cfg config.CookieConfig, tokens service.TokenPair, accessTTL, refreshTTL time.Duration) {
	setCookie(c, cfg, middleware.AccessTokenCookie, tokens.AccessToken, int(accessTTL/time.Second))
	setCookie(c, cfg, middleware.RefreshTokenCookie, tokens.RefreshToken, int(refreshTTL/time.Second))
}

func clearTokenCookies(c *gin.Context, cfg config.CookieConfig) {
	setCookie(c, cfg, middleware.AccessTokenCookie, "", -1)
	setCookie(c, cfg, middleware.RefreshTokenCookie, "", -1)
}
