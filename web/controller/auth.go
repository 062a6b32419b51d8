package controller

import (
	"net/http"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/logger"
	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/web/entity"
	"github.com/authsvc/auth-service/web/middleware"
	"github.com/authsvc/auth-service/web/service"

	"github.com/gin-gonic/gin"
)

// AuthController serves /auth: registration, login and the token lifecycle.
type AuthController struct {
	BaseController

	authService  *service.AuthService
	tokenService *service.TokenService
	cookie       config.CookieConfig
}

func NewAuthController(g *gin.RouterGroup, authService *service.AuthService, tokenService *service.TokenService, cookie config.CookieConfig) *AuthController {
	a := &AuthController{
		authService:  authService,
		tokenService: tokenService,
		cookie:       cookie,
	}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/auth")

	g.POST("/register", a.register)
	g.POST("/login", a.login)
	g.GET("/self", middleware.Authenticate(a.tokenService), a.self)
	g.POST("/refresh", middleware.ValidateRefreshToken(a.tokenService), a.refresh)
	g.POST("/logout",
		middleware.Authenticate(a.tokenService),
		middleware.ValidateRefreshToken(a.tokenService),
		a.logout)
}

func (a *AuthController) respond(c *gin.Context, status int, result *service.AuthResult) {
	setTokenCookies(c, a.cookie, result.Tokens, a.tokenService.AccessTTL(), a.tokenService.RefreshTTL())
	c.JSON(status, entity.IDResponse{Id: result.User.Id})
}

func (a *AuthController) register(c *gin.Context) {
	var in service.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		a.fail(c, err)
		return
	}

	result, err := a.authService.Register(c.Request.Context(), in)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.respond(c, http.StatusCreated, result)
}

func (a *AuthController) login(c *gin.Context) {
	var in service.LoginInput
	if err := bindJSON(c, &in); err != nil {
		a.fail(c, err)
		return
	}

	result, err := a.authService.Login(c.Request.Context(), in)
	if err != nil {
		if common.StatusOf(err) == http.StatusBadRequest {
			logger.Warningf("failed login for %q from %s", in.Email, getRemoteIp(c))
		}
		a.fail(c, err)
		return
	}
	logger.Infof("user %d logged in from %s", result.User.Id, getRemoteIp(c))
	a.respond(c, http.StatusOK, result)
}

func (a *AuthController) self(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	user, err := a.authService.Self(c.Request.Context(), userID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUser(user))
}

func (a *AuthController) refresh(c *gin.Context) {
	claims, _ := middleware.GetRefreshClaims(c)
	result, err := a.authService.Refresh(c.Request.Context(), claims)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.respond(c, http.StatusOK, result)
}

func (a *AuthController) logout(c *gin.Context) {
	claims, _ := middleware.GetRefreshClaims(c)
	if err := a.authService.Logout(c.Request.Context(), claims); err != nil {
		a.fail(c, err)
		return
	}
	clearTokenCookies(c, a.cookie)
	c.JSON(http.StatusOK, gin.H{})
}
