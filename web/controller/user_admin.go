package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/authsvc/auth-service/database/model"
	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/web/entity"
	"github.com/authsvc/auth-service/web/middleware"
	"github.com/authsvc/auth-service/web/service"

	"github.com/gin-gonic/gin"
)

// UserAdminController serves the admin-only user listing.
type UserAdminController struct {
	BaseController

	userService *service.UserService
}

func NewUserAdminController(g *gin.RouterGroup, userService *service.UserService, tokenService *service.TokenService) *UserAdminController {
	a := &UserAdminController{userService: userService}

	users := g.Group("/users")
	users.Use(middleware.Authenticate(tokenService), middleware.RoleRequired(model.RoleAdmin))
	{
		users.GET("", a.list)
		users.GET("/:id", a.get)
	}
	return a
}

// queryInt parses a non-negative query parameter, returning def when absent or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func (a *UserAdminController) list(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageLimit)
	if limit == 0 || limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := queryInt(c, "offset", 0)

	users, total, err := a.userService.List(c.Request.Context(), limit, offset)
	if err != nil {
		a.fail(c, err)
		return
	}

	out := entity.UserList{
		Users:  make([]entity.User, 0, len(users)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i := range users {
		out.Users = append(out.Users, entity.NewUser(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (a *UserAdminController) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		a.fail(c, common.BadRequest(msgInvalidUserID))
		return
	}

	user, err := a.userService.FindById(c.Request.Context(), id)
	if errors.Is(err, service.ErrUserNotFound) {
		a.fail(c, common.NotFound(msgUserNotFound).Wrap(err))
		return
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUser(user))
}
