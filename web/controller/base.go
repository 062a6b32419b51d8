// Package controller binds the HTTP API routes to the auth and user services.
package controller

import (
	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers.
type BaseController struct{}

// fail hands err to the error middleware and stops the handler chain.
func (a *BaseController) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
