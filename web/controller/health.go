package controller

import (
	"net/http"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/web/entity"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	BaseController

	db *gorm.DB
}

func NewHealthController(g *gin.RouterGroup, db *gorm.DB) *HealthController {
	a := &HealthController{db: db}
	g.GET("/healthz", a.health)
	return a
}

// health reports ok once the database answers a ping.
func (a *HealthController) health(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.Health{Ok: true, Version: config.GetVersion()})
}
