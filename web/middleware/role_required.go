package middleware

import (
	"github.com/authsvc/auth-service/database/model"
	"github.com/authsvc/auth-service/util/common"

	"github.com/gin-gonic/gin"
)

const MsgForbidden = "auth.forbidden"

// RoleRequired lets the request through only if Authenticate stored one of roles.
func RoleRequired(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ContextRole)
		if !exists {
			abortUnauthorized(c, nil)
			return
		}
		role, ok := roleVal.(string)
		if !ok || !allowed[role] {
			_ = c.Error(common.Forbidden(MsgForbidden))
			c.Abort()
			return
		}
		c.Next()
	}
}
