package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/authsvc/auth-service/logger"
	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/web/entity"
	"github.com/authsvc/auth-service/web/locale"

	"github.com/gin-gonic/gin"
)

const (
	fieldErrorType    = "field"
	fieldLocation     = "body"
	untypedErrorType  = "Error"
	msgValidationPref = "validation."
	msgValidationDef  = "validation.default"
)

// ErrorHandler turns errors attached with c.Error, and panics, into the JSON
// error envelope. The last attached error wins.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				logger.Errorf("panic on %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, p, debug.Stack())
				if c.Writer.Written() {
					c.Abort()
					return
				}
				RenderError(c, fmt.Errorf("%v", p))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RenderError(c, c.Errors.Last().Err)
	}
}

// RenderError writes err as an error envelope and aborts the chain.
func RenderError(c *gin.Context, err error) {
	status := common.StatusOf(err)

	var items []entity.ErrorItem
	var httpErr *common.HTTPError
	switch {
	case errors.As(err, &httpErr) && len(httpErr.Fields) > 0:
		items = make([]entity.ErrorItem, 0, len(httpErr.Fields))
		for _, f := range httpErr.Fields {
			items = append(items, entity.ErrorItem{
				Type:     fieldErrorType,
				Msg:      fieldMessage(c, f),
				Path:     f.Field,
				Location: fieldLocation,
			})
		}
	case httpErr != nil:
		items = []entity.ErrorItem{{Type: httpErr.Type, Msg: locale.I18n(c, httpErr.Msg)}}
	default:
		items = []entity.ErrorItem{{Type: untypedErrorType, Msg: err.Error()}}
	}

	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		logger.Debugf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, entity.ErrorResponse{Errors: items})
}

// fieldMessage looks up "validation.<field>.<rule>" and falls back to a
// generic message naming the field.
func fieldMessage(c *gin.Context, f common.FieldError) string {
	key := msgValidationPref + f.Field + "." + f.Tag
	if msg, err := locale.Localize(c, key, "Param=="+f.Param); err == nil {
		return msg
	}
	return locale.I18n(c, msgValidationDef, "Field=="+f.Field)
}
