package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError writes err with the status of its kind. Internal errors are logged.
func RespondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{Kind: KindInternal, Message: err.Error(), Err: err}
	}
	if appErr.Kind == KindInternal {
		ErrorLogger.WithFields(map[string]interface{}{
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).Error(appErr.Error())
	}
	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), JSONResponse{
		Status:  false,
		Message: appErr.Error(),
	})
}
