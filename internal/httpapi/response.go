package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/logging"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
	Data    any    `json:"data"`
}

func (h *Handler) ok(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Status: "ok", Data: data})
}

// fail writes the error envelope. Internal errors are logged and, in production, hidden.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.log.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("request_id", c.GetString(logging.RequestIDKey)),
			zap.Error(err))
		if h.production {
			message = "internal server error"
		}
	}
	c.AbortWithStatusJSON(status, envelope{Status: "err", Message: message, Code: status, Data: gin.H{}})
}

// bind decodes and validates a JSON body, writing a 400 on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperror.Validation("%s", h.bindMessage(err)))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.fail(c, apperror.Validation("%s", h.bindMessage(err)))
		return false
	}
	return true
}

func (h *Handler) bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	if h.production {
		return "invalid request body"
	}
	return "invalid request body: " + err.Error()
}
