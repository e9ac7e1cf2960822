package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/auth"
	"campus-attendance/internal/faculty"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	f, err := h.Faculty.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, faculty.ErrInvalidCredentials) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Status: "err", Message: err.Error(), Code: http.StatusUnauthorized, Data: gin.H{}})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	tokens, err := h.Issuer.Issue(f.ID, f.Role, f.DepartmentID)
	if err != nil {
		h.fail(c, apperror.Internal(err, "issue tokens"))
		return
	}
	h.ok(c, http.StatusOK, gin.H{"tokens": tokens, "user": f})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if !h.bind(c, &req) {
		return
	}
	claims, err := h.Issuer.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Status: "err", Message: "invalid refresh token", Code: http.StatusUnauthorized, Data: gin.H{}})
		return
	}
	tokens, err := h.Issuer.Issue(claims.Subject, claims.Role, claims.DepartmentID)
	if err != nil {
		h.fail(c, apperror.Internal(err, "issue tokens"))
		return
	}
	h.ok(c, http.StatusOK, gin.H{"tokens": tokens})
}

// caller returns the authenticated faculty id.
func caller(c *gin.Context) string {
	claims, _ := auth.FromContext(c)
	return claims.Subject
}
