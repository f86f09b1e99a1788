package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/internal/middleware"
	"github.com/clinisys/backoffice/internal/service/auth"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/httputil"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid login payload", err))
		return
	}

	token, principal, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"token": token,
		"principal": gin.H{
			"id":   principal.ID,
			"role": principal.Role,
		},
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)
	if token == "" {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), token); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"logged_out": true})
}
