package staff

import (
	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/internal/middleware"
	"github.com/clinisys/backoffice/internal/service/staff"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/httputil"
)

type Handler struct {
	svc *staff.Service
}

func NewHandler(svc *staff.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateEmployee provisions a new admin or doctor account.
func (h *Handler) CreateEmployee(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	var req staff.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid employee payload", err))
		return
	}

	user, err := h.svc.CreateEmployee(c.Request.Context(), principal.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}
