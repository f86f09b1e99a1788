package audit

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/service/audit"
	"github.com/clinisys/backoffice/pkg/httputil"
)

type Handler struct {
	svc *audit.Service
}

func NewHandler(svc *audit.Service) *Handler {
	return &Handler{svc: svc}
}

// List returns audit entries, newest first, with optional filters.
func (h *Handler) List(c *gin.Context) {
	filter := &model.AuditFilter{
		Entity:     c.Query("entity"),
		ActionType: c.Query("action_type"),
		Limit:      100,
	}
	if v := c.Query("user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.UserID = id
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	entries, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}
