package export

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/internal/middleware"
	"github.com/clinisys/backoffice/internal/service/export"
	"github.com/clinisys/backoffice/pkg/httputil"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

// Download streams the full visible dataset as an xlsx workbook. Key material
// never appears here regardless of role.
func (h *Handler) Download(c *gin.Context) {
	scope := middleware.ScopeFrom(c)

	wb, err := h.svc.Workbook(c.Request.Context(), scope)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="report.xlsx"`)
	c.Header("Content-Type", contentTypeXLSX)
	c.Status(http.StatusOK)

	if err := wb.Write(c.Writer); err != nil {
		// Headers are already out; log-and-drop is all that is left.
		c.Error(err)
	}
}
