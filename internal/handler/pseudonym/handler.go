package pseudonym

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/internal/middleware"
	"github.com/clinisys/backoffice/internal/pseudonym"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/httputil"
)

type Handler struct {
	svc *pseudonym.Service
}

func NewHandler(svc *pseudonym.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateAlias pseudonymizes a patient under the active key.
func (h *Handler) CreateAlias(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	patientID, err := pathID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	alias, err := h.svc.CreateAlias(c.Request.Context(), principal.ID, patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, alias)
}

// ResolvePatient recovers which patient an alias denotes. Key loss and
// payload corruption surface as distinct errors, never as a missing row.
func (h *Handler) ResolvePatient(c *gin.Context) {
	aliasID, err := pathID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	patientID, err := h.svc.ResolvePatient(c.Request.Context(), aliasID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"patient_id": patientID})
}

// RotateKey performs a forward-only key rotation.
func (h *Handler) RotateKey(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	key, err := h.svc.RotateKey(c.Request.Context(), principal.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"id":         key.ID,
		"is_active":  key.IsActive,
		"created_at": key.CreatedAt,
	})
}

// PurgeKey removes an inactive key version that no alias references anymore.
func (h *Handler) PurgeKey(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	keyID, err := pathID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.PurgeKey(c.Request.Context(), principal.ID, keyID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"purged": true})
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("invalid id", err)
	}
	return id, nil
}
