// Package records exposes the generic table browser/editor: every endpoint is
// parameterized by entity name and driven entirely by registry metadata and
// the request's access scope.
package records

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/internal/gateway"
	"github.com/clinisys/backoffice/internal/middleware"
	"github.com/clinisys/backoffice/internal/registry"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/httputil"
)

type Handler struct {
	reg *registry.Registry
	gw  *gateway.Gateway
}

func NewHandler(reg *registry.Registry, gw *gateway.Gateway) *Handler {
	return &Handler{reg: reg, gw: gw}
}

// fieldView is what the presentation collaborator needs to render a column.
type fieldView struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Nullable bool     `json:"nullable"`
	Editable bool     `json:"editable"`
	Enum     []string `json:"enum,omitempty"`
}

type tableView struct {
	Name      string      `json:"name"`
	Creatable bool        `json:"creatable"`
	Fields    []fieldView `json:"fields"`
}

// Tables enumerates the entities visible to the caller, with per-field
// rendering metadata restricted to the visible projection.
func (h *Handler) Tables(c *gin.Context) {
	scope := middleware.ScopeFrom(c)

	views := make([]tableView, 0, len(scope.VisibleEntities))
	for _, name := range scope.VisibleEntities {
		ent, err := h.reg.Describe(name)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		view := tableView{Name: name, Creatable: ent.Creatable && scope.Writable}
		for _, col := range scope.Fields(name) {
			f, ok := ent.Field(col)
			if !ok {
				continue
			}
			view.Fields = append(view.Fields, fieldView{
				Name:     f.Name,
				Kind:     string(f.Kind),
				Nullable: f.Nullable,
				Editable: f.Editable && scope.Writable,
				Enum:     f.Enum,
			})
		}
		views = append(views, view)
	}

	httputil.RespondWithSuccess(c, gin.H{"tables": views, "writable": scope.Writable})
}

func (h *Handler) List(c *gin.Context) {
	scope := middleware.ScopeFrom(c)

	rs, err := h.gw.List(c.Request.Context(), c.Param("entity"), scope)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rs)
}

func (h *Handler) Get(c *gin.Context) {
	scope := middleware.ScopeFrom(c)

	id, err := rowID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	rec, err := h.gw.Get(c.Request.Context(), c.Param("entity"), id, scope)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rec)
}

func (h *Handler) Create(c *gin.Context) {
	scope := middleware.ScopeFrom(c)

	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid record payload", err))
		return
	}

	id, err := h.gw.Create(c.Request.Context(), c.Param("entity"), values, scope)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id})
}

func (h *Handler) Update(c *gin.Context) {
	scope := middleware.ScopeFrom(c)

	id, err := rowID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid record payload", err))
		return
	}

	if err := h.gw.Update(c.Request.Context(), c.Param("entity"), id, values, scope); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"updated": true})
}

func (h *Handler) Delete(c *gin.Context) {
	scope := middleware.ScopeFrom(c)

	id, err := rowID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.gw.Delete(c.Request.Context(), c.Param("entity"), id, scope); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func rowID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("invalid row id", err)
	}
	return id, nil
}
