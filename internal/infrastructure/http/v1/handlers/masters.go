package handlers

import (
	"github.com/gin-gonic/gin"

	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/infrastructure/http/v1/dto"
)

// MasterRequest is a request body that builds or updates a master record.
type MasterRequest[T any] interface {
	ToEntity(companyID id.ID) T
	ApplyTo(existing T)
}

// MasterHandler serves CRUD for one kind of master record.
type MasterHandler[T domain.Master, R MasterRequest[T]] struct {
	*BaseHandler
	service *domain.MasterService[T]
}

// NewMasterHandler creates a master handler.
func NewMasterHandler[T domain.Master, R MasterRequest[T]](base *BaseHandler, service *domain.MasterService[T]) *MasterHandler[T, R] {
	return &MasterHandler[T, R]{BaseHandler: base, service: service}
}

// List handles GET /companies/:companyId/{masters}.
func (h *MasterHandler[T, R]) List(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}

	filter := domain.DefaultListFilter(companyID)
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Create handles POST /companies/:companyId/{masters}.
func (h *MasterHandler[T, R]) Create(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	var req R
	if !h.BindJSON(c, &req) {
		return
	}

	m := req.ToEntity(companyID)
	if err := h.service.Create(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// Get handles GET /{masters}/:id.
func (h *MasterHandler[T, R]) Get(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	m, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Update handles PUT /{masters}/:id.
func (h *MasterHandler[T, R]) Update(c *gin.Context) {
	ctx := c.Request.Context()
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req R
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(existing)
	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, existing)
}

// Delete handles DELETE /{masters}/:id.
func (h *MasterHandler[T, R]) Delete(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteMany handles POST /{masters}/bulk-delete.
func (h *MasterHandler[T, R]) DeleteMany(c *gin.Context) {
	var req dto.IDsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.service.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DeletedResponse{Deleted: n})
}
