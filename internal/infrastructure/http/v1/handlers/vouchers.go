package handlers

import (
	"github.com/gin-gonic/gin"

	"ledgerbook/internal/engine"
	"ledgerbook/internal/infrastructure/http/v1/dto"
)

// VoucherHandler serves voucher entry and the maker-checker flow.
type VoucherHandler struct {
	*BaseHandler
	engine *engine.Engine
}

// NewVoucherHandler creates a voucher handler.
func NewVoucherHandler(base *BaseHandler, e *engine.Engine) *VoucherHandler {
	return &VoucherHandler{BaseHandler: base, engine: e}
}

// List handles GET /companies/:companyId/vouchers.
func (h *VoucherHandler) List(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	var req dto.VoucherListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter(companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.ListVouchers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: result.Items, TotalCount: result.TotalCount, Limit: result.Limit, Offset: result.Offset})
}

// Pending handles GET /companies/:companyId/vouchers/pending.
func (h *VoucherHandler) Pending(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	result, err := h.engine.ListPending(c.Request.Context(), companyID, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: result.Items, TotalCount: result.TotalCount, Limit: result.Limit, Offset: result.Offset})
}

// GetByCode handles GET /companies/:companyId/vouchers/by-code/:code.
func (h *VoucherHandler) GetByCode(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	v, err := h.engine.GetVoucherByCode(c.Request.Context(), companyID, c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// Create handles POST /companies/:companyId/vouchers.
func (h *VoucherHandler) Create(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.VoucherRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	v, err := h.engine.CreateVoucher(c.Request.Context(), in, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, v)
}

// Upsert handles POST /companies/:companyId/vouchers/upsert.
func (h *VoucherHandler) Upsert(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.VoucherRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.UpsertSalesPurchaseVoucher(c.Request.Context(), in, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	resp := dto.UpsertResponse{Created: result.Created, Voucher: result.Voucher}
	if result.Created {
		h.Created(c, resp)
		return
	}
	h.OK(c, resp)
}

// Get handles GET /vouchers/:id.
func (h *VoucherHandler) Get(c *gin.Context) {
	voucherID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	v, err := h.engine.GetVoucher(c.Request.Context(), voucherID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// Edit handles PUT /vouchers/:id.
func (h *VoucherHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	voucherID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.VoucherRequest
	if !h.BindJSON(c, &req) {
		return
	}

	current, err := h.engine.GetVoucher(ctx, voucherID)
	if err != nil {
		h.Error(c, err)
		return
	}
	in, err := req.ToInput(current.CompanyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	v, err := h.engine.EditVoucher(ctx, voucherID, in, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// Verify handles POST /vouchers/:id/verify.
func (h *VoucherHandler) Verify(c *gin.Context) {
	voucherID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	v, err := h.engine.VerifyVoucher(c.Request.Context(), voucherID, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// Delete handles DELETE /vouchers/:id.
func (h *VoucherHandler) Delete(c *gin.Context) {
	voucherID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	if err := h.engine.DeleteVoucher(c.Request.Context(), voucherID, actor); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteMany handles POST /vouchers/bulk-delete.
func (h *VoucherHandler) DeleteMany(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.IDsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.engine.DeleteVouchers(c.Request.Context(), req.IDs, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DeletedResponse{Deleted: n})
}
