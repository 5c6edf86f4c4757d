package handlers

import (
	"github.com/gin-gonic/gin"

	"ledgerbook/internal/domain/masters"
	"ledgerbook/internal/infrastructure/http/v1/dto"
)

// CompanyHandler serves company CRUD.
type CompanyHandler struct {
	*BaseHandler
	service *masters.Service
}

// NewCompanyHandler creates a company handler.
func NewCompanyHandler(base *BaseHandler, service *masters.Service) *CompanyHandler {
	return &CompanyHandler{BaseHandler: base, service: service}
}

// List handles GET /companies.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.service.ListCompanies(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: companies, TotalCount: int64(len(companies)), Limit: len(companies)})
}

// Create handles POST /companies.
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.CompanyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	company, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.CreateCompany(c.Request.Context(), company); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, company)
}

// Get handles GET /companies/:companyId.
func (h *CompanyHandler) Get(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	company, err := h.service.GetCompany(c.Request.Context(), companyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, company)
}

// Update handles PUT /companies/:companyId.
func (h *CompanyHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	var req dto.CompanyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	company, err := h.service.GetCompany(ctx, companyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(company); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.UpdateCompany(ctx, company); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, company)
}

// Delete handles DELETE /companies/:companyId. Everything the company owns goes with it.
func (h *CompanyHandler) Delete(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	if err := h.service.DeleteCompany(c.Request.Context(), companyID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
