package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgerbook/internal/engine"
	"ledgerbook/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves balances and financial statements.
type ReportsHandler struct {
	*BaseHandler
	engine *engine.Engine
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, e *engine.Engine) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, engine: e}
}

func (h *ReportsHandler) period(c *gin.Context) (from, to *time.Time, ok bool) {
	var err error
	if from, err = dto.ParseOptionalDate("from", c.Query("from")); err != nil {
		h.Error(c, err)
		return nil, nil, false
	}
	if to, err = dto.ParseOptionalDate("to", c.Query("to")); err != nil {
		h.Error(c, err)
		return nil, nil, false
	}
	return from, to, true
}

// asOf reads the required report cutoff; the caller supplies "today".
func (h *ReportsHandler) asOf(c *gin.Context) (time.Time, bool) {
	t, err := dto.ParseDate("asOf", c.Query("asOf"))
	if err != nil {
		h.Error(c, err)
		return time.Time{}, false
	}
	return t, true
}

// LedgerBalance handles GET /ledgers/:id/balance?from&to.
func (h *ReportsHandler) LedgerBalance(c *gin.Context) {
	ledgerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	from, to, ok := h.period(c)
	if !ok {
		return
	}
	r, err := h.engine.LedgerBalance(c.Request.Context(), ledgerID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// StockItemBalance handles GET /stock-items/:id/balance?from&to.
func (h *ReportsHandler) StockItemBalance(c *gin.Context) {
	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	from, to, ok := h.period(c)
	if !ok {
		return
	}
	r, err := h.engine.StockItemBalance(c.Request.Context(), itemID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// TradingAndPL handles GET /companies/:companyId/reports/trading-pl?from&to.
func (h *ReportsHandler) TradingAndPL(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	from, to, ok := h.period(c)
	if !ok {
		return
	}
	r, err := h.engine.TradingAndPL(c.Request.Context(), companyID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// BalanceSheet handles GET /companies/:companyId/reports/balance-sheet?asOf.
func (h *ReportsHandler) BalanceSheet(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}
	r, err := h.engine.BalanceSheet(c.Request.Context(), companyID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// TrialBalance handles GET /companies/:companyId/reports/trial-balance?asOf.
func (h *ReportsHandler) TrialBalance(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}
	r, err := h.engine.TrialBalance(c.Request.Context(), companyID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// StockSummary handles GET /companies/:companyId/reports/stock-summary?asOf.
func (h *ReportsHandler) StockSummary(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	asOf, err := dto.ParseOptionalDate("asOf", c.Query("asOf"))
	if err != nil {
		h.Error(c, err)
		return
	}
	r, err := h.engine.StockSummary(c.Request.Context(), companyID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}
