package handlers

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/domain/importer"
	"ledgerbook/internal/engine"
)

// ImportHandler accepts XML exports.
type ImportHandler struct {
	*BaseHandler
	engine *engine.Engine
}

// NewImportHandler creates an import handler.
func NewImportHandler(base *BaseHandler, e *engine.Engine) *ImportHandler {
	return &ImportHandler{BaseHandler: base, engine: e}
}

// Import handles POST /companies/:companyId/import?upsert=true.
// The payload is either the raw request body or a multipart "file" field.
func (h *ImportHandler) Import(c *gin.Context) {
	companyID, ok := h.ParamID(c, "companyId")
	if !ok {
		return
	}
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	upsert, _ := strconv.ParseBool(c.Query("upsert"))

	body := io.Reader(c.Request.Body)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			h.Error(c, apperror.NewValidation("missing file field").WithDetail("error", err.Error()))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.Error(c, apperror.NewInternal(err))
			return
		}
		defer f.Close()
		body = f
	}

	summary, err := h.engine.ImportXMLBatch(c.Request.Context(), companyID, body,
		importer.Options{UpsertSalesPurchase: upsert}, actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}
