package v1

import (
	"github.com/gin-gonic/gin"
)

// MasterRouteHandler is implemented by every master handler.
type MasterRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	DeleteMany(c *gin.Context)
}

// RegisterMasterRoutes mounts the collection routes under a company and the
// item routes at the top level.
//
//	GET  /companies/:companyId/ledgers      POST /companies/:companyId/ledgers
//	GET  /ledgers/:id   PUT /ledgers/:id   DELETE /ledgers/:id
//	POST /ledgers/bulk-delete
func RegisterMasterRoutes(company, root *gin.RouterGroup, path string, handler MasterRouteHandler) {
	company.GET(path, handler.List)
	company.POST(path, handler.Create)

	items := root.Group(path)
	items.GET("/:id", handler.Get)
	items.PUT("/:id", handler.Update)
	items.DELETE("/:id", handler.Delete)
	items.POST("/bulk-delete", handler.DeleteMany)
}
