package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "vocal-assistant/internal/api/errors"
	"vocal-assistant/internal/api/middleware"
	"vocal-assistant/internal/api/v1/dto"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
)

// DocumentHandler exposes the document catalog read-only.
type DocumentHandler struct {
	catalog *document.Catalog
}

func NewDocumentHandler(catalog *document.Catalog) *DocumentHandler {
	return &DocumentHandler{catalog: catalog}
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs := make([]dto.DocumentResponse, 0)
	for _, t := range h.catalog.Types() {
		def, err := h.catalog.Lookup(t.String())
		if err != nil {
			middleware.HandleError(c, err)
			return
		}
		docs = append(docs, dto.NewDocumentResponse(def))
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Get handles GET /api/v1/documents/:type
func (h *DocumentHandler) Get(c *gin.Context) {
	def, err := h.catalog.Lookup(c.Param("type"))
	if err != nil {
		if errors.Is(err, errors.ErrUnknownDocumentType) {
			middleware.HandleError(c, apierrors.NewNotFoundError(err.Error()))
			return
		}
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDocumentResponse(def))
}
