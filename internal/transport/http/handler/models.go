package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/ai"
	"chatrelay/internal/app"
	"chatrelay/internal/transport/http/response"
)

type ModelsHandler struct {
	catalogService *app.CatalogService
}

func NewModelsHandler(catalogService *app.CatalogService) *ModelsHandler {
	return &ModelsHandler{catalogService: catalogService}
}

func (h *ModelsHandler) List(c *gin.Context) {
	descriptors, err := h.catalogService.ListFreeModels(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeUpstreamUnavailable, "model gateway unreachable")
		case errors.Is(err, ai.ErrRejected):
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamRejected, "model gateway returned an invalid model list")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list models failed")
		}
		return
	}

	// An empty filtered catalog is a valid outcome, not an error.
	c.JSON(http.StatusOK, descriptors)
}
