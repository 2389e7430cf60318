package handler

import (
	"net/http"
	"strconv"

	"novacrm/internal/dto"
	"novacrm/internal/middleware"
	"novacrm/internal/service"

	"github.com/gin-gonic/gin"
)

type BulkHandler struct{ svc service.BulkService }

func NewBulkHandler(svc service.BulkService) *BulkHandler {
	return &BulkHandler{svc: svc}
}

func (h *BulkHandler) Apply(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ApplyPriceUpdate(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BulkHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.ListUpdates(c.Request.Context(), middleware.TenantID(c), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
