package handler

import (
	"net/http"

	"novacrm/internal/apierror"
	"novacrm/internal/middleware"
	"novacrm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SignalsHandler serves the derived signals: stock alerts and smart
// recommendations. Both are read-and-acknowledge surfaces — signal rows are
// only ever written by the inventory mutation path.
type SignalsHandler struct{ svc service.SignalService }

func NewSignalsHandler(svc service.SignalService) *SignalsHandler {
	return &SignalsHandler{svc: svc}
}

func (h *SignalsHandler) ListAlerts(c *gin.Context) {
	resp, err := h.svc.ListAlerts(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *SignalsHandler) MarkAlertRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.MarkAlertRead(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SignalsHandler) ResolveAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.ResolveAlert(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SignalsHandler) ListRecommendations(c *gin.Context) {
	resp, err := h.svc.ListRecommendations(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *SignalsHandler) ApplyRecommendation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.ApplyRecommendation(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
