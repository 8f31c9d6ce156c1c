// controllers/trend_controller.go
package controllers

import (
	"net/http"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/services"

	"github.com/gin-gonic/gin"
)

type TrendController struct {
	Svc *services.TrendService
}

func NewTrendController(svc *services.TrendService) *TrendController {
	return &TrendController{Svc: svc}
}

func (h *TrendController) GetTrends(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "auth"})
		return
	}

	report, err := h.Svc.ComputeTrends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
