package controllers

import (
	"net/http"
	"strconv"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AlertController struct {
	DB *gorm.DB
}

func NewAlertController(db *gorm.DB) *AlertController {
	return &AlertController{DB: db}
}

func (h *AlertController) ListAlerts(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "auth"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	alerts, err := services.ListAlerts(h.DB, userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "storage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
