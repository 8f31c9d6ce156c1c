package controllers

import (
	"errors"
	"net/http"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"

	"github.com/gin-gonic/gin"
)

func userIDFromCtx(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// respondError maps the domain error taxonomy onto HTTP. Every failure
// body carries a machine-readable kind next to the human message.
func respondError(c *gin.Context, err error) {
	var invalidErr *utils.InvalidInputError
	var noAssessErr *utils.NoAssessmentError
	var storageErr *utils.StorageError
	var extErr *utils.ExternalServiceError
	var genErr *utils.GenerationError

	switch {
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_input"})
	case errors.As(err, &noAssessErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "no_assessment"})
	case errors.As(err, &storageErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "storage"})
	case errors.As(err, &extErr):
		status := http.StatusBadGateway
		if extErr.Kind == utils.ExternalTimeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error(), "kind": string(extErr.Kind)})
	case errors.As(err, &genErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "generation_failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "internal"})
	}
}
