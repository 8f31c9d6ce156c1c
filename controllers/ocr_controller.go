package controllers

import (
	"io"
	"net/http"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"

	"github.com/gin-gonic/gin"
)

// 5 MB is plenty for a photographed lab report.
const maxOCRUploadBytes = 5 << 20

func ParseDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload required", "kind": "invalid_input"})
		return
	}
	if fileHeader.Size > maxOCRUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large", "kind": "invalid_input"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload", "kind": "invalid_input"})
		return
	}
	defer f.Close()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload", "kind": "invalid_input"})
		return
	}

	doc, err := utils.ParseDocument(c.Request.Context(), imageBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
