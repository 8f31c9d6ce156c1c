package controllers

import (
	"net/http"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/models"
	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/services"

	"github.com/gin-gonic/gin"
)

type GenerationController struct {
	Svc *services.GenerationService
}

func NewGenerationController(svc *services.GenerationService) *GenerationController {
	return &GenerationController{Svc: svc}
}

type generateInput struct {
	AssessmentID uint `json:"assessmentId"`
}

// GenerateDietPlan blocks for the duration of the model call (typically
// 10–20s); the hard deadline inside the service keeps it bounded.
func (h *GenerationController) GenerateDietPlan(c *gin.Context) {
	h.generate(c, services.GenerationDiet)
}

func (h *GenerationController) GenerateLifestyleAnalysis(c *gin.Context) {
	h.generate(c, services.GenerationLifestyle)
}

func (h *GenerationController) generate(c *gin.Context, generationType string) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "auth"})
		return
	}

	// empty body = generate from the latest assessment
	var input generateInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_input"})
			return
		}
	}

	artifact, err := h.Svc.Generate(c.Request.Context(), userID, input.AssessmentID, generationType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, artifactJSON(artifact))
}

// GetLatest returns the newest artifact of the route's type, 404 when
// the user has none yet.
func (h *GenerationController) GetLatest(generationType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromCtx(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "auth"})
			return
		}

		artifact, err := h.Svc.LatestForUser(c.Request.Context(), userID, generationType)
		if err != nil {
			respondError(c, err)
			return
		}
		if artifact == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "nothing generated yet", "kind": "not_found"})
			return
		}
		c.JSON(http.StatusOK, artifactJSON(artifact))
	}
}

func artifactJSON(a *models.GeneratedArtifact) gin.H {
	out := gin.H{
		"id":                   a.ID,
		"_id":                  a.ID,
		"user_id":              a.UserID,
		"source_assessment_id": a.SourceAssessmentID,
		"generation_type":      a.GenerationType,
		"model":                a.ModelID,
		"created_at":           a.CreatedAt,
	}
	// the reference clients read type-specific content keys
	switch a.GenerationType {
	case services.GenerationDiet:
		out["plan_content"] = a.Content
	case services.GenerationLifestyle:
		out["analysis_content"] = a.Content
	default:
		out["content"] = a.Content
	}
	return out
}
