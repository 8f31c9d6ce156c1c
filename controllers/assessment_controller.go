package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/models"
	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/services"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Svc    *services.AssessmentService
	Trends *services.TrendService
}

func NewAssessmentController(svc *services.AssessmentService, trends *services.TrendService) *AssessmentController {
	return &AssessmentController{Svc: svc, Trends: trends}
}

// reserved payload keys that are not clinical input fields
var assessmentMetaKeys = map[string]struct{}{
	"assessment_type": {},
	"risk_level":      {},
	"risk_score":      {},
	"input_data":      {},
}

func (h *AssessmentController) Create(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "auth"})
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_input"})
		return
	}

	input := parseAssessmentPayload(raw)
	a, err := h.Svc.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assessmentJSON(a))
}

func (h *AssessmentController) List(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "auth"})
		return
	}

	var since *time.Time
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			t, err = time.Parse("2006-01-02", v)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since timestamp", "kind": "invalid_input"})
			return
		}
		since = &t
	}

	rows, err := h.Svc.List(c.Request.Context(), userID, c.Query("type"), since)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, assessmentJSON(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"assessments": out})
}

// DebugCount is the support endpoint that cross-checks the store against
// the trend pipeline: the timeline must contain exactly one point per
// stored assessment.
func (h *AssessmentController) DebugCount(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": "auth"})
		return
	}

	count, err := h.Svc.CountForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := h.Trends.ComputeTrends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":          count,
		"timeline_count": len(report.Timeline),
		"consistent":     count == int64(len(report.Timeline)),
	})
}

// --- helpers ---

// parseAssessmentPayload accepts both payload shapes the reference
// clients send: clinical fields wrapped in input_data, or flat at the
// top level next to assessment_type.
func parseAssessmentPayload(raw map[string]any) services.AssessmentInput {
	input := services.AssessmentInput{}

	if v, ok := raw["assessment_type"].(string); ok {
		input.AssessmentType = v
	}
	if v, ok := raw["risk_level"].(string); ok {
		input.RiskLevel = v
	}
	switch v := raw["risk_score"].(type) {
	case float64:
		score := int(v)
		input.RiskScore = &score
	case json.Number:
		if f, err := v.Float64(); err == nil {
			score := int(f)
			input.RiskScore = &score
		}
	}

	if wrapped, ok := raw["input_data"].(map[string]any); ok {
		input.InputData = wrapped
		return input
	}

	flat := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, reserved := assessmentMetaKeys[k]; reserved {
			continue
		}
		flat[k] = v
	}
	input.InputData = flat
	return input
}

func assessmentJSON(a *models.Assessment) gin.H {
	var fields map[string]any
	_ = json.Unmarshal([]byte(a.InputData), &fields)

	return gin.H{
		// reference clients read either key
		"id":              a.ID,
		"_id":             a.ID,
		"user_id":         a.UserID,
		"assessment_type": a.AssessmentType,
		"risk_level":      a.RiskLevel,
		"risk_score":      a.RiskScore,
		"input_data":      fields,
		"created_at":      a.CreatedAt,
	}
}
