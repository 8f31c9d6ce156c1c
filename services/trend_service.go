package services

import (
	"context"
	"time"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/models"

	"github.com/samber/lo"
)

// Deltas inside the dead zone count as stable rather than movement.
const trendDeadZone = 3

type TrendService struct {
	assessments *AssessmentService
}

func NewTrendService(assessments *AssessmentService) *TrendService {
	return &TrendService{assessments: assessments}
}

type TrendPoint struct {
	AssessmentType string    `json:"assessment_type"`
	Score          int       `json:"score"`
	Level          string    `json:"level"`
	Timestamp      time.Time `json:"timestamp"`
}

type TrendSummary struct {
	LatestScore       int    `json:"latest_score"`
	DeltaFromPrevious int    `json:"delta_from_previous"`
	Direction         string `json:"direction"` // "improving" | "worsening" | "stable"
}

type TrendReport struct {
	Timeline []TrendPoint            `json:"timeline"`
	Summary  map[string]TrendSummary `json:"summary"`
}

// ComputeTrends recomputes the full report from the store on every call.
// Records are append-only, so no caching or locking is needed; a query
// issued right after a save always sees that assessment.
func (s *TrendService) ComputeTrends(ctx context.Context, userID uint) (*TrendReport, error) {
	rows, err := s.assessments.List(ctx, userID, "", nil)
	if err != nil {
		return nil, err
	}

	timeline := lo.Map(rows, func(a models.Assessment, _ int) TrendPoint {
		return TrendPoint{
			AssessmentType: a.AssessmentType,
			Score:          a.RiskScore,
			Level:          a.RiskLevel,
			Timestamp:      a.CreatedAt,
		}
	})

	// rows are already chronological, so per-type score history stays
	// ordered as we bucket it
	scoresByType := map[string][]int{}
	for _, a := range rows {
		scoresByType[a.AssessmentType] = append(scoresByType[a.AssessmentType], a.RiskScore)
	}

	summary := make(map[string]TrendSummary, len(scoresByType))
	for typ, scores := range scoresByType {
		latest := scores[len(scores)-1]
		delta := 0
		if len(scores) >= 2 {
			delta = latest - scores[len(scores)-2]
		}
		summary[typ] = TrendSummary{
			LatestScore:       latest,
			DeltaFromPrevious: delta,
			Direction:         trendDirection(delta),
		}
	}

	return &TrendReport{Timeline: timeline, Summary: summary}, nil
}

// Lower score is lower risk, so a falling score is an improvement.
func trendDirection(delta int) string {
	switch {
	case delta <= -trendDeadZone:
		return "improving"
	case delta >= trendDeadZone:
		return "worsening"
	default:
		return "stable"
	}
}
