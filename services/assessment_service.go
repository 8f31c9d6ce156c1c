package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/models"
	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"

	"gorm.io/gorm"
)

// Client-declared scores may disagree with the server recomputation by at
// most this many points before the submission is rejected.
const scoreTolerance = 10

type AssessmentService struct{ db *gorm.DB }

func NewAssessmentService(db *gorm.DB) *AssessmentService { return &AssessmentService{db: db} }

// AssessmentInput is one submission. RiskScore/RiskLevel are optional:
// the server normalizer is the source of truth. A declared score is only
// accepted when it agrees with the recomputation within scoreTolerance,
// and a declared level must match the level derived from the stored score.
type AssessmentInput struct {
	AssessmentType string
	RiskScore      *int
	RiskLevel      string
	InputData      map[string]any
}

// Create validates, normalizes and persists one assessment. Validation
// happens before any write; a failed save is retried once (records are
// append-only, so the retry cannot double-apply).
func (s *AssessmentService) Create(ctx context.Context, userID uint, input AssessmentInput) (*models.Assessment, error) {
	if input.AssessmentType == "" {
		return nil, &utils.InvalidInputError{Field: "assessment_type", Reason: "required"}
	}
	if !utils.AssessmentTypeKnown(input.AssessmentType) {
		return nil, &utils.InvalidInputError{Field: "assessment_type", Reason: fmt.Sprintf("unknown assessment type %q", input.AssessmentType)}
	}
	if len(input.InputData) == 0 {
		return nil, &utils.InvalidInputError{Field: "input_data", Reason: "required"}
	}

	computed, err := utils.NormalizeRisk(input.AssessmentType, input.InputData)
	if err != nil {
		return nil, err
	}

	score := computed.Score
	if input.RiskScore != nil {
		declared := *input.RiskScore
		if declared < 0 || declared > 100 {
			return nil, &utils.InvalidInputError{Field: "risk_score", Reason: "must be between 0 and 100"}
		}
		diff := declared - computed.Score
		if diff < -scoreTolerance || diff > scoreTolerance {
			return nil, &utils.InvalidInputError{
				Field:  "risk_score",
				Reason: fmt.Sprintf("declared score %d disagrees with server normalization (%d)", declared, computed.Score),
			}
		}
		score = declared
	}
	// Level always follows the stored score, never the client claim. A
	// declared level is cross-checked the same way the declared score is.
	level := utils.RiskLevelForScore(input.AssessmentType, score)
	if declared := strings.ToLower(strings.TrimSpace(input.RiskLevel)); declared != "" {
		switch declared {
		case utils.RiskLow, utils.RiskMedium, utils.RiskHigh:
		default:
			return nil, &utils.InvalidInputError{Field: "risk_level", Reason: fmt.Sprintf("unknown risk level %q", input.RiskLevel)}
		}
		if declared != level {
			return nil, &utils.InvalidInputError{
				Field:  "risk_level",
				Reason: fmt.Sprintf("declared level %q disagrees with server normalization (%s)", input.RiskLevel, level),
			}
		}
	}

	raw, err := json.Marshal(input.InputData)
	if err != nil {
		return nil, &utils.InvalidInputError{Field: "input_data", Reason: "not serializable"}
	}

	a := &models.Assessment{
		UserID:         userID,
		AssessmentType: input.AssessmentType,
		RiskLevel:      level,
		RiskScore:      score,
		InputData:      string(raw),
	}

	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		// one internal retry before surfacing a storage error
		if err2 := s.db.WithContext(ctx).Create(a).Error; err2 != nil {
			return nil, &utils.StorageError{Op: "assessment save", Err: err2}
		}
	}

	if level == utils.RiskHigh {
		EmitRiskAlert(a.UserID, a.AssessmentType, a.RiskScore)
	}

	return a, nil
}

// List returns a user's assessments ordered chronologically, ties broken
// by insertion order. type and since filters are optional.
func (s *AssessmentService) List(ctx context.Context, userID uint, assessmentType string, since *time.Time) ([]models.Assessment, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if assessmentType != "" {
		q = q.Where("assessment_type = ?", assessmentType)
	}
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}

	var rows []models.Assessment
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, &utils.StorageError{Op: "assessment list", Err: err}
	}
	return rows, nil
}

// Latest returns the newest assessment for the user (optionally of one
// type), or nil when the user has none.
func (s *AssessmentService) Latest(ctx context.Context, userID uint, assessmentType string) (*models.Assessment, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if assessmentType != "" {
		q = q.Where("assessment_type = ?", assessmentType)
	}

	var a models.Assessment
	err := q.Order("created_at DESC, id DESC").First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, &utils.StorageError{Op: "assessment latest", Err: err}
	}
	return &a, nil
}

// Get fetches one assessment by id, enforcing ownership.
func (s *AssessmentService) Get(ctx context.Context, userID, id uint) (*models.Assessment, error) {
	var a models.Assessment
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, &utils.StorageError{Op: "assessment get", Err: err}
	}
	return &a, nil
}

func (s *AssessmentService) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Assessment{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, &utils.StorageError{Op: "assessment count", Err: err}
	}
	return n, nil
}
