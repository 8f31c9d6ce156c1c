package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/models"
	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"

	"gorm.io/gorm"
)

const (
	GenerationDiet      = "diet"
	GenerationLifestyle = "lifestyle"

	defaultGenerationTimeout = 25 * time.Second
	minArtifactLength        = 80
)

// generationTemplate is the per-type prompt and validation contract.
// Adding a generation type means adding an entry here.
type generationTemplate struct {
	system           string
	instructions     string
	requiredSections []string // must appear (case-insensitive) in the output
}

var generationTemplates = map[string]generationTemplate{
	GenerationDiet: {
		system: "You are a registered dietitian creating personalized diet plans from health risk assessments.",
		instructions: "Create a practical one-week diet plan tailored to this risk profile. " +
			"Structure the answer with these sections: Breakfast, Lunch, Dinner, Snacks, Guidelines. " +
			"Keep portions and food choices specific.",
		requiredSections: []string{"breakfast", "lunch", "dinner"},
	},
	GenerationLifestyle: {
		system: "You are a preventive health coach analyzing lifestyle factors from health risk assessments.",
		instructions: "Write a lifestyle analysis for this risk profile. " +
			"Structure the answer with these sections: Exercise, Sleep, Stress Management, Habits To Change. " +
			"Be concrete about frequency and duration.",
		requiredSections: []string{"exercise", "sleep", "stress"},
	},
}

type GenerationService struct {
	db          *gorm.DB
	assessments *AssessmentService
	llm         ChatCompleter
	timeout     time.Duration
}

func NewGenerationService(db *gorm.DB, assessments *AssessmentService, llm ChatCompleter) *GenerationService {
	timeout := defaultGenerationTimeout
	if v := os.Getenv("GENERATION_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return &GenerationService{db: db, assessments: assessments, llm: llm, timeout: timeout}
}

// Generate runs the full pipeline: resolve the source assessment, build
// the prompt, call the model under a hard deadline, validate, persist.
// The artifact is written only after validation passes — any failure
// along the way leaves the store untouched.
func (s *GenerationService) Generate(ctx context.Context, userID uint, assessmentID uint, generationType string) (*models.GeneratedArtifact, error) {
	tmpl, ok := generationTemplates[generationType]
	if !ok {
		return nil, &utils.InvalidInputError{Field: "generation_type", Reason: fmt.Sprintf("unknown generation type %q", generationType)}
	}

	var assessment *models.Assessment
	var err error
	if assessmentID != 0 {
		assessment, err = s.assessments.Get(ctx, userID, assessmentID)
	} else {
		assessment, err = s.assessments.Latest(ctx, userID, "")
	}
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, &utils.NoAssessmentError{UserID: userID}
	}

	messages := []ChatMessage{
		{Role: "system", Content: tmpl.system},
		{Role: "user", Content: buildGenerationPrompt(assessment, tmpl)},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, modelID, err := s.llm.Complete(callCtx, messages)
	if err != nil {
		return nil, err
	}

	if err := validateArtifact(content, tmpl); err != nil {
		return nil, err
	}

	artifact := &models.GeneratedArtifact{
		UserID:             userID,
		SourceAssessmentID: assessment.ID,
		GenerationType:     generationType,
		Content:            content,
		ModelID:            modelID,
	}
	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		if err2 := s.db.WithContext(ctx).Create(artifact).Error; err2 != nil {
			return nil, &utils.StorageError{Op: "artifact save", Err: err2}
		}
	}

	EmitGenerationEvent(userID, generationType, artifact.ID)

	return artifact, nil
}

// LatestForUser returns the newest artifact of the given type, or nil.
func (s *GenerationService) LatestForUser(ctx context.Context, userID uint, generationType string) (*models.GeneratedArtifact, error) {
	var artifact models.GeneratedArtifact
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND generation_type = ?", userID, generationType).
		Order("created_at DESC, id DESC").
		First(&artifact).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, &utils.StorageError{Op: "artifact latest", Err: err}
	}
	return &artifact, nil
}

// buildGenerationPrompt renders the risk profile deterministically:
// input fields are emitted in sorted order so the same assessment always
// produces the same prompt.
func buildGenerationPrompt(a *models.Assessment, tmpl generationTemplate) string {
	var sb bytes.Buffer
	sb.WriteString("Patient risk profile:\n")
	sb.WriteString(fmt.Sprintf("- Assessment type: %s\n", a.AssessmentType))
	sb.WriteString(fmt.Sprintf("- Risk level: %s (score %d/100, lower is better)\n", a.RiskLevel, a.RiskScore))

	var fields map[string]any
	if err := json.Unmarshal([]byte(a.InputData), &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %v\n", k, fields[k]))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(tmpl.instructions)
	return sb.String()
}

func validateArtifact(content string, tmpl generationTemplate) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return &utils.GenerationError{Reason: "model returned empty content"}
	}
	if len(trimmed) < minArtifactLength {
		return &utils.GenerationError{Reason: "model returned implausibly short content"}
	}
	lower := strings.ToLower(trimmed)
	for _, section := range tmpl.requiredSections {
		if !strings.Contains(lower, section) {
			return &utils.GenerationError{Reason: fmt.Sprintf("missing expected section %q", section)}
		}
	}
	return nil
}
