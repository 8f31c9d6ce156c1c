package services

import (
	"context"
	"testing"
	"time"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/models"
	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func heartSubmission() map[string]any {
	return map[string]any{
		"age":      "45",
		"sex":      "male",
		"cp":       "typical",
		"trestbps": "120",
		"chol":     "200",
		"fbs":      "no",
		"restecg":  "normal",
		"thalach":  "150",
		"exang":    "no",
		"oldpeak":  "0.0",
		"slope":    "upsloping",
		"ca":       "0",
		"thal":     "normal",
	}
}

func TestCreateStoresServerComputedScore(t *testing.T) {
	svc := NewAssessmentService(newTestDB(t))
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, AssessmentInput{
		AssessmentType: "heart",
		InputData:      heartSubmission(),
	})
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Equal(t, 32, a.RiskScore)
	assert.Equal(t, utils.RiskLow, a.RiskLevel)
	assert.Contains(t, a.InputData, `"chol":"200"`)
}

func TestCreateAcceptsDeclaredScoreWithinTolerance(t *testing.T) {
	svc := NewAssessmentService(newTestDB(t))
	declared := 25

	a, err := svc.Create(context.Background(), 1, AssessmentInput{
		AssessmentType: "heart",
		RiskScore:      &declared,
		RiskLevel:      "low",
		InputData:      heartSubmission(),
	})
	require.NoError(t, err)
	assert.Equal(t, 25, a.RiskScore, "declared score within tolerance is stored as submitted")
	assert.Equal(t, utils.RiskLow, a.RiskLevel)
}

func TestCreateRejectsDisagreeingScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	declared := 90 // server computes 32 for this input

	_, err := svc.Create(context.Background(), 1, AssessmentInput{
		AssessmentType: "heart",
		RiskScore:      &declared,
		InputData:      heartSubmission(),
	})
	var invalidErr *utils.InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "risk_score", invalidErr.Field)

	// fail fast: nothing persisted on invalid input
	var n int64
	db.Model(&models.Assessment{}).Count(&n)
	assert.Zero(t, n)
}

func TestCreateValidatesBeforePersisting(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	cases := []AssessmentInput{
		{AssessmentType: "", InputData: heartSubmission()},
		{AssessmentType: "phrenology", InputData: heartSubmission()},
		{AssessmentType: "heart"},
		{AssessmentType: "heart", InputData: map[string]any{"age": "45"}},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), 1, in)
		var invalidErr *utils.InvalidInputError
		require.ErrorAs(t, err, &invalidErr)
	}

	var n int64
	db.Model(&models.Assessment{}).Count(&n)
	assert.Zero(t, n)
}

func TestCreateChecksDeclaredLevel(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	ctx := context.Background()

	// server derives low for this input; a matching declared level passes
	a, err := svc.Create(ctx, 1, AssessmentInput{
		AssessmentType: "heart", RiskLevel: "Low", InputData: heartSubmission(),
	})
	require.NoError(t, err)
	assert.Equal(t, utils.RiskLow, a.RiskLevel)

	for _, declared := range []string{"high", "critical"} {
		_, err := svc.Create(ctx, 1, AssessmentInput{
			AssessmentType: "heart", RiskLevel: declared, InputData: heartSubmission(),
		})
		var invalidErr *utils.InvalidInputError
		require.ErrorAs(t, err, &invalidErr, declared)
		assert.Equal(t, "risk_level", invalidErr.Field)
	}

	var n int64
	db.Model(&models.Assessment{}).Count(&n)
	assert.EqualValues(t, 1, n, "rejected levels persist nothing")
}

func TestCreateRetriesFailedSaveOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	attempts := 0
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("count_saves", func(*gorm.DB) {
		attempts++
	}))
	require.NoError(t, db.Migrator().DropTable(&models.Assessment{}))

	_, err := svc.Create(context.Background(), 1, AssessmentInput{
		AssessmentType: "heart", InputData: heartSubmission(),
	})
	var storageErr *utils.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, 2, attempts, "one retry after the initial failure, then give up")
}

func TestCreateNoDedupAndReadAfterWrite(t *testing.T) {
	svc := NewAssessmentService(newTestDB(t))
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, AssessmentInput{AssessmentType: "heart", InputData: heartSubmission()})
	require.NoError(t, err)

	// an identical payload creates a second, distinct record
	second, err := svc.Create(ctx, 1, AssessmentInput{AssessmentType: "heart", InputData: heartSubmission()})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// a list issued straight after the save must already include it
	rows, err := svc.List(ctx, 1, "", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID, "ties broken by insertion order")
	assert.Equal(t, second.ID, rows[1].ID)
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	ctx := context.Background()

	old := &models.Assessment{UserID: 1, AssessmentType: "heart", RiskLevel: "low", RiskScore: 20, InputData: "{}"}
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Create(old).Error)

	_, err := svc.Create(ctx, 1, AssessmentInput{AssessmentType: "heart", InputData: heartSubmission()})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, AssessmentInput{AssessmentType: "heart", InputData: heartSubmission()})
	require.NoError(t, err)

	since := time.Now().Add(-time.Hour)
	rows, err := svc.List(ctx, 1, "heart", &since)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "type and since filters apply, other users excluded")
}

func TestLatest(t *testing.T) {
	svc := NewAssessmentService(newTestDB(t))
	ctx := context.Background()

	latest, err := svc.Latest(ctx, 1, "")
	require.NoError(t, err)
	assert.Nil(t, latest, "no assessments is not an error")

	_, err = svc.Create(ctx, 1, AssessmentInput{AssessmentType: "heart", InputData: heartSubmission()})
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, AssessmentInput{AssessmentType: "heart", InputData: heartSubmission()})
	require.NoError(t, err)

	latest, err = svc.Latest(ctx, 1, "")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc := NewAssessmentService(newTestDB(t))
	ctx := context.Background()

	a, err := svc.Create(ctx, 2, AssessmentInput{AssessmentType: "heart", InputData: heartSubmission()})
	require.NoError(t, err)

	got, err := svc.Get(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "another user's assessment is invisible")

	got, err = svc.Get(ctx, 2, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
}
