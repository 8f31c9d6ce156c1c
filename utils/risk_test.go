package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heartInput() map[string]any {
	// values as strings, the way web clients submit them
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

func TestNormalizeRiskHeart(t *testing.T) {
	res, err := NormalizeRisk("heart", heartInput())
	require.NoError(t, err)

	// age 45 (+8), male (+5), typical cp (+10), bps 120 (+4), chol 200 (+5)
	assert.Equal(t, 32, res.Score)
	assert.Equal(t, RiskLow, res.Level)
}

func TestNormalizeRiskDeterministic(t *testing.T) {
	first, err := NormalizeRisk("heart", heartInput())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := NormalizeRisk("heart", heartInput())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNormalizeRiskStrokeMixedValueTypes(t *testing.T) {
	// numbers arrive as JSON numbers here, and blood pressure as "sys/dia"
	input := map[string]any{
		"age":                float64(45),
		"gender":             "male",
		"height":             float64(180),
		"weight":             float64(80),
		"glucose":            float64(110),
		"blood_pressure":     "130/85",
		"cholesterol":        float64(200),
		"smoking_status":     "never",
		"exercise_frequency": "3-4 times a week",
		"family_history":     "diabetes",
	}

	res, err := NormalizeRisk("stroke", input)
	require.NoError(t, err)

	// age (+10), systolic 130 (+8), glucose 110 (+6), chol 200 (+5),
	// family history (+4), male (+3)
	assert.Equal(t, 36, res.Score)
	assert.Equal(t, RiskLow, res.Level)
}

func TestNormalizeRiskDiabetesHigh(t *testing.T) {
	input := map[string]any{
		"age":                "66",
		"glucose":            "210",
		"bmi":                "32",
		"family_history":     "diabetes",
		"blood_pressure":     "145/95",
		"exercise_frequency": "never",
		"smoking_status":     "current",
	}

	res, err := NormalizeRisk("diabetes", input)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score, "score must clamp at 100")
	assert.Equal(t, RiskHigh, res.Level)
}

func TestNormalizeRiskMissingRequiredField(t *testing.T) {
	input := heartInput()
	delete(input, "chol")

	_, err := NormalizeRisk("heart", input)
	require.Error(t, err)

	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "chol", invalidErr.Field)
}

func TestNormalizeRiskNonNumericValue(t *testing.T) {
	input := heartInput()
	input["age"] = "forty-five"

	_, err := NormalizeRisk("heart", input)
	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "age", invalidErr.Field)
}

func TestNormalizeRiskImplausibleValue(t *testing.T) {
	input := heartInput()
	input["chol"] = "9000"

	_, err := NormalizeRisk("heart", input)
	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "chol", invalidErr.Field)
}

func TestNormalizeRiskUnknownType(t *testing.T) {
	_, err := NormalizeRisk("phrenology", map[string]any{"age": "30"})
	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "assessment_type", invalidErr.Field)
}

func TestRiskLevelThresholds(t *testing.T) {
	assert.Equal(t, RiskLow, RiskLevelForScore("heart", 39))
	assert.Equal(t, RiskMedium, RiskLevelForScore("heart", 40))
	assert.Equal(t, RiskMedium, RiskLevelForScore("heart", 69))
	assert.Equal(t, RiskHigh, RiskLevelForScore("heart", 70))

	// diabetes owns tighter thresholds
	assert.Equal(t, RiskMedium, RiskLevelForScore("diabetes", 35))
	assert.Equal(t, RiskHigh, RiskLevelForScore("diabetes", 65))
}
