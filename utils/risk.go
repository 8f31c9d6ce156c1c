package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Risk levels, ordered.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskResult is the canonical normalization of one assessment submission.
type RiskResult struct {
	Level string `json:"risk_level"`
	Score int    `json:"risk_score"` // 0–100, lower is lower risk
}

// riskRuleSet is the scoring contract for one assessment type. Each type
// owns its field list, weights and level thresholds; registering a new
// type is a purely additive change to riskRuleSets.
type riskRuleSet struct {
	requiredNumeric []string
	score           func(in riskInput) int
	mediumAt        int // score >= mediumAt  → medium
	highAt          int // score >= highAt    → high
}

var riskRuleSets = map[string]riskRuleSet{
	"heart": {
		requiredNumeric: []string{"age", "trestbps", "chol", "thalach"},
		score:           scoreHeart,
		mediumAt:        40,
		highAt:          70,
	},
	"stroke": {
		requiredNumeric: []string{"age", "glucose", "cholesterol"},
		score:           scoreStroke,
		mediumAt:        40,
		highAt:          70,
	},
	"diabetes": {
		requiredNumeric: []string{"age", "glucose"},
		score:           scoreDiabetes,
		mediumAt:        35,
		highAt:          65,
	},
}

// Plausibility bounds for numeric clinical fields; values outside are
// rejected as invalid input rather than scored.
var riskFieldRanges = map[string][2]float64{
	"age":         {1, 120},
	"trestbps":    {50, 300},   // resting systolic, mmHg
	"chol":        {50, 800},   // serum cholesterol, mg/dL
	"cholesterol": {50, 800},
	"thalach":     {40, 250},   // max heart rate achieved
	"oldpeak":     {0, 10},     // ST depression
	"ca":          {0, 4},      // major vessels colored
	"glucose":     {30, 600},   // fasting glucose, mg/dL
	"height":      {50, 250},   // cm
	"weight":      {10, 400},   // kg
	"bmi":         {8, 80},
}

// AssessmentTypeKnown reports whether a rule set exists for the type.
func AssessmentTypeKnown(assessmentType string) bool {
	_, ok := riskRuleSets[strings.ToLower(strings.TrimSpace(assessmentType))]
	return ok
}

// NormalizeRisk maps heterogeneous per-type raw inputs into a canonical
// {level, score} pair. Deterministic and side-effect free: identical
// input always yields an identical result.
func NormalizeRisk(assessmentType string, input map[string]any) (RiskResult, error) {
	typ := strings.ToLower(strings.TrimSpace(assessmentType))
	rules, ok := riskRuleSets[typ]
	if !ok {
		return RiskResult{}, &InvalidInputError{Field: "assessment_type", Reason: fmt.Sprintf("unknown assessment type %q", assessmentType)}
	}

	in := riskInput{fields: input}
	for _, f := range rules.requiredNumeric {
		v, ok := in.Num(f)
		if !ok {
			return RiskResult{}, &InvalidInputError{Field: f, Reason: "required numeric field missing or not a number"}
		}
		if r, bounded := riskFieldRanges[f]; bounded && (v < r[0] || v > r[1]) {
			return RiskResult{}, &InvalidInputError{Field: f, Reason: fmt.Sprintf("value %.1f outside plausible range [%.0f, %.0f]", v, r[0], r[1])}
		}
	}

	score := rules.score(in)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return RiskResult{Level: riskLevelForScore(typ, score), Score: score}, nil
}

// RiskLevelForScore exposes the per-type thresholds so callers that
// accept a client-declared score can derive the matching level.
func RiskLevelForScore(assessmentType string, score int) string {
	return riskLevelForScore(strings.ToLower(strings.TrimSpace(assessmentType)), score)
}

func riskLevelForScore(typ string, score int) string {
	rules, ok := riskRuleSets[typ]
	if !ok {
		return RiskLow
	}
	switch {
	case score >= rules.highAt:
		return RiskHigh
	case score >= rules.mediumAt:
		return RiskMedium
	default:
		return RiskLow
	}
}

// -----------------------------
// Per-type scoring
// -----------------------------

// Cardiac factors follow the conventional exercise-test feature set
// (age, sex, chest pain, resting BP, cholesterol, fasting sugar, ECG,
// max heart rate, exercise angina, ST depression/slope, vessels, thal).
func scoreHeart(in riskInput) int {
	score := 0

	age, _ := in.Num("age")
	switch {
	case age >= 65:
		score += 20
	case age >= 55:
		score += 14
	case age >= 40:
		score += 8
	}

	if in.Str("sex") == "male" || in.Str("sex") == "m" {
		score += 5
	}

	switch in.Str("cp") { // chest pain type
	case "typical":
		score += 10
	case "atypical":
		score += 6
	case "nonanginal", "non-anginal":
		score += 3
	}

	bps, _ := in.Num("trestbps")
	switch {
	case bps >= 160:
		score += 12
	case bps >= 140:
		score += 8
	case bps >= 120:
		score += 4
	}

	chol, _ := in.Num("chol")
	switch {
	case chol >= 240:
		score += 10
	case chol >= 200:
		score += 5
	}

	if truthy(in.Str("fbs")) { // fasting blood sugar > 120
		score += 5
	}
	if rest := in.Str("restecg"); rest != "" && rest != "normal" {
		score += 5
	}

	thalach, _ := in.Num("thalach")
	switch {
	case thalach < 120:
		score += 10
	case thalach < 150:
		score += 5
	}

	if truthy(in.Str("exang")) { // exercise-induced angina
		score += 8
	}

	if oldpeak, ok := in.Num("oldpeak"); ok {
		switch {
		case oldpeak > 2:
			score += 8
		case oldpeak >= 1:
			score += 4
		}
	}

	switch in.Str("slope") {
	case "flat":
		score += 4
	case "downsloping":
		score += 8
	}

	if ca, ok := in.Num("ca"); ok {
		switch {
		case ca >= 3:
			score += 12
		case ca >= 2:
			score += 8
		case ca >= 1:
			score += 5
		}
	}

	switch in.Str("thal") {
	case "fixed":
		score += 5
	case "reversible":
		score += 8
	}

	return score
}

func scoreStroke(in riskInput) int {
	score := 0

	age, _ := in.Num("age")
	switch {
	case age >= 75:
		score += 25
	case age >= 60:
		score += 18
	case age >= 45:
		score += 10
	}

	if sys, ok := in.Systolic("blood_pressure"); ok {
		switch {
		case sys >= 160:
			score += 24
		case sys >= 140:
			score += 16
		case sys >= 120:
			score += 8
		}
	}

	glucose, _ := in.Num("glucose")
	switch {
	case glucose >= 126:
		score += 12
	case glucose >= 100:
		score += 6
	}

	chol, _ := in.Num("cholesterol")
	switch {
	case chol >= 240:
		score += 10
	case chol >= 200:
		score += 5
	}

	switch in.Str("smoking_status") {
	case "current", "smoker", "yes":
		score += 12
	case "former":
		score += 6
	}

	if bmi, ok := in.BMI(); ok {
		switch {
		case bmi >= 30:
			score += 8
		case bmi >= 25:
			score += 4
		}
	}

	if ex := in.Str("exercise_frequency"); strings.Contains(ex, "never") || strings.Contains(ex, "rarely") {
		score += 6
	}

	if fh := in.Str("family_history"); fh != "" && fh != "none" {
		if strings.Contains(fh, "stroke") {
			score += 8
		} else {
			score += 4
		}
	}

	if g := in.Str("gender"); g == "male" || g == "m" {
		score += 3
	}

	return score
}

func scoreDiabetes(in riskInput) int {
	score := 0

	glucose, _ := in.Num("glucose")
	switch {
	case glucose >= 200:
		score += 40
	case glucose >= 126:
		score += 30
	case glucose >= 100:
		score += 15
	}

	age, _ := in.Num("age")
	switch {
	case age >= 65:
		score += 20
	case age >= 50:
		score += 14
	case age >= 35:
		score += 8
	}

	if bmi, ok := in.BMI(); ok {
		switch {
		case bmi >= 30:
			score += 16
		case bmi >= 25:
			score += 8
		}
	}

	if fh := in.Str("family_history"); fh != "" && fh != "none" {
		if strings.Contains(fh, "diabetes") {
			score += 12
		} else {
			score += 4
		}
	}

	if sys, ok := in.Systolic("blood_pressure"); ok {
		switch {
		case sys >= 140:
			score += 8
		case sys >= 130:
			score += 4
		}
	}

	if ex := in.Str("exercise_frequency"); strings.Contains(ex, "never") || strings.Contains(ex, "rarely") {
		score += 6
	}

	switch in.Str("smoking_status") {
	case "current", "smoker", "yes":
		score += 4
	case "former":
		score += 2
	}

	return score
}

// -----------------------------
// Raw field access
// -----------------------------

// riskInput wraps one submission's raw field map. Clients send values as
// strings or JSON numbers interchangeably, so every accessor coerces.
type riskInput struct {
	fields map[string]any
}

func (in riskInput) Num(name string) (float64, bool) {
	v, ok := in.fields[name]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func (in riskInput) Str(name string) string {
	v, ok := in.fields[name]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Systolic reads a blood pressure field given either as a bare number or
// the usual "systolic/diastolic" string.
func (in riskInput) Systolic(name string) (float64, bool) {
	if v, ok := in.Num(name); ok {
		return v, true
	}
	s := in.Str(name)
	if s == "" {
		return 0, false
	}
	parts := strings.SplitN(s, "/", 2)
	sys, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, false
	}
	return sys, true
}

// BMI uses an explicit bmi field when present, else derives from
// height (cm) and weight (kg).
func (in riskInput) BMI() (float64, bool) {
	if bmi, ok := in.Num("bmi"); ok {
		return bmi, true
	}
	h, hok := in.Num("height")
	w, wok := in.Num("weight")
	if !hok || !wok || h <= 0 {
		return 0, false
	}
	m := h / 100.0
	return w / (m * m), true
}

func truthy(s string) bool {
	switch s {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}
