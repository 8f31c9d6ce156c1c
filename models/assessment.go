package models

import (
    "gorm.io/gorm"
)

// One submitted risk assessment. Append-only: records are never updated,
// a newer assessment of the same type supersedes older ones.
type Assessment struct {
    gorm.Model
    UserID         uint   `gorm:"index;not null"`
    AssessmentType string `gorm:"size:32;index;not null"` // "heart" | "stroke" | "diabetes"
    RiskLevel      string `gorm:"size:16;not null"`       // "low" | "medium" | "high"
    RiskScore      int    `gorm:"not null"`               // 0–100
    InputData      string `gorm:"type:text"`              // raw submission fields, JSON-encoded
}
