package models

import (
    "gorm.io/gorm"
)

// An AI-generated diet plan or lifestyle analysis. Rows are written only
// after the model response passed validation, so a stored artifact is
// always complete.
type GeneratedArtifact struct {
    gorm.Model
    UserID             uint   `gorm:"index;not null"`
    SourceAssessmentID uint   `gorm:"index;not null"`
    GenerationType     string `gorm:"size:16;index;not null"` // "diet" | "lifestyle"
    Content            string `gorm:"type:text;not null"`
    ModelID            string `gorm:"size:64"` // which LLM produced the content
}
