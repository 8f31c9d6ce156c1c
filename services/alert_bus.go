package services

import (
	"fmt"
	"time"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/models"
	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"

	"gorm.io/gorm"
)

type alertDeps struct {
	db *gorm.DB
	rt *RealtimeHub
}

var _alert alertDeps

func InitAlertDeps(db *gorm.DB, rt *RealtimeHub) {
	_alert = alertDeps{db: db, rt: rt}
}

// EmitRiskAlert records a high-risk finding and fans it out over the
// websocket stream plus email. Safe to call anywhere; a no-op before
// InitAlertDeps so the store paths never depend on the fanout wiring.
func EmitRiskAlert(userID uint, assessmentType string, score int) {
	if _alert.db == nil {
		return
	}
	msg := fmt.Sprintf("Your %s assessment scored %d/100 (high risk). Review the recommendations in the app.", assessmentType, score)
	a := &models.Alert{UserID: userID, Type: "warning", Message: msg, CreatedAt: time.Now()}
	_ = _alert.db.Create(a).Error

	if _alert.rt != nil {
		_alert.rt.Broadcast(userID, map[string]any{
			"kind":  "alert.created",
			"alert": a,
		})
	}

	var user models.User
	if err := _alert.db.First(&user, userID).Error; err == nil {
		_ = utils.SendHighRiskEmail(user.Email, assessmentType, score)
	}
}

// EmitGenerationEvent notifies connected clients that a long-running
// generation finished, so they can fetch the artifact without polling.
func EmitGenerationEvent(userID uint, generationType string, artifactID uint) {
	if _alert.rt == nil {
		return
	}
	_alert.rt.Broadcast(userID, map[string]any{
		"kind":            "generation.completed",
		"generation_type": generationType,
		"artifact_id":     artifactID,
	})
}

// ListAlerts returns a user's most recent alerts, newest first.
func ListAlerts(db *gorm.DB, userID uint, limit int) ([]models.Alert, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var alerts []models.Alert
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&alerts).Error
	return alerts, err
}
