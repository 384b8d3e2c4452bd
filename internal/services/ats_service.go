package services

import (
	"log"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// DecisionPolicy maps the submitted feedback onto an ATS status. The
// thresholds are data, not code: ratios are measured against the expected
// panel size (not against whoever happened to submit), so a half-empty
// feedback set lands in NEEDS_REVIEW instead of being promoted on one vote.
type DecisionPolicy struct {
	// AdvanceRatio: strictly more than this share of the panel must say
	// ADVANCE for the ATS status to become ADVANCE. Same for RejectRatio.
	AdvanceRatio float64
	RejectRatio  float64
}

var DefaultDecisionPolicy = DecisionPolicy{AdvanceRatio: 0.5, RejectRatio: 0.5}

// Map applies the policy. expected is the interviewer panel size.
func (p DecisionPolicy) Map(expected int, feedback []models.Feedback) string {
	if expected == 0 {
		return models.ATSNeedsReview
	}

	advances, rejects := 0, 0
	for _, f := range feedback {
		switch f.Decision {
		case models.DecisionAdvance:
			advances++
		case models.DecisionReject:
			rejects++
		}
	}

	switch {
	case float64(advances) > p.AdvanceRatio*float64(expected):
		return models.ATSAdvance
	case float64(rejects) > p.RejectRatio*float64(expected):
		return models.ATSReject
	default:
		return models.ATSNeedsReview
	}
}

type ATSService struct {
	DB     *gorm.DB
	Policy DecisionPolicy
}

func NewATSService(db *gorm.DB) *ATSService {
	return &ATSService{DB: db, Policy: DefaultDecisionPolicy}
}

// Sync creates or replaces the interview's ATS record. Called exactly once
// per consolidation; a re-run overwrites rather than duplicates.
func (s *ATSService) Sync(tx *gorm.DB, interviewID uint, status, recommendation, summary string) error {
	var record models.ATSRecord
	err := tx.Where("interview_id = ?", interviewID).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		record = models.ATSRecord{InterviewID: interviewID}
	} else if err != nil {
		return err
	}

	record.Status = status
	record.Recommendation = recommendation
	record.Summary = summary
	record.UpdatedAt = time.Now()

	if err := tx.Save(&record).Error; err != nil {
		return err
	}
	log.Printf("📤 ATS synced for interview #%d: status=%s recommendation=%q", interviewID, status, recommendation)
	return nil
}
