package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/config"
	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// FeedbackService collects per-interviewer feedback, detects completion or
// timeout, and turns the collected set into the final report + ATS record.
type FeedbackService struct {
	DB         *gorm.DB
	Interviews *InterviewService
	LLM        *LLMService
	ATS        *ATSService
	Notifier   Notifier
	Tokens     *TokenService
	Cfg        *config.Config
}

func NewFeedbackService(db *gorm.DB, interviews *InterviewService, llm *LLMService, ats *ATSService, notifier Notifier, tokens *TokenService, cfg *config.Config) *FeedbackService {
	return &FeedbackService{
		DB:         db,
		Interviews: interviews,
		LLM:        llm,
		ATS:        ats,
		Notifier:   notifier,
		Tokens:     tokens,
		Cfg:        cfg,
	}
}

func validDecision(decision string) bool {
	switch decision {
	case models.DecisionAdvance, models.DecisionReject, models.DecisionHold:
		return true
	}
	return false
}

// Submit upserts one interviewer's feedback. Resubmission replaces the
// previous record — one record per (interview, interviewer), always.
func (s *FeedbackService) Submit(interviewID, userID uint, decision, comment string) error {
	if !validDecision(decision) {
		return ErrInvalidDecision
	}

	complete := false
	err := s.Interviews.WithLock(interviewID, func() error {
		var interview models.Interview
		if err := s.DB.First(&interview, interviewID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrInterviewNotFound
			}
			return err
		}
		if interview.Status != models.StatusAwaitingFeedback {
			return ErrNotAwaitingFeedback
		}

		var participant int64
		err := s.DB.Model(&models.InterviewParticipant{}).
			Where("interview_id = ? AND user_id = ?", interviewID, userID).
			Count(&participant).Error
		if err != nil {
			return err
		}
		if participant == 0 {
			return ErrNotAParticipant
		}

		var fb models.Feedback
		err = s.DB.Where("interview_id = ? AND user_id = ?", interviewID, userID).First(&fb).Error
		if err == gorm.ErrRecordNotFound {
			fb = models.Feedback{InterviewID: interviewID, UserID: userID}
		} else if err != nil {
			return err
		}
		fb.Decision = decision
		fb.Comment = comment
		fb.SubmittedAt = time.Now()
		if err := s.DB.Save(&fb).Error; err != nil {
			return err
		}

		log.Printf("📝 Feedback recorded: interview #%d, interviewer %d -> %s", interviewID, userID, decision)

		complete, err = s.allFeedbackIn(interviewID)
		return err
	})
	if err != nil {
		return err
	}

	if complete {
		log.Printf("🧮 Interview #%d: all feedback in, consolidating...", interviewID)
		return s.consolidate(interviewID)
	}
	return nil
}

// SubmitByToken resolves a signed feedback link and submits on behalf of the
// interviewer it encodes.
func (s *FeedbackService) SubmitByToken(token, decision, comment string) error {
	interviewID, userID, err := s.Tokens.ParseFeedbackToken(token)
	if err != nil {
		return err
	}
	return s.Submit(interviewID, userID, decision, comment)
}

// RequestFeedback moves the interview into AWAITING_FEEDBACK, arms the
// feedback-timeout task and mails every interviewer a signed feedback link.
// Idempotent: a second call on an already-moved interview is a no-op.
func (s *FeedbackService) RequestFeedback(interviewID uint) error {
	var interview models.Interview
	requested := false

	err := s.Interviews.WithLock(interviewID, func() error {
		if err := s.DB.First(&interview, interviewID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrInterviewNotFound
			}
			return err
		}
		if interview.Status != models.StatusInProgress {
			return nil // already moved on (or canceled) — nothing to do
		}

		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.Interviews.transitionLocked(tx, interviewID, models.StatusAwaitingFeedback); err != nil {
				return err
			}
			now := time.Now()
			if err := tx.Model(&models.Interview{}).Where("id = ?", interviewID).
				Update("feedback_requested_at", now).Error; err != nil {
				return err
			}
			deadline := interview.ScheduledEnd.Add(s.Cfg.FeedbackWindow)
			if err := s.Interviews.RegisterTask(tx, interviewID, models.TaskFeedbackTimeout, deadline); err != nil {
				return err
			}
			requested = true
			return nil
		})
	})
	if err != nil || !requested {
		return err
	}

	// Notifications go out after the lock is released.
	s.notifyFeedbackRequested(&interview)
	return nil
}

// HandleTimeout runs when the feedback-timeout task fires: consolidate with
// whatever subset of feedback exists, possibly none. Availability over
// completeness — the pipeline never waits forever for a silent interviewer.
func (s *FeedbackService) HandleTimeout(interviewID uint) error {
	var interview models.Interview
	if err := s.DB.First(&interview, interviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	if interview.Status != models.StatusAwaitingFeedback {
		return nil
	}
	log.Printf("⏰ Interview #%d: feedback window elapsed, consolidating with partial feedback", interviewID)
	return s.consolidate(interviewID)
}

func (s *FeedbackService) allFeedbackIn(interviewID uint) (bool, error) {
	var expected, got int64
	err := s.DB.Model(&models.InterviewParticipant{}).
		Where("interview_id = ?", interviewID).Count(&expected).Error
	if err != nil {
		return false, err
	}
	err = s.DB.Model(&models.Feedback{}).
		Where("interview_id = ?", interviewID).Count(&got).Error
	if err != nil {
		return false, err
	}
	return expected > 0 && got >= expected, nil
}

// consolidate generates the summary, syncs the ATS record and finishes the
// interview. The LLM call runs before the lock is taken; the status re-check
// under the lock makes concurrent consolidations collapse into one.
func (s *FeedbackService) consolidate(interviewID uint) error {
	var interview models.Interview
	if err := s.DB.First(&interview, interviewID).Error; err != nil {
		return err
	}
	var cand models.Candidate
	if err := s.DB.First(&cand, interview.CandidateID).Error; err != nil {
		return err
	}
	participants, err := s.Interviews.Participants(interviewID)
	if err != nil {
		return err
	}
	var feedback []models.Feedback
	if err := s.DB.Where("interview_id = ?", interviewID).Find(&feedback).Error; err != nil {
		return err
	}

	names := make(map[uint]string, len(participants))
	for _, u := range participants {
		names[u.ID] = u.Name
	}
	items := make([]FeedbackItem, 0, len(feedback))
	for _, f := range feedback {
		name := names[f.UserID]
		if name == "" {
			name = fmt.Sprintf("User %d", f.UserID)
		}
		items = append(items, FeedbackItem{InterviewerName: name, Decision: f.Decision, Comment: f.Comment})
	}

	summary := s.LLM.Summarize(context.Background(), cand.Name, interview.JobTitle, items)
	atsStatus := s.ATS.Policy.Map(len(participants), feedback)

	applied := false
	err = s.Interviews.WithLock(interviewID, func() error {
		var current models.Interview
		if err := s.DB.First(&current, interviewID).Error; err != nil {
			return err
		}
		if current.Status != models.StatusAwaitingFeedback {
			return nil // someone else consolidated, or the interview was canceled
		}

		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.Interviews.transitionLocked(tx, interviewID, models.StatusFeedbackReceived); err != nil {
				return err
			}
			if err := tx.Model(&models.Interview{}).Where("id = ?", interviewID).
				Update("consolidated_at", time.Now()).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.ScheduledTask{}).
				Where("interview_id = ? AND consumed = ?", interviewID, false).
				Update("consumed", true).Error; err != nil {
				return err
			}
			if err := s.ATS.Sync(tx, interviewID, atsStatus, summary.Recommendation, summary.Narrative); err != nil {
				return err
			}
			applied = true
			return nil
		})
	})
	if err != nil || !applied {
		return err
	}

	s.notifyReport(&interview, cand, summary)
	return nil
}

func (s *FeedbackService) notifyFeedbackRequested(interview *models.Interview) {
	var cand models.Candidate
	if err := s.DB.First(&cand, interview.CandidateID).Error; err != nil {
		log.Printf("⚠️ Feedback request notify skipped: %v", err)
		return
	}
	users, err := s.Interviews.Participants(interview.ID)
	if err != nil {
		log.Printf("⚠️ Feedback request notify skipped: %v", err)
		return
	}

	for _, u := range users {
		token, err := s.Tokens.MakeFeedbackToken(interview.ID, u.ID)
		if err != nil {
			log.Printf("⚠️ Could not sign feedback token for user %d: %v", u.ID, err)
			continue
		}
		url := fmt.Sprintf("%s/f/%s", s.Cfg.BaseURL, token)
		subject := fmt.Sprintf("Feedback requested: %s - %s", cand.Name, interview.JobTitle)
		body := fmt.Sprintf(
			"Please leave your interview feedback.\n\nCandidate: %s\nJob: %s\nFeedback form: %s\n",
			cand.Name, interview.JobTitle, url)
		if err := s.Notifier.SendEmail(u.Email, subject, body); err != nil {
			log.Printf("⚠️ Failed to email interviewer %s: %v", u.Email, err)
		}
		if err := s.Notifier.SendSlack(fmt.Sprintf("Feedback: %s -> %s", u.Name, url)); err != nil {
			log.Printf("⚠️ Failed to post Slack notification: %v", err)
		}
	}
}

func (s *FeedbackService) notifyReport(interview *models.Interview, cand models.Candidate, summary SummaryResult) {
	subject := fmt.Sprintf("Interview report: %s - %s", cand.Name, interview.JobTitle)
	body := fmt.Sprintf(
		"Report generated.\n\nCandidate: %s\nJob: %s\nRecommendation: %s\n\n%s\n\nReport link: %s/reports/%d\n",
		cand.Name, interview.JobTitle, summary.Recommendation, summary.Narrative, s.Cfg.BaseURL, interview.ID)
	if err := s.Notifier.SendEmail(interview.RecruiterEmail, subject, body); err != nil {
		log.Printf("⚠️ Failed to email recruiter %s: %v", interview.RecruiterEmail, err)
	}
	if err := s.Notifier.SendSlack(fmt.Sprintf("Report ready: %s - %s", cand.Name, summary.Recommendation)); err != nil {
		log.Printf("⚠️ Failed to post Slack notification: %v", err)
	}
}
