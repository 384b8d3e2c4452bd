package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talentops/Interview-Autopilot/internal/config"
	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// ApprovalService binds the human decision to a pending proposal: exactly one
// approve wins the request, creates the interview and books the calendars.
type ApprovalService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
	Interviews   *InterviewService
	Notifier     Notifier
	Cfg          *config.Config
}

func NewApprovalService(db *gorm.DB, availability *AvailabilityService, interviews *InterviewService, notifier Notifier, cfg *config.Config) *ApprovalService {
	return &ApprovalService{
		DB:           db,
		Availability: availability,
		Interviews:   interviews,
		Notifier:     notifier,
		Cfg:          cfg,
	}
}

// Approve consumes the request and creates the interview from the chosen
// option. Consumption is a conditional update on the consumed flag, so under
// N concurrent calls exactly one succeeds and the rest get ErrAlreadyConsumed.
func (s *ApprovalService) Approve(requestID, optionID uint, interviewerIDs []uint) (*models.Interview, error) {
	var req models.SchedulingRequest
	if err := s.DB.First(&req, requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.Consumed {
		return nil, ErrAlreadyConsumed
	}

	// Defensive re-validation: the roster may have changed between propose
	// and approve, and the proposed slots are only valid for the original set.
	var proposed []models.ProposalInterviewer
	if err := s.DB.Where("scheduling_request_id = ?", requestID).Find(&proposed).Error; err != nil {
		return nil, err
	}
	if !sameIDSet(interviewerIDs, proposed) {
		return nil, ErrParticipantMismatch
	}

	var opt models.SchedulingOption
	if err := s.DB.First(&opt, optionID).Error; err != nil || opt.SchedulingRequestID != requestID {
		return nil, ErrOptionNotFound
	}

	var cand models.Candidate
	if err := s.DB.First(&cand, req.CandidateID).Error; err != nil {
		return nil, ErrCandidateNotFound
	}

	var interview *models.Interview
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SchedulingRequest{}).
			Where("id = ? AND consumed = ?", requestID, false).
			Update("consumed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyConsumed
		}

		created, err := s.createInterview(tx, createInterviewParams{
			Candidate:      cand,
			JobTitle:       req.JobTitle,
			RecruiterName:  req.RecruiterName,
			RecruiterEmail: req.RecruiterEmail,
			Start:          opt.Start,
			End:            opt.End,
			InterviewerIDs: interviewerIDs,
		})
		if err != nil {
			return err
		}
		interview = created

		return tx.Model(&models.SchedulingRequest{}).
			Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"approved_option_id": opt.ID,
				"interview_id":       interview.ID,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Proposal #%d approved: interview #%d scheduled %s – %s",
		requestID, interview.ID,
		interview.ScheduledStart.In(s.Cfg.Timezone).Format("2006-01-02 15:04"),
		interview.ScheduledEnd.In(s.Cfg.Timezone).Format("15:04"))

	// Collaborator calls stay outside the transaction: a slow or dead
	// notifier must never roll back a booked interview.
	s.notifyScheduled(interview, cand, interviewerIDs)
	return interview, nil
}

// StartInterview is the instant path: resolve availability, take the best
// slot and create the interview without a human approval round-trip.
func (s *ApprovalService) StartInterview(p ProposeParams) (*models.Interview, error) {
	var cand models.Candidate
	if err := s.DB.First(&cand, p.CandidateID).Error; err != nil {
		return nil, ErrCandidateNotFound
	}
	if len(p.InterviewerIDs) == 0 {
		return nil, ErrInterviewerNotFound
	}
	var count int64
	if err := s.DB.Model(&models.User{}).Where("id IN ?", p.InterviewerIDs).Count(&count).Error; err != nil {
		return nil, err
	}
	if count != int64(len(uniqueIDs(p.InterviewerIDs))) {
		return nil, ErrInterviewerNotFound
	}

	duration := time.Duration(p.DurationMinutes) * time.Minute
	free, err := s.Availability.FreeIntervals(p.InterviewerIDs, p.Window, duration)
	if err != nil {
		return nil, err
	}
	slot := sliceAndRank(free, duration, 1)[0]

	var interview *models.Interview
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		created, err := s.createInterview(tx, createInterviewParams{
			Candidate:      cand,
			JobTitle:       p.JobTitle,
			RecruiterName:  p.RecruiterName,
			RecruiterEmail: p.RecruiterEmail,
			Start:          slot.start,
			End:            slot.end,
			InterviewerIDs: p.InterviewerIDs,
		})
		interview = created
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⚡ Instant interview #%d scheduled for candidate %d (%s)", interview.ID, cand.ID, p.JobTitle)
	s.notifyScheduled(interview, cand, p.InterviewerIDs)
	return interview, nil
}

type createInterviewParams struct {
	Candidate      models.Candidate
	JobTitle       string
	RecruiterName  string
	RecruiterEmail string
	Start          time.Time
	End            time.Time
	InterviewerIDs []uint
}

// createInterview writes the interview row, its participants, the busy
// blocks on every interviewer's calendar and the reminder task, all inside
// the caller's transaction.
func (s *ApprovalService) createInterview(tx *gorm.DB, p createInterviewParams) (*models.Interview, error) {
	interview := &models.Interview{
		CandidateID:    p.Candidate.ID,
		JobTitle:       p.JobTitle,
		RecruiterName:  p.RecruiterName,
		RecruiterEmail: p.RecruiterEmail,
		ScheduledStart: p.Start,
		ScheduledEnd:   p.End,
		Status:         models.StatusScheduled,
		VideoLink:      "pending",
	}
	if err := tx.Create(interview).Error; err != nil {
		return nil, err
	}

	link := videoLink(interview.ID)
	if err := tx.Model(interview).Update("video_link", link).Error; err != nil {
		return nil, err
	}
	interview.VideoLink = link

	for _, uid := range p.InterviewerIDs {
		row := models.InterviewParticipant{InterviewID: interview.ID, UserID: uid}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		title := fmt.Sprintf("Interview: %s (%s)", p.Candidate.Name, p.JobTitle)
		if err := s.Availability.BlockTime(tx, uid, p.Start, p.End, title); err != nil {
			return nil, err
		}
	}

	fireAt := p.Start.Add(-s.Cfg.ReminderLead)
	if err := s.Interviews.RegisterTask(tx, interview.ID, models.TaskReminder, fireAt); err != nil {
		return nil, err
	}
	return interview, nil
}

func (s *ApprovalService) notifyScheduled(interview *models.Interview, cand models.Candidate, interviewerIDs []uint) {
	when := fmt.Sprintf("%s–%s (%s)",
		interview.ScheduledStart.In(s.Cfg.Timezone).Format("2006-01-02 15:04"),
		interview.ScheduledEnd.In(s.Cfg.Timezone).Format("15:04"),
		s.Cfg.Timezone)
	subject := fmt.Sprintf("Interview scheduled: %s - %s", cand.Name, interview.JobTitle)
	body := fmt.Sprintf(
		"Interview scheduled.\n\nCandidate: %s\nJob: %s\nWhen: %s\nLink: %s\n\nResume (short):\n%s\n",
		cand.Name, interview.JobTitle, when, interview.VideoLink, cand.ResumeText)

	if err := s.Notifier.SendEmail(cand.Email, subject, body); err != nil {
		log.Printf("⚠️ Failed to email candidate %s: %v", cand.Email, err)
	}
	var users []models.User
	if err := s.DB.Where("id IN ?", interviewerIDs).Find(&users).Error; err == nil {
		for _, u := range users {
			if err := s.Notifier.SendEmail(u.Email, subject, body); err != nil {
				log.Printf("⚠️ Failed to email interviewer %s: %v", u.Email, err)
			}
		}
	}
	if err := s.Notifier.SendSlack(fmt.Sprintf("Interview scheduled: %s - %s, %s. Link: %s",
		cand.Name, interview.JobTitle, when, interview.VideoLink)); err != nil {
		log.Printf("⚠️ Failed to post Slack notification: %v", err)
	}
}

func videoLink(interviewID uint) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("https://meet.jit.si/interview-%d-%s", interviewID, suffix)
}

func sameIDSet(ids []uint, proposed []models.ProposalInterviewer) bool {
	want := make(map[uint]bool, len(proposed))
	for _, p := range proposed {
		want[p.UserID] = true
	}
	got := make(map[uint]bool, len(ids))
	for _, id := range ids {
		got[id] = true
	}
	if len(want) != len(got) {
		return false
	}
	for id := range got {
		if !want[id] {
			return false
		}
	}
	return true
}
