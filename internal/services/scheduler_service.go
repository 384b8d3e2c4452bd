package services

import (
	"fmt"
	"log"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/config"
	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// SchedulerService is the time-driven half of the engine: it polls on a
// fixed cadence and fires everything that became due since the last pass.
// Firing is range-based ("due at or before now"), so a missed or late poll
// never loses a transition, and the consumed-flag claim makes overlapping
// passes safe.
type SchedulerService struct {
	DB         *gorm.DB
	Interviews *InterviewService
	Feedback   *FeedbackService
	Notifier   Notifier
	Cfg        *config.Config

	stopChan chan struct{}
}

func NewSchedulerService(db *gorm.DB, interviews *InterviewService, feedback *FeedbackService, notifier Notifier, cfg *config.Config) *SchedulerService {
	return &SchedulerService{
		DB:         db,
		Interviews: interviews,
		Feedback:   feedback,
		Notifier:   notifier,
		Cfg:        cfg,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the polling loop. Runs one pass immediately on startup so a
// restart catches up on anything that became due while the process was down.
func (s *SchedulerService) Start() {
	ticker := time.NewTicker(s.Cfg.TickInterval)
	log.Printf("⏱️ Scheduler started (every %v)", s.Cfg.TickInterval)

	go s.Tick()
	go func() {
		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (s *SchedulerService) Stop() {
	close(s.stopChan)
	log.Println("⏱️ Scheduler stopped")
}

// Tick is one full poll pass. Safe to call concurrently with itself.
func (s *SchedulerService) Tick() {
	now := time.Now()
	s.fireDueTasks(now)
	s.startDueInterviews(now)
	s.finishDueInterviews(now)
}

// fireDueTasks fires every pending task due at or before now. Each task is
// claimed with a conditional update first; whoever loses the claim skips.
func (s *SchedulerService) fireDueTasks(now time.Time) {
	var tasks []models.ScheduledTask
	err := s.DB.
		Where("consumed = ? AND fire_at <= ?", false, now).
		Order("fire_at asc").
		Find(&tasks).Error
	if err != nil {
		log.Printf("❌ Scheduler: task scan failed: %v", err)
		return
	}

	for _, task := range tasks {
		if !s.claimTask(task.ID) {
			continue // another pass got there first
		}
		switch task.Kind {
		case models.TaskReminder:
			if err := s.fireReminder(task.InterviewID); err != nil {
				log.Printf("❌ Scheduler: reminder for interview #%d failed: %v", task.InterviewID, err)
			}
		case models.TaskFeedbackTimeout:
			if err := s.Feedback.HandleTimeout(task.InterviewID); err != nil {
				log.Printf("❌ Scheduler: feedback timeout for interview #%d failed: %v", task.InterviewID, err)
			}
		default:
			log.Printf("⚠️ Scheduler: unknown task kind %q (task #%d)", task.Kind, task.ID)
		}
	}
}

// claimTask flips the consumed flag; true means this pass owns the firing.
func (s *SchedulerService) claimTask(taskID uint) bool {
	res := s.DB.Model(&models.ScheduledTask{}).
		Where("id = ? AND consumed = ?", taskID, false).
		Update("consumed", true)
	if res.Error != nil {
		log.Printf("❌ Scheduler: claiming task #%d failed: %v", taskID, res.Error)
		return false
	}
	return res.RowsAffected == 1
}

// fireReminder notifies everyone about the upcoming interview. If the
// interview was canceled (or already running) the claimed task is simply a
// consumed no-op.
func (s *SchedulerService) fireReminder(interviewID uint) error {
	var interview models.Interview
	if err := s.DB.First(&interview, interviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	if interview.Status != models.StatusScheduled {
		return nil
	}

	var cand models.Candidate
	if err := s.DB.First(&cand, interview.CandidateID).Error; err != nil {
		return err
	}
	users, err := s.Interviews.Participants(interviewID)
	if err != nil {
		return err
	}

	when := interview.ScheduledStart.In(s.Cfg.Timezone).Format("2006-01-02 15:04")
	body := fmt.Sprintf(
		"Reminder: your interview starts soon.\nCandidate: %s\nJob: %s\nWhen: %s (%s)\nLink: %s\nResume:\n%s",
		cand.Name, interview.JobTitle, when, s.Cfg.Timezone, interview.VideoLink, cand.ResumeText)
	for _, u := range users {
		if err := s.Notifier.SendEmail(u.Email, fmt.Sprintf("Reminder: %s", cand.Name), body); err != nil {
			log.Printf("⚠️ Failed to email interviewer %s: %v", u.Email, err)
		}
	}
	if err := s.Notifier.SendSlack(fmt.Sprintf("Reminder: %s @ %s -> %s", cand.Name, when, interview.VideoLink)); err != nil {
		log.Printf("⚠️ Failed to post Slack notification: %v", err)
	}

	now := time.Now()
	if err := s.DB.Model(&models.Interview{}).Where("id = ?", interviewID).
		Update("reminder_sent_at", now).Error; err != nil {
		return err
	}
	log.Printf("🔔 Reminder sent for interview #%d", interviewID)
	return nil
}

// startDueInterviews moves SCHEDULED interviews whose start time has passed
// into IN_PROGRESS.
func (s *SchedulerService) startDueInterviews(now time.Time) {
	var ids []uint
	err := s.DB.Model(&models.Interview{}).
		Where("status = ? AND scheduled_start <= ?", models.StatusScheduled, now).
		Pluck("id", &ids).Error
	if err != nil {
		log.Printf("❌ Scheduler: start scan failed: %v", err)
		return
	}
	for _, id := range ids {
		if err := s.Interviews.Transition(id, models.StatusInProgress); err != nil {
			log.Printf("❌ Scheduler: could not start interview #%d: %v", id, err)
		}
	}
}

// finishDueInterviews moves IN_PROGRESS interviews whose end time (plus the
// optional grace delay) has passed into feedback collection.
func (s *SchedulerService) finishDueInterviews(now time.Time) {
	cutoff := now.Add(-s.Cfg.FeedbackRequestDelay)
	var ids []uint
	err := s.DB.Model(&models.Interview{}).
		Where("status = ? AND scheduled_end <= ?", models.StatusInProgress, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		log.Printf("❌ Scheduler: finish scan failed: %v", err)
		return
	}
	for _, id := range ids {
		if err := s.Feedback.RequestFeedback(id); err != nil {
			log.Printf("❌ Scheduler: could not request feedback for interview #%d: %v", id, err)
		}
	}
}
