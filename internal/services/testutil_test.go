package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/talentops/Interview-Autopilot/internal/config"
	"github.com/talentops/Interview-Autopilot/internal/database"
	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection: the in-memory database disappears per-connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		BaseURL:        "http://test.local",
		SecretKey:      "test-secret",
		Timezone:       time.UTC,
		TickInterval:   time.Second,
		ReminderLead:   time.Hour,
		FeedbackWindow: 24 * time.Hour,
	}
}

// newEngine wires the full service graph on a fresh in-memory database with
// the mock notifier and the fallback-only summarizer.
type engine struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Availability *AvailabilityService
	Proposals    *ProposalService
	Interviews   *InterviewService
	Approvals    *ApprovalService
	ATS          *ATSService
	Feedback     *FeedbackService
	Scheduler    *SchedulerService
	Tokens       *TokenService
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()
	notifier := MockNotifier{}

	availability := NewAvailabilityService(db)
	proposals := NewProposalService(db, availability)
	interviews := NewInterviewService(db)
	approvals := NewApprovalService(db, availability, interviews, notifier, cfg)
	ats := NewATSService(db)
	tokens := NewTokenService(cfg.SecretKey)
	llm := &LLMService{} // no client: deterministic fallback
	feedback := NewFeedbackService(db, interviews, llm, ats, notifier, tokens, cfg)
	scheduler := NewSchedulerService(db, interviews, feedback, notifier, cfg)

	return &engine{
		DB:           db,
		Cfg:          cfg,
		Availability: availability,
		Proposals:    proposals,
		Interviews:   interviews,
		Approvals:    approvals,
		ATS:          ats,
		Feedback:     feedback,
		Scheduler:    scheduler,
		Tokens:       tokens,
	}
}

// createPanel inserts n interviewers. Emails are numbered past whatever is
// already in the table, so repeated calls never trip the unique index.
func createPanel(t *testing.T, db *gorm.DB, n int) []models.User {
	t.Helper()
	var existing int64
	require.NoError(t, db.Model(&models.User{}).Count(&existing).Error)

	var users []models.User
	for i := 0; i < n; i++ {
		seq := int(existing) + i + 1
		u := models.User{
			Name:  fmt.Sprintf("Interviewer %d", seq),
			Email: fmt.Sprintf("interviewer%d@example.com", seq),
			Role:  "engineer",
		}
		require.NoError(t, db.Create(&u).Error)
		users = append(users, u)
	}
	return users
}

func createCandidate(t *testing.T, db *gorm.DB) models.Candidate {
	t.Helper()
	var existing int64
	require.NoError(t, db.Model(&models.Candidate{}).Count(&existing).Error)

	cand := models.Candidate{
		Name:       fmt.Sprintf("Candidate %d", existing+1),
		Email:      fmt.Sprintf("candidate%d@example.com", existing+1),
		ResumeText: "Go, SQL",
	}
	require.NoError(t, db.Create(&cand).Error)
	return cand
}

func blockCalendar(t *testing.T, db *gorm.DB, userID uint, start, end time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.CalendarBlock{UserID: userID, Start: start, End: end, Title: "Busy"}).Error)
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

// createInterviewRow inserts an interview plus participants directly,
// bypassing the approval flow, for state-machine level tests.
func createInterviewRow(t *testing.T, db *gorm.DB, cand models.Candidate, users []models.User, status string, start, end time.Time) models.Interview {
	t.Helper()
	interview := models.Interview{
		CandidateID:    cand.ID,
		JobTitle:       "Backend Engineer",
		RecruiterName:  "Rita Recruiter",
		RecruiterEmail: "rita@example.com",
		ScheduledStart: start,
		ScheduledEnd:   end,
		Status:         status,
		VideoLink:      "https://meet.jit.si/interview-test",
	}
	require.NoError(t, db.Create(&interview).Error)
	for _, u := range users {
		require.NoError(t, db.Create(&models.InterviewParticipant{InterviewID: interview.ID, UserID: u.ID}).Error)
	}
	return interview
}
