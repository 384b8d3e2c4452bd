package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentops/Interview-Autopilot/internal/models"
)

func TestTick_FiresDueReminder(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 2)
	cand := createCandidate(t, e.DB)
	start := time.Now().Add(30 * time.Minute)
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))
	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskReminder, time.Now().Add(-time.Minute)))

	e.Scheduler.Tick()

	var stored models.Interview
	require.NoError(t, e.DB.First(&stored, interview.ID).Error)
	assert.NotNil(t, stored.ReminderSentAt)
	assert.Equal(t, models.StatusScheduled, stored.Status, "a reminder must not change the status")

	var task models.ScheduledTask
	require.NoError(t, e.DB.Where("interview_id = ?", interview.ID).First(&task).Error)
	assert.True(t, task.Consumed)
}

func TestTick_FutureTaskNotFired(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := time.Now().Add(2 * time.Hour)
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))
	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskReminder, time.Now().Add(time.Hour)))

	e.Scheduler.Tick()

	var stored models.Interview
	require.NoError(t, e.DB.First(&stored, interview.ID).Error)
	assert.Nil(t, stored.ReminderSentAt)

	var task models.ScheduledTask
	require.NoError(t, e.DB.Where("interview_id = ?", interview.ID).First(&task).Error)
	assert.False(t, task.Consumed)
}

func TestClaimTask_SecondClaimLoses(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := time.Now().Add(time.Hour)
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))
	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskReminder, time.Now()))

	var task models.ScheduledTask
	require.NoError(t, e.DB.Where("interview_id = ?", interview.ID).First(&task).Error)

	assert.True(t, e.Scheduler.claimTask(task.ID))
	assert.False(t, e.Scheduler.claimTask(task.ID))
}

func TestTick_CanceledInterviewReminderSkipped(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := time.Now().Add(30 * time.Minute)
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))
	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskReminder, time.Now().Add(-time.Minute)))

	// Cancel consumes the pending task before the scheduler gets to it.
	require.NoError(t, e.Interviews.Cancel(interview.ID))
	e.Scheduler.Tick()

	var stored models.Interview
	require.NoError(t, e.DB.First(&stored, interview.ID).Error)
	assert.Nil(t, stored.ReminderSentAt)

	// Even a force-fired reminder respects the terminal status.
	require.NoError(t, e.Scheduler.fireReminder(interview.ID))
	require.NoError(t, e.DB.First(&stored, interview.ID).Error)
	assert.Nil(t, stored.ReminderSentAt)
}

func TestTick_StartsDueInterviews(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := time.Now().Add(-5 * time.Minute)
	due := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))
	notDue := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))

	e.Scheduler.Tick()

	assert.Equal(t, models.StatusInProgress, interviewStatus(t, e, due.ID))
	assert.Equal(t, models.StatusScheduled, interviewStatus(t, e, notDue.ID))
}

func TestTick_FinishedInterviewEntersFeedback(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 2)
	cand := createCandidate(t, e.DB)
	start := time.Now().Add(-2 * time.Hour)
	end := time.Now().Add(-time.Hour)
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusInProgress, start, end)

	e.Scheduler.Tick()

	var stored models.Interview
	require.NoError(t, e.DB.First(&stored, interview.ID).Error)
	assert.Equal(t, models.StatusAwaitingFeedback, stored.Status)
	assert.NotNil(t, stored.FeedbackRequestedAt)

	var task models.ScheduledTask
	require.NoError(t, e.DB.Where("interview_id = ? AND kind = ?", interview.ID, models.TaskFeedbackTimeout).First(&task).Error)
	assert.False(t, task.Consumed)
	assert.True(t, task.FireAt.Equal(end.Add(e.Cfg.FeedbackWindow)))
}

func TestTick_ElapsedFeedbackWindowConsolidates(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 2)
	cand := createCandidate(t, e.DB)
	start := time.Now().Add(-26 * time.Hour)
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusAwaitingFeedback, start, start.Add(time.Hour))
	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskFeedbackTimeout, time.Now().Add(-time.Minute)))

	require.NoError(t, e.Feedback.Submit(interview.ID, users[0].ID, models.DecisionAdvance, "good round"))
	e.Scheduler.Tick()

	assert.Equal(t, models.StatusFeedbackReceived, interviewStatus(t, e, interview.ID))
	var record models.ATSRecord
	require.NoError(t, e.DB.Where("interview_id = ?", interview.ID).First(&record).Error)
	assert.Equal(t, models.ATSNeedsReview, record.Status)

	// A second pass over the same state changes nothing.
	e.Scheduler.Tick()
	var count int64
	require.NoError(t, e.DB.Model(&models.ATSRecord{}).Where("interview_id = ?", interview.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTick_FullLifecycle(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 2)
	cand := createCandidate(t, e.DB)

	winStart := time.Now().Add(-3 * time.Hour)
	winEnd := time.Now().Add(6 * time.Hour)
	req, options, err := e.Proposals.Propose(proposeParams(cand, users, winStart, winEnd))
	require.NoError(t, err)

	interview, err := e.Approvals.Approve(req.ID, options[0].ID, userIDs(users))
	require.NoError(t, err)

	// The approved slot starts in the past, so one pass walks the interview
	// through start and end into feedback collection.
	e.Scheduler.Tick()
	e.Scheduler.Tick()
	assert.Equal(t, models.StatusAwaitingFeedback, interviewStatus(t, e, interview.ID))

	require.NoError(t, e.Feedback.Submit(interview.ID, users[0].ID, models.DecisionAdvance, "strong"))
	require.NoError(t, e.Feedback.Submit(interview.ID, users[1].ID, models.DecisionAdvance, "hire"))
	assert.Equal(t, models.StatusFeedbackReceived, interviewStatus(t, e, interview.ID))

	var record models.ATSRecord
	require.NoError(t, e.DB.Where("interview_id = ?", interview.ID).First(&record).Error)
	assert.Equal(t, models.ATSAdvance, record.Status)
}
