package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentops/Interview-Autopilot/internal/models"
)

func interviewStatus(t *testing.T, e *engine, id uint) string {
	t.Helper()
	var interview models.Interview
	require.NoError(t, e.DB.First(&interview, id).Error)
	return interview.Status
}

func TestTransition_HappyPath(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 2)
	cand := createCandidate(t, e.DB)
	start := mustParse(t, "2026-02-02T10:00:00Z")
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))

	require.NoError(t, e.Interviews.Transition(interview.ID, models.StatusInProgress))
	require.NoError(t, e.Interviews.Transition(interview.ID, models.StatusAwaitingFeedback))
	require.NoError(t, e.Interviews.Transition(interview.ID, models.StatusFeedbackReceived))
	assert.Equal(t, models.StatusFeedbackReceived, interviewStatus(t, e, interview.ID))
}

func TestTransition_SkippingStatesRejected(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := mustParse(t, "2026-02-02T10:00:00Z")
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))

	err := e.Interviews.Transition(interview.ID, models.StatusAwaitingFeedback)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = e.Interviews.Transition(interview.ID, models.StatusFeedbackReceived)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, models.StatusScheduled, interviewStatus(t, e, interview.ID))
}

func TestTransition_IdempotentReapply(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := mustParse(t, "2026-02-02T10:00:00Z")
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusInProgress, start, start.Add(time.Hour))

	require.NoError(t, e.Interviews.Transition(interview.ID, models.StatusInProgress))
	assert.Equal(t, models.StatusInProgress, interviewStatus(t, e, interview.ID))
}

func TestTransition_UnknownInterview(t *testing.T) {
	e := newEngine(t)
	err := e.Interviews.Transition(12345, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}

func TestCancel_InvalidatesPendingTasks(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := mustParse(t, "2026-02-02T10:00:00Z")
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))

	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskReminder, start.Add(-time.Hour)))

	require.NoError(t, e.Interviews.Cancel(interview.ID))
	assert.Equal(t, models.StatusCanceled, interviewStatus(t, e, interview.ID))

	var pending int64
	require.NoError(t, e.DB.Model(&models.ScheduledTask{}).
		Where("interview_id = ? AND consumed = ?", interview.ID, false).
		Count(&pending).Error)
	assert.Zero(t, pending)

	// Canceling again is a no-op.
	require.NoError(t, e.Interviews.Cancel(interview.ID))
}

func TestCancel_TerminalInterviewRejected(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := mustParse(t, "2026-02-02T10:00:00Z")
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusFeedbackReceived, start, start.Add(time.Hour))

	err := e.Interviews.Cancel(interview.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRegisterTask_OnePendingPerKind(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 1)
	cand := createCandidate(t, e.DB)
	start := mustParse(t, "2026-02-02T10:00:00Z")
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))

	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskReminder, start))
	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskReminder, start.Add(time.Hour)))

	var count int64
	require.NoError(t, e.DB.Model(&models.ScheduledTask{}).
		Where("interview_id = ? AND kind = ?", interview.ID, models.TaskReminder).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A different kind is a separate pending slot.
	require.NoError(t, e.Interviews.RegisterTask(e.DB, interview.ID, models.TaskFeedbackTimeout, start.Add(2*time.Hour)))
	require.NoError(t, e.DB.Model(&models.ScheduledTask{}).
		Where("interview_id = ?", interview.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestGet_Snapshot(t *testing.T) {
	e := newEngine(t)
	users := createPanel(t, e.DB, 2)
	cand := createCandidate(t, e.DB)
	start := mustParse(t, "2026-02-02T10:00:00Z")
	interview := createInterviewRow(t, e.DB, cand, users, models.StatusScheduled, start, start.Add(time.Hour))

	snap, err := e.Interviews.Get(interview.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.ID, snap.Interview.ID)
	assert.Equal(t, cand.ID, snap.Candidate.ID)
	assert.Len(t, snap.Participants, 2)
	assert.Nil(t, snap.ATS, "no ATS record before consolidation")

	_, err = e.Interviews.Get(interview.ID + 999)
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}
