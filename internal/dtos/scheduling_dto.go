package dtos

import "time"

type ProposeScheduleRequest struct {
	RecruiterName   string    `json:"recruiter_name" binding:"required"`
	RecruiterEmail  string    `json:"recruiter_email" binding:"required"`
	CandidateID     uint      `json:"candidate_id" binding:"required"`
	JobTitle        string    `json:"job_title" binding:"required"`
	InterviewerIDs  []uint    `json:"interviewer_ids" binding:"required"`
	WindowStart     time.Time `json:"window_start" binding:"required"`
	WindowEnd       time.Time `json:"window_end" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required"`

	// Optional, defaults to 3, clamped to [1,5]
	OptionLimit int `json:"option_limit"`
}

type SlotOptionOut struct {
	OptionID uint      `json:"option_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Rank     int       `json:"rank"`
}

type ProposeScheduleResponse struct {
	RequestID uint            `json:"request_id"`
	Options   []SlotOptionOut `json:"options"`
}

type ApproveScheduleRequest struct {
	RequestID      uint   `json:"request_id" binding:"required"`
	OptionID       uint   `json:"option_id" binding:"required"`
	InterviewerIDs []uint `json:"interviewer_ids" binding:"required"`
}

// StartInterviewRequest is the instant path: no approval round-trip,
// the best slot is booked immediately.
type StartInterviewRequest struct {
	RecruiterName   string    `json:"recruiter_name" binding:"required"`
	RecruiterEmail  string    `json:"recruiter_email" binding:"required"`
	CandidateID     uint      `json:"candidate_id" binding:"required"`
	JobTitle        string    `json:"job_title" binding:"required"`
	InterviewerIDs  []uint    `json:"interviewer_ids" binding:"required"`
	WindowStart     time.Time `json:"window_start" binding:"required"`
	WindowEnd       time.Time `json:"window_end" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required"`
}
