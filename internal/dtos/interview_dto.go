package dtos

import "time"

type ParticipantOut struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type ATSOut struct {
	Status         string    `json:"status"`
	Recommendation string    `json:"recommendation"`
	Summary        string    `json:"summary"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type InterviewOut struct {
	ID             uint             `json:"id"`
	JobTitle       string           `json:"job_title"`
	Status         string           `json:"status"`
	ScheduledStart time.Time        `json:"scheduled_start"`
	ScheduledEnd   time.Time        `json:"scheduled_end"`
	VideoLink      string           `json:"video_link"`
	RecruiterName  string           `json:"recruiter_name"`
	RecruiterEmail string           `json:"recruiter_email"`
	CandidateID    uint             `json:"candidate_id"`
	CandidateName  string           `json:"candidate_name"`
	CandidateEmail string           `json:"candidate_email"`
	Participants   []ParticipantOut `json:"participants"`
	ATS            *ATSOut          `json:"ats,omitempty"`
	ReportURL      string           `json:"report_url,omitempty"`
}
