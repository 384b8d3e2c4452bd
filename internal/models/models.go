package models

import (
	"time"

	"gorm.io/gorm"
)

// Interview lifecycle statuses. Monotonic along the happy path,
// CANCELED is the only escape and it is terminal.
const (
	StatusScheduled        = "SCHEDULED"
	StatusInProgress       = "IN_PROGRESS"
	StatusAwaitingFeedback = "AWAITING_FEEDBACK"
	StatusFeedbackReceived = "FEEDBACK_RECEIVED"
	StatusCanceled         = "CANCELED"
)

// Feedback decisions submitted by interviewers.
const (
	DecisionAdvance = "ADVANCE"
	DecisionReject  = "REJECT"
	DecisionHold    = "HOLD"
)

// ATS statuses derived from the aggregated feedback.
const (
	ATSAdvance     = "ADVANCE"
	ATSReject      = "REJECT"
	ATSNeedsReview = "NEEDS_REVIEW"
)

// Scheduled task kinds. At most one pending task of each kind per interview.
const (
	TaskReminder        = "REMINDER"
	TaskFeedbackTimeout = "FEEDBACK_TIMEOUT"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Role        string `gorm:"not null" json:"role"` // recruiter / engineer / tech_lead / hiring_manager
	SlackHandle string `json:"slack_handle"`
}

type Candidate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	ResumeText string `gorm:"type:text" json:"resume_text"`
}

// CalendarBlock is one busy interval on a user's calendar.
type CalendarBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID uint      `gorm:"index;not null" json:"user_id"`
	Start  time.Time `gorm:"not null" json:"start"`
	End    time.Time `gorm:"not null" json:"end"`
	Title  string    `gorm:"default:'Busy'" json:"title"`
}

// SchedulingRequest is a proposal awaiting human approval. Immutable after
// creation except for the consumed flag, which flips exactly once.
type SchedulingRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RecruiterName  string `gorm:"not null" json:"recruiter_name"`
	RecruiterEmail string `gorm:"not null" json:"recruiter_email"`

	CandidateID     uint      `gorm:"not null" json:"candidate_id"`
	Candidate       Candidate `json:"candidate,omitempty"`
	JobTitle        string    `gorm:"not null" json:"job_title"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	Consumed bool `gorm:"not null;default:false" json:"consumed"`

	ApprovedOptionID *uint `json:"approved_option_id,omitempty"`
	InterviewID      *uint `json:"interview_id,omitempty"`

	Options      []SchedulingOption    `json:"options,omitempty"`
	Interviewers []ProposalInterviewer `json:"interviewers,omitempty"`
}

// SchedulingOption is one ranked slot belonging to a request. Rank 0 is best.
type SchedulingOption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`

	SchedulingRequestID uint      `gorm:"index;not null;uniqueIndex:uq_request_slot,priority:1" json:"request_id"`
	Start               time.Time `gorm:"not null;uniqueIndex:uq_request_slot,priority:2" json:"start"`
	End                 time.Time `gorm:"not null;uniqueIndex:uq_request_slot,priority:3" json:"end"`
	Rank                int       `gorm:"not null" json:"rank"`
}

// ProposalInterviewer pins the interviewer set a request was proposed for,
// so approval can re-validate it against roster changes.
type ProposalInterviewer struct {
	ID                  uint `gorm:"primaryKey" json:"-"`
	SchedulingRequestID uint `gorm:"index;not null;uniqueIndex:uq_request_user,priority:1" json:"request_id"`
	UserID              uint `gorm:"not null;uniqueIndex:uq_request_user,priority:2" json:"user_id"`
}

type Interview struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CandidateID uint      `gorm:"not null" json:"candidate_id"`
	Candidate   Candidate `json:"candidate,omitempty"`

	JobTitle       string `gorm:"not null" json:"job_title"`
	RecruiterName  string `gorm:"not null" json:"recruiter_name"`
	RecruiterEmail string `gorm:"not null" json:"recruiter_email"`

	ScheduledStart time.Time `gorm:"not null" json:"scheduled_start"`
	ScheduledEnd   time.Time `gorm:"not null" json:"scheduled_end"`

	VideoLink string `json:"video_link"`
	Status    string `gorm:"not null;default:'SCHEDULED'" json:"status"`

	ReminderSentAt      *time.Time `json:"reminder_sent_at,omitempty"`
	FeedbackRequestedAt *time.Time `json:"feedback_requested_at,omitempty"`
	ConsolidatedAt      *time.Time `json:"consolidated_at,omitempty"`

	Participants []InterviewParticipant `json:"participants,omitempty"`
	Feedback     []Feedback             `json:"feedback,omitempty"`
}

type InterviewParticipant struct {
	ID          uint `gorm:"primaryKey" json:"-"`
	InterviewID uint `gorm:"index;not null;uniqueIndex:uq_interview_user,priority:1" json:"interview_id"`
	UserID      uint `gorm:"not null;uniqueIndex:uq_interview_user,priority:2" json:"user_id"`
}

// Feedback holds one interviewer's verdict. Unique per (interview, user);
// resubmission overwrites in place.
type Feedback struct {
	ID uint `gorm:"primaryKey" json:"id"`

	InterviewID uint `gorm:"index;not null;uniqueIndex:uq_feedback_interview_user,priority:1" json:"interview_id"`
	UserID      uint `gorm:"not null;uniqueIndex:uq_feedback_interview_user,priority:2" json:"user_id"`

	Decision    string    `gorm:"not null" json:"decision"`
	Comment     string    `gorm:"type:text" json:"comment"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
}

// ATSRecord mirrors the hiring decision into the applicant tracking system.
// It exists only after feedback aggregation completed (all in, or timeout).
type ATSRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	InterviewID    uint      `gorm:"uniqueIndex;not null" json:"interview_id"`
	Status         string    `gorm:"not null" json:"status"`
	Recommendation string    `json:"recommendation"`
	Summary        string    `gorm:"type:text" json:"summary"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// ScheduledTask is a "do X at time T for interview I" record. Firing is
// idempotent: the consumed flag is claimed with a conditional update, so a
// task fires at most once no matter how many scheduler passes see it.
type ScheduledTask struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	InterviewID uint      `gorm:"index;not null" json:"interview_id"`
	Kind        string    `gorm:"not null" json:"kind"`
	FireAt      time.Time `gorm:"index;not null" json:"fire_at"`
	Consumed    bool      `gorm:"not null;default:false" json:"consumed"`
}
