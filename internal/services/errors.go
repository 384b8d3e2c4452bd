package services

import "errors"

// Sentinel errors for the engine. Handlers map these to HTTP codes with
// errors.Is, so services never need to know about status codes.
var (
	ErrNoCommonAvailability = errors.New("no common availability in the preferred window")

	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrInterviewerNotFound = errors.New("some interviewers not found")

	ErrRequestNotFound     = errors.New("scheduling request not found")
	ErrAlreadyConsumed     = errors.New("scheduling request already consumed")
	ErrOptionNotFound      = errors.New("option does not belong to this request")
	ErrParticipantMismatch = errors.New("interviewer set does not match the proposed request")

	ErrInterviewNotFound   = errors.New("interview not found")
	ErrInvalidTransition   = errors.New("invalid interview status transition")
	ErrNotAwaitingFeedback = errors.New("interview is not awaiting feedback")
	ErrNotAParticipant     = errors.New("interviewer is not a participant of this interview")
	ErrInvalidDecision     = errors.New("invalid feedback decision")

	ErrInvalidToken = errors.New("invalid feedback token")
)
