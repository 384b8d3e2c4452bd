package handlers

import (
	"errors"
	"net/http"

	"github.com/talentops/Interview-Autopilot/internal/services"
)

// statusForError maps engine errors to HTTP codes: NotFound -> 404,
// invalid-state and double-consume conflicts -> 409, bad input -> 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrCandidateNotFound),
		errors.Is(err, services.ErrInterviewerNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrOptionNotFound),
		errors.Is(err, services.ErrInterviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyConsumed),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotAwaitingFeedback):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoCommonAvailability),
		errors.Is(err, services.ErrParticipantMismatch),
		errors.Is(err, services.ErrNotAParticipant),
		errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
