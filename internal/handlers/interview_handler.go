package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/talentops/Interview-Autopilot/internal/dtos"
	"github.com/talentops/Interview-Autopilot/internal/models"
	"github.com/talentops/Interview-Autopilot/internal/services"
)

type InterviewHandler struct {
	Interviews *services.InterviewService
}

func NewInterviewHandler(interviews *services.InterviewService) *InterviewHandler {
	return &InterviewHandler{Interviews: interviews}
}

// HealthCheck is the GET /health endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Get is the GET /interviews/:id endpoint
func (h *InterviewHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	snap, err := h.Interviews.Get(id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toInterviewOut(snap))
}

// Cancel is the POST /interviews/:id/cancel endpoint
func (h *InterviewHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Interviews.Cancel(id); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": models.StatusCanceled})
}

func parseID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interview id: " + raw})
		return 0, false
	}
	return uint(id), true
}

// toInterviewOut flattens a snapshot into the wire shape.
func toInterviewOut(snap *services.Snapshot) dtos.InterviewOut {
	out := dtos.InterviewOut{
		ID:             snap.Interview.ID,
		JobTitle:       snap.Interview.JobTitle,
		Status:         snap.Interview.Status,
		ScheduledStart: snap.Interview.ScheduledStart,
		ScheduledEnd:   snap.Interview.ScheduledEnd,
		VideoLink:      snap.Interview.VideoLink,
		RecruiterName:  snap.Interview.RecruiterName,
		RecruiterEmail: snap.Interview.RecruiterEmail,
		CandidateID:    snap.Candidate.ID,
		CandidateName:  snap.Candidate.Name,
		CandidateEmail: snap.Candidate.Email,
	}
	for _, u := range snap.Participants {
		out.Participants = append(out.Participants, dtos.ParticipantOut{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
		})
	}
	if snap.ATS != nil {
		out.ATS = &dtos.ATSOut{
			Status:         snap.ATS.Status,
			Recommendation: snap.ATS.Recommendation,
			Summary:        snap.ATS.Summary,
			UpdatedAt:      snap.ATS.UpdatedAt,
		}
		out.ReportURL = fmt.Sprintf("/reports/%d", snap.Interview.ID)
	}
	return out
}
