package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentops/Interview-Autopilot/internal/dtos"
	"github.com/talentops/Interview-Autopilot/internal/services"
)

type SchedulingHandler struct {
	Proposals  *services.ProposalService
	Approvals  *services.ApprovalService
	Interviews *services.InterviewService
}

func NewSchedulingHandler(proposals *services.ProposalService, approvals *services.ApprovalService, interviews *services.InterviewService) *SchedulingHandler {
	return &SchedulingHandler{
		Proposals:  proposals,
		Approvals:  approvals,
		Interviews: interviews,
	}
}

// Propose is the POST /scheduling/propose endpoint
func (h *SchedulingHandler) Propose(c *gin.Context) {
	var req dtos.ProposeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	request, options, err := h.Proposals.Propose(services.ProposeParams{
		RecruiterName:   req.RecruiterName,
		RecruiterEmail:  req.RecruiterEmail,
		CandidateID:     req.CandidateID,
		JobTitle:        req.JobTitle,
		InterviewerIDs:  req.InterviewerIDs,
		Window:          services.TimeWindow{Start: req.WindowStart, End: req.WindowEnd},
		DurationMinutes: req.DurationMinutes,
		OptionLimit:     req.OptionLimit,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	resp := dtos.ProposeScheduleResponse{RequestID: request.ID}
	for _, opt := range options {
		resp.Options = append(resp.Options, dtos.SlotOptionOut{
			OptionID: opt.ID,
			Start:    opt.Start,
			End:      opt.End,
			Rank:     opt.Rank,
		})
	}
	c.JSON(http.StatusCreated, resp)
}

// Approve is the POST /scheduling/approve endpoint
func (h *SchedulingHandler) Approve(c *gin.Context) {
	var req dtos.ApproveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	interview, err := h.Approvals.Approve(req.RequestID, req.OptionID, req.InterviewerIDs)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	snap, err := h.Interviews.Get(interview.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toInterviewOut(snap))
}

// Start is the POST /interviews/start endpoint (instant scheduling)
func (h *SchedulingHandler) Start(c *gin.Context) {
	var req dtos.StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	interview, err := h.Approvals.StartInterview(services.ProposeParams{
		RecruiterName:   req.RecruiterName,
		RecruiterEmail:  req.RecruiterEmail,
		CandidateID:     req.CandidateID,
		JobTitle:        req.JobTitle,
		InterviewerIDs:  req.InterviewerIDs,
		Window:          services.TimeWindow{Start: req.WindowStart, End: req.WindowEnd},
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	snap, err := h.Interviews.Get(interview.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toInterviewOut(snap))
}
