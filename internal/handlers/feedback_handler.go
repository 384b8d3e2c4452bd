package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentops/Interview-Autopilot/internal/dtos"
	"github.com/talentops/Interview-Autopilot/internal/services"
)

type FeedbackHandler struct {
	Feedback *services.FeedbackService
}

func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{Feedback: feedback}
}

// Submit is the POST /feedback endpoint
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req dtos.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	if err := h.Feedback.Submit(req.InterviewID, req.InterviewerID, req.Decision, req.Comment); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitByToken is the POST /feedback/token endpoint (signed feedback links)
func (h *FeedbackHandler) SubmitByToken(c *gin.Context) {
	var req dtos.TokenFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	if err := h.Feedback.SubmitByToken(req.Token, req.Decision, req.Comment); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
