package dtos

type SubmitFeedbackRequest struct {
	InterviewID   uint   `json:"interview_id" binding:"required"`
	InterviewerID uint   `json:"interviewer_id" binding:"required"`
	Decision      string `json:"decision" binding:"required"`
	Comment       string `json:"comment"`
}

// TokenFeedbackRequest is the signed-link variant: the token carries the
// interview and interviewer identity.
type TokenFeedbackRequest struct {
	Token    string `json:"token" binding:"required"`
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}
