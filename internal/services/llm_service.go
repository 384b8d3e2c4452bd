package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const summaryTimeout = 25 * time.Second

// FeedbackItem is one interviewer's verdict fed to the summarizer.
type FeedbackItem struct {
	InterviewerName string
	Decision        string
	Comment         string
}

// SummaryResult is the consolidated report written into the ATS record.
type SummaryResult struct {
	Strengths      []string `json:"strengths"`
	Risks          []string `json:"risks"`
	Recommendation string   `json:"recommendation"`
	Narrative      string   `json:"narrative"`
}

// Recommendation labels used by both the LLM prompt and the fallback.
const (
	RecHire             = "Hire"
	RecNoHire           = "No Hire"
	RecMixed            = "Mixed / Need debrief"
	RecInsufficientData = "Insufficient data"
)

type LLMService struct {
	Client llms.Model
}

// NewLLMService initializes the Gemini client. A missing key is not fatal:
// the summarizer then always uses the deterministic fallback, which is enough
// to keep the pipeline moving.
func NewLLMService(apiKey string) *LLMService {
	if apiKey == "" {
		log.Println("⚠️ GEMINI_API_KEY is empty. Summaries will use the local fallback.")
		return &LLMService{}
	}

	ctx := context.Background()
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel("gemini-2.5-flash"),
	)
	if err != nil {
		log.Printf("⚠️ Failed to create Gemini client: %v. Summaries will use the local fallback.", err)
		return &LLMService{}
	}
	return &LLMService{Client: llm}
}

const feedbackSummaryPrompt = `
You are a recruiting assistant consolidating interview feedback for a candidate.

### INSTRUCTIONS:
1. **Read** every interviewer's decision and comment below.
2. **Weigh** agreements and disagreements; do not invent facts that are not in the comments.
3. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "strengths": ["short bullet strings"],
    "risks": ["short bullet strings"],
    "recommendation": "Hire" | "No Hire" | "Mixed / Need debrief" | "Insufficient data",
    "narrative": "A few sentences a recruiter can paste into the ATS."
}

### CANDIDATE:
%s — %s

### FEEDBACK:
%s
`

// Summarize turns the feedback set into a recommendation + narrative. Any
// failure (no client, timeout, malformed output) falls back to the
// deterministic local summary so consolidation can never get stuck on an
// LLM outage.
func (s *LLMService) Summarize(ctx context.Context, candidateName, jobTitle string, items []FeedbackItem) SummaryResult {
	if s.Client == nil {
		return MockSummary(items)
	}

	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	var lines []string
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- %s: %s. %s", it.InterviewerName, it.Decision, strings.TrimSpace(it.Comment)))
	}
	if len(lines) == 0 {
		lines = append(lines, "(no feedback was submitted before the deadline)")
	}

	prompt := fmt.Sprintf(feedbackSummaryPrompt, candidateName, jobTitle, strings.Join(lines, "\n"))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		log.Printf("⚠️ LLM summary failed (%v), using local fallback", err)
		return MockSummary(items)
	}

	var result SummaryResult
	cleaned := strings.TrimSpace(resp)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		log.Printf("⚠️ LLM returned non-JSON summary (%v), using local fallback", err)
		return MockSummary(items)
	}

	switch result.Recommendation {
	case RecHire, RecNoHire, RecMixed, RecInsufficientData:
	default:
		result.Recommendation = RecMixed
	}
	result.Narrative = strings.TrimSpace(result.Narrative)
	if result.Narrative == "" {
		return MockSummary(items)
	}
	return result
}

// MockSummary is the deterministic fallback: simple vote counting plus a
// plain-text digest of the comments.
func MockSummary(items []FeedbackItem) SummaryResult {
	advances, rejects, holds := 0, 0, 0
	for _, it := range items {
		switch it.Decision {
		case models.DecisionAdvance:
			advances++
		case models.DecisionReject:
			rejects++
		case models.DecisionHold:
			holds++
		}
	}

	var rec string
	switch {
	case advances == 0 && rejects == 0 && holds == 0:
		rec = RecInsufficientData
	case rejects >= 2:
		rec = RecNoHire
	case advances >= 2 && rejects == 0:
		rec = RecHire
	default:
		rec = RecMixed
	}

	var strengths, risks []string
	for _, it := range items {
		c := strings.TrimSpace(it.Comment)
		if c == "" {
			continue
		}
		if it.Decision == models.DecisionAdvance {
			strengths = append(strengths, c)
		} else {
			risks = append(risks, c)
		}
	}
	if len(strengths) > 5 {
		strengths = strengths[:5]
	}
	if len(risks) > 5 {
		risks = risks[:5]
	}

	lines := []string{
		"Automatic summary (local fallback):",
		fmt.Sprintf("- Advance: %d, Reject: %d, Hold: %d", advances, rejects, holds),
		"- Key comments:",
	}
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("  - %s: %s. %s", it.InterviewerName, it.Decision, strings.TrimSpace(it.Comment)))
	}

	return SummaryResult{
		Strengths:      strengths,
		Risks:          risks,
		Recommendation: rec,
		Narrative:      strings.Join(lines, "\n"),
	}
}
