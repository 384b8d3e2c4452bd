package services

import (
	"log"
	"sort"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

const (
	defaultOptionLimit = 3
	minOptionLimit     = 1
	maxOptionLimit     = 5
)

// ProposeParams carries everything needed to open a scheduling request.
type ProposeParams struct {
	RecruiterName   string
	RecruiterEmail  string
	CandidateID     uint
	JobTitle        string
	InterviewerIDs  []uint
	Window          TimeWindow
	DurationMinutes int
	OptionLimit     int
}

type ProposalService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
}

func NewProposalService(db *gorm.DB, availability *AvailabilityService) *ProposalService {
	return &ProposalService{DB: db, Availability: availability}
}

// candidateSlot is a slot before ranking. Slack is the length of the free
// interval it was cut from; for identical starts the roomier interval wins.
type candidateSlot struct {
	start time.Time
	end   time.Time
	slack time.Duration
}

// Propose resolves common availability, slices it into ranked slot options
// and persists the request for a human to approve. The request stays open
// until approved; stale requests simply age out.
func (s *ProposalService) Propose(p ProposeParams) (*models.SchedulingRequest, []models.SchedulingOption, error) {
	if err := s.validateParticipants(p.CandidateID, p.InterviewerIDs); err != nil {
		return nil, nil, err
	}

	duration := time.Duration(p.DurationMinutes) * time.Minute
	free, err := s.Availability.FreeIntervals(p.InterviewerIDs, p.Window, duration)
	if err != nil {
		return nil, nil, err
	}

	slots := sliceAndRank(free, duration, clampOptionLimit(p.OptionLimit))

	req := &models.SchedulingRequest{
		RecruiterName:   p.RecruiterName,
		RecruiterEmail:  p.RecruiterEmail,
		CandidateID:     p.CandidateID,
		JobTitle:        p.JobTitle,
		DurationMinutes: p.DurationMinutes,
	}

	var options []models.SchedulingOption
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		for rank, slot := range slots {
			options = append(options, models.SchedulingOption{
				SchedulingRequestID: req.ID,
				Start:               slot.start,
				End:                 slot.end,
				Rank:                rank,
			})
		}
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
		for _, uid := range p.InterviewerIDs {
			row := models.ProposalInterviewer{SchedulingRequestID: req.ID, UserID: uid}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("📋 Proposal #%d created: %d option(s) for candidate %d (%s)",
		req.ID, len(options), p.CandidateID, p.JobTitle)
	return req, options, nil
}

func (s *ProposalService) validateParticipants(candidateID uint, interviewerIDs []uint) error {
	var cand models.Candidate
	if err := s.DB.First(&cand, candidateID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrCandidateNotFound
		}
		return err
	}

	if len(interviewerIDs) == 0 {
		return ErrInterviewerNotFound
	}
	var count int64
	if err := s.DB.Model(&models.User{}).Where("id IN ?", interviewerIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(uniqueIDs(interviewerIDs))) {
		return ErrInterviewerNotFound
	}
	return nil
}

// sliceAndRank cuts each free interval into consecutive duration-sized slots
// from its start (no fractional slots), ranks them earliest-first with the
// roomier parent interval breaking ties, and keeps the top `limit`.
func sliceAndRank(free []Interval, duration time.Duration, limit int) []candidateSlot {
	var slots []candidateSlot
	for _, iv := range free {
		slack := iv.Duration()
		for t := iv.Start; !t.Add(duration).After(iv.End); t = t.Add(duration) {
			slots = append(slots, candidateSlot{start: t, end: t.Add(duration), slack: slack})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].start.Equal(slots[j].start) {
			return slots[i].start.Before(slots[j].start)
		}
		return slots[i].slack > slots[j].slack
	})

	if len(slots) > limit {
		slots = slots[:limit]
	}
	return slots
}

func clampOptionLimit(limit int) int {
	if limit == 0 {
		return defaultOptionLimit
	}
	if limit < minOptionLimit {
		return minOptionLimit
	}
	if limit > maxOptionLimit {
		return maxOptionLimit
	}
	return limit
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	var out []uint
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
