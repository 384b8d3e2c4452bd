package services

import (
	"sort"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// TimeWindow is the preferred scheduling window [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// FreeIntervals computes the common free time of all given users inside the
// window. Per user we merge the busy blocks and complement them within the
// window; across users we intersect the free lists. Only intervals long
// enough to host the interview survive. An empty result is an error — the
// caller decides whether to widen the window.
func (s *AvailabilityService) FreeIntervals(userIDs []uint, window TimeWindow, duration time.Duration) ([]Interval, error) {
	if len(userIDs) == 0 || duration <= 0 || !window.Start.Before(window.End) {
		return nil, ErrNoCommonAvailability
	}

	// Everything is free until somebody's calendar says otherwise.
	free := []Interval{{Start: window.Start, End: window.End}}

	for _, uid := range userIDs {
		var blocks []models.CalendarBlock
		err := s.DB.
			Where("user_id = ?", uid).
			Where("start < ? AND \"end\" > ?", window.End, window.Start).
			Order("start asc").
			Find(&blocks).Error
		if err != nil {
			return nil, err
		}

		busy := make([]Interval, 0, len(blocks))
		for _, b := range blocks {
			busy = append(busy, Interval{Start: b.Start, End: b.End})
		}

		userFree := complementWithin(mergeIntervals(busy), window)
		free = intersectIntervals(free, userFree)
		if len(free) == 0 {
			return nil, ErrNoCommonAvailability
		}
	}

	result := make([]Interval, 0, len(free))
	for _, iv := range free {
		if iv.Duration() >= duration {
			result = append(result, iv)
		}
	}
	if len(result) == 0 {
		return nil, ErrNoCommonAvailability
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

// IsFree reports whether a single user has no busy block overlapping [start, end).
func (s *AvailabilityService) IsFree(userID uint, start, end time.Time) (bool, error) {
	var count int64
	err := s.DB.Model(&models.CalendarBlock{}).
		Where("user_id = ?", userID).
		Where("start < ? AND \"end\" > ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// BlockTime writes a busy block into a user's calendar so later proposals
// respect the booked interview.
func (s *AvailabilityService) BlockTime(tx *gorm.DB, userID uint, start, end time.Time, title string) error {
	return tx.Create(&models.CalendarBlock{UserID: userID, Start: start, End: end, Title: title}).Error
}

// mergeIntervals collapses overlapping or touching intervals into a sorted,
// disjoint list.
func mergeIntervals(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// complementWithin returns the gaps of a merged busy list inside the window.
func complementWithin(busy []Interval, window TimeWindow) []Interval {
	var free []Interval
	cursor := window.Start
	for _, b := range busy {
		if !b.End.After(window.Start) || !b.Start.Before(window.End) {
			continue
		}
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: minTime(b.Start, window.End)})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}

// intersectIntervals sweeps two sorted disjoint lists and keeps the overlaps.
func intersectIntervals(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := maxTime(a[i].Start, b[j].Start)
		end := minTime(a[i].End, b[j].End)
		if start.Before(end) {
			out = append(out, Interval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
