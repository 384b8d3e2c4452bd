package services

import (
	"log"
	"sync"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// allowedTransitions is the state machine: status is monotonic along the
// happy path, CANCELED is the only escape and nothing leaves it.
var allowedTransitions = map[string]map[string]bool{
	models.StatusScheduled: {
		models.StatusInProgress: true,
		models.StatusCanceled:   true,
	},
	models.StatusInProgress: {
		models.StatusAwaitingFeedback: true,
		models.StatusCanceled:         true,
	},
	models.StatusAwaitingFeedback: {
		models.StatusFeedbackReceived: true,
		models.StatusCanceled:         true,
	},
	models.StatusFeedbackReceived: {},
	models.StatusCanceled:         {},
}

type InterviewService struct {
	DB *gorm.DB

	// One mutex per interview ID. Operations on different interviews run
	// independently; operations on the same interview never interleave.
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewInterviewService(db *gorm.DB) *InterviewService {
	return &InterviewService{DB: db, locks: make(map[uint]*sync.Mutex)}
}

func (s *InterviewService) lockFor(interviewID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[interviewID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[interviewID] = l
	}
	return l
}

// WithLock serializes fn against every other mutation of the same interview.
func (s *InterviewService) WithLock(interviewID uint, fn func() error) error {
	l := s.lockFor(interviewID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// Transition moves the interview to target if the state machine allows it.
// Re-applying the current status is a no-op; anything else outside the table
// is ErrInvalidTransition. The update itself is conditional on the status we
// read, so a racing writer can never sneak a second transition through.
func (s *InterviewService) Transition(interviewID uint, target string) error {
	return s.WithLock(interviewID, func() error {
		return s.transitionLocked(s.DB, interviewID, target)
	})
}

// transitionLocked is Transition for callers already holding the lock. It
// runs on the given handle so callers can fold it into a larger transaction.
func (s *InterviewService) transitionLocked(tx *gorm.DB, interviewID uint, target string) error {
	var interview models.Interview
	if err := tx.First(&interview, interviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrInterviewNotFound
		}
		return err
	}

	if interview.Status == target {
		return nil // idempotent re-apply
	}
	if !allowedTransitions[interview.Status][target] {
		return ErrInvalidTransition
	}

	res := tx.Model(&models.Interview{}).
		Where("id = ? AND status = ?", interviewID, interview.Status).
		Update("status", target)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	log.Printf("🔄 Interview #%d: %s -> %s", interviewID, interview.Status, target)
	return nil
}

// Cancel moves the interview to CANCELED and synchronously invalidates every
// pending scheduled task, so an in-flight scheduler pass either sees the
// tasks consumed or sees the terminal status and skips.
func (s *InterviewService) Cancel(interviewID uint) error {
	return s.WithLock(interviewID, func() error {
		var interview models.Interview
		if err := s.DB.First(&interview, interviewID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrInterviewNotFound
			}
			return err
		}
		if interview.Status == models.StatusCanceled {
			return nil
		}
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.transitionLocked(tx, interviewID, models.StatusCanceled); err != nil {
				return err
			}
			return tx.Model(&models.ScheduledTask{}).
				Where("interview_id = ? AND consumed = ?", interviewID, false).
				Update("consumed", true).Error
		})
		if err != nil {
			return err
		}
		log.Printf("🛑 Interview #%d canceled, pending tasks invalidated", interviewID)
		return nil
	})
}

// RegisterTask creates a pending task of the given kind unless one already
// exists, keeping the "at most one pending task per kind" invariant.
func (s *InterviewService) RegisterTask(tx *gorm.DB, interviewID uint, kind string, fireAt time.Time) error {
	var count int64
	err := tx.Model(&models.ScheduledTask{}).
		Where("interview_id = ? AND kind = ? AND consumed = ?", interviewID, kind, false).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&models.ScheduledTask{
		InterviewID: interviewID,
		Kind:        kind,
		FireAt:      fireAt,
	}).Error
}

// Snapshot is the read model handed back to callers.
type Snapshot struct {
	Interview    models.Interview
	Candidate    models.Candidate
	Participants []models.User
	ATS          *models.ATSRecord
}

func (s *InterviewService) Get(interviewID uint) (*Snapshot, error) {
	var interview models.Interview
	if err := s.DB.Preload("Feedback").First(&interview, interviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInterviewNotFound
		}
		return nil, err
	}

	var cand models.Candidate
	if err := s.DB.First(&cand, interview.CandidateID).Error; err != nil {
		return nil, err
	}

	users, err := s.Participants(interviewID)
	if err != nil {
		return nil, err
	}

	var ats models.ATSRecord
	snapshot := &Snapshot{Interview: interview, Candidate: cand, Participants: users}
	err = s.DB.Where("interview_id = ?", interviewID).First(&ats).Error
	if err == nil {
		snapshot.ATS = &ats
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return snapshot, nil
}

// Participants returns the interviewer users of an interview, in panel order.
func (s *InterviewService) Participants(interviewID uint) ([]models.User, error) {
	var rows []models.InterviewParticipant
	if err := s.DB.Where("interview_id = ?", interviewID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	var users []models.User
	for _, row := range rows {
		var u models.User
		if err := s.DB.First(&u, row.UserID).Error; err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
