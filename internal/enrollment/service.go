package enrollment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campusflow/course-scheduling-backend/internal/notify"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/clock"
	"github.com/campusflow/course-scheduling-backend/internal/roster"
	"github.com/campusflow/course-scheduling-backend/internal/schedule"
)

// SessionCheck is an optional resource booking proposal attached to an
// enrollment attempt. When set, the conflict detector is consulted before any
// capacity is touched: a schedule conflict is something the caller can fix by
// picking another slot, a full roster is not.
type SessionCheck struct {
	ResourceIDs []string
	StartTime   time.Time
	EndTime     time.Time
}

type EnrollRequest struct {
	RosterID      string
	ParticipantID string
	Session       *SessionCheck
}

type Service interface {
	// Enroll runs a single admission attempt: duplicate check, optional
	// schedule conflict check, then the capacity decision. The returned
	// enrollment is enrolled or waitlisted; rejections come back as errors.
	Enroll(ctx context.Context, req EnrollRequest) (*Enrollment, error)

	// Withdraw cancels an enrollment and promotes the earliest waitlisted
	// one when a seat frees up.
	Withdraw(ctx context.Context, id string) (*Enrollment, error)

	GetByID(ctx context.Context, id string) (*Enrollment, error)
	List(ctx context.Context, filter Filter) ([]*Enrollment, int, error)
	ListWaitlist(ctx context.Context, rosterID string) ([]*Enrollment, error)
}

type service struct {
	repo       Repository
	rosService roster.Service
	schService schedule.Service
	notifier   notify.Notifier
	clk        clock.Clock
	log        *zap.Logger
}

func NewService(
	repo Repository,
	rosService roster.Service,
	schService schedule.Service,
	notifier notify.Notifier,
	clk clock.Clock,
	log *zap.Logger,
) Service {
	return &service{
		repo:       repo,
		rosService: rosService,
		schService: schService,
		notifier:   notifier,
		clk:        clk,
		log:        log,
	}
}

func (s *service) Enroll(ctx context.Context, req EnrollRequest) (*Enrollment, error) {
	if _, err := s.rosService.GetByID(ctx, req.RosterID); err != nil {
		return nil, err
	}

	// 1. The participant may hold at most one active enrollment per roster.
	_, err := s.repo.GetActive(ctx, req.RosterID, req.ParticipantID)
	if err == nil {
		return nil, ErrDuplicate
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// 2. Schedule conflicts before capacity.
	if req.Session != nil {
		if err := s.checkSession(ctx, req.Session); err != nil {
			return nil, err
		}
	}

	// 3. Capacity decision and persistence, atomically.
	e := &Enrollment{
		RosterID:      req.RosterID,
		ParticipantID: req.ParticipantID,
		CreatedAt:     s.clk.Now(),
	}
	if err := s.repo.Admit(ctx, e); err != nil {
		return nil, err
	}

	// 4. Fire-and-forget notification.
	s.notifier.Publish(ctx, notify.Event{
		EnrollmentID: e.ID,
		RosterID:     e.RosterID,
		Status:       string(e.Status),
		Timestamp:    s.clk.Now(),
	})

	return e, nil
}

// checkSession consults the conflict detector for every resource the
// proposed session would book and fails with the union of collisions.
func (s *service) checkSession(ctx context.Context, session *SessionCheck) error {
	var conflicts []schedule.Booking
	for _, resourceID := range session.ResourceIDs {
		found, err := s.schService.FindConflicts(ctx, resourceID, session.StartTime, session.EndTime, "")
		if err != nil {
			return err
		}
		conflicts = append(conflicts, found...)
	}
	if len(conflicts) > 0 {
		return &schedule.ConflictError{Conflicts: conflicts}
	}
	return nil
}

func (s *service) Withdraw(ctx context.Context, id string) (*Enrollment, error) {
	withdrawn, promoted, err := s.repo.Withdraw(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	s.notifier.Publish(ctx, notify.Event{
		EnrollmentID: withdrawn.ID,
		RosterID:     withdrawn.RosterID,
		Status:       string(withdrawn.Status),
		Timestamp:    now,
	})
	if promoted != nil {
		s.log.Info("waitlisted enrollment promoted",
			zap.String("enrollment_id", promoted.ID),
			zap.String("roster_id", promoted.RosterID))
		s.notifier.Publish(ctx, notify.Event{
			EnrollmentID: promoted.ID,
			RosterID:     promoted.RosterID,
			Status:       string(promoted.Status),
			Timestamp:    now,
		})
	}

	return withdrawn, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Enrollment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Enrollment, int, error) {
	if filter.Status != "" && !Status(filter.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListWaitlist(ctx context.Context, rosterID string) ([]*Enrollment, error) {
	return s.repo.ListWaitlist(ctx, rosterID)
}
