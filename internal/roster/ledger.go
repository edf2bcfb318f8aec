package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// WithdrawResult tells the caller whether a waitlisted enrollment can take
// the freed seat. The ledger only signals; it knows counters and positions,
// never participants, so the admission side performs the actual status flip.
type WithdrawResult struct {
	PromotionCandidate bool
}

// Ledger executes capacity transitions against the rosters table. Every
// method runs inside a caller-owned transaction and serializes per roster by
// taking a row-level lock, so two concurrent admits never both see the last
// free seat.
type Ledger struct {
	log *zap.Logger
}

func NewLedger(log *zap.Logger) *Ledger {
	return &Ledger{log: log}
}

// LockRoster takes the roster row lock without applying a transition. Write
// paths that also lock enrollment rows take the roster lock first through
// this, so the roster-then-enrollment order holds on every path.
func (l *Ledger) LockRoster(ctx context.Context, tx pgx.Tx, rosterID string) error {
	_, err := l.lockCounters(ctx, tx, rosterID)
	return err
}

// lockCounters loads the roster's counters under FOR UPDATE. The lock is held
// until the caller's transaction ends.
func (l *Ledger) lockCounters(ctx context.Context, tx pgx.Tx, rosterID string) (Counters, error) {
	var c Counters
	err := tx.QueryRow(ctx,
		`SELECT max_capacity, current_enrollment, waitlist_count
		 FROM public.rosters
		 WHERE id = $1
		 FOR UPDATE`,
		rosterID,
	).Scan(&c.MaxCapacity, &c.CurrentEnrollment, &c.WaitlistCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Counters{}, ErrNotFound
		}
		return Counters{}, fmt.Errorf("lock roster row failed: %w", err)
	}
	return c, nil
}

func (l *Ledger) writeCounters(ctx context.Context, tx pgx.Tx, rosterID string, c Counters) error {
	_, err := tx.Exec(ctx,
		`UPDATE public.rosters
		 SET current_enrollment = $2, waitlist_count = $3, updated_at = now()
		 WHERE id = $1`,
		rosterID, c.CurrentEnrollment, c.WaitlistCount,
	)
	if err != nil {
		return fmt.Errorf("update roster counters failed: %w", err)
	}
	return nil
}

func (l *Ledger) transitionErr(rosterID string, err error) error {
	if errors.Is(err, ErrCapacityInvariant) {
		l.log.Error("roster capacity invariant violated",
			zap.String("roster_id", rosterID))
	}
	return err
}

// TryAdmit admits into a free seat or assigns the next dense waitlist
// position.
func (l *Ledger) TryAdmit(ctx context.Context, tx pgx.Tx, rosterID string) (AdmitOutcome, error) {
	c, err := l.lockCounters(ctx, tx, rosterID)
	if err != nil {
		return AdmitOutcome{}, err
	}

	outcome, err := c.TryAdmit()
	if err != nil {
		return AdmitOutcome{}, l.transitionErr(rosterID, err)
	}

	if err := l.writeCounters(ctx, tx, rosterID, c); err != nil {
		return AdmitOutcome{}, err
	}
	return outcome, nil
}

// Withdraw releases either a seat or a waitlist slot. For a waitlisted
// withdrawal the positions above the vacated one shift down by one so the
// sequence stays dense.
func (l *Ledger) Withdraw(ctx context.Context, tx pgx.Tx, rosterID string, wasEnrolled bool, waitlistPosition *int32) (WithdrawResult, error) {
	c, err := l.lockCounters(ctx, tx, rosterID)
	if err != nil {
		return WithdrawResult{}, err
	}

	if wasEnrolled {
		promotable, err := c.WithdrawEnrolled()
		if err != nil {
			return WithdrawResult{}, l.transitionErr(rosterID, err)
		}
		if err := l.writeCounters(ctx, tx, rosterID, c); err != nil {
			return WithdrawResult{}, err
		}
		return WithdrawResult{PromotionCandidate: promotable}, nil
	}

	if err := c.WithdrawWaitlisted(); err != nil {
		return WithdrawResult{}, l.transitionErr(rosterID, err)
	}
	if err := l.writeCounters(ctx, tx, rosterID, c); err != nil {
		return WithdrawResult{}, err
	}
	if waitlistPosition != nil {
		if err := l.closeWaitlistGap(ctx, tx, rosterID, *waitlistPosition); err != nil {
			return WithdrawResult{}, err
		}
	}
	return WithdrawResult{}, nil
}

// Promote consumes the head of the waitlist. The promoted enrollment must
// already be flipped to enrolled (vacating position 1) before this call; the
// remaining waitlisted positions shift down by one.
func (l *Ledger) Promote(ctx context.Context, tx pgx.Tx, rosterID string) error {
	c, err := l.lockCounters(ctx, tx, rosterID)
	if err != nil {
		return err
	}

	if err := c.Promote(); err != nil {
		return l.transitionErr(rosterID, err)
	}
	if err := l.writeCounters(ctx, tx, rosterID, c); err != nil {
		return err
	}
	return l.closeWaitlistGap(ctx, tx, rosterID, 1)
}

// closeWaitlistGap renumbers positions above the vacated one downward by one.
func (l *Ledger) closeWaitlistGap(ctx context.Context, tx pgx.Tx, rosterID string, vacated int32) error {
	_, err := tx.Exec(ctx,
		`UPDATE public.enrollments
		 SET waitlist_position = waitlist_position - 1, updated_at = now()
		 WHERE roster_id = $1 AND status = 'waitlisted' AND waitlist_position > $2`,
		rosterID, vacated,
	)
	if err != nil {
		return fmt.Errorf("renumber waitlist failed: %w", err)
	}
	return nil
}
