package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/course-scheduling-backend/internal/roster"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Enrollment, error)

	// GetActive returns the participant's enrolled or waitlisted record on
	// the roster, or ErrNotFound.
	GetActive(ctx context.Context, rosterID, participantID string) (*Enrollment, error)

	List(ctx context.Context, filter Filter) ([]*Enrollment, int, error)

	// ListWaitlist returns the roster's waitlisted enrollments ordered by
	// position.
	ListWaitlist(ctx context.Context, rosterID string) ([]*Enrollment, error)

	// Admit runs the capacity decision and the enrollment insert in one
	// transaction: the ledger admits or waitlists, the record is persisted
	// with the resulting status, and both commit together or not at all.
	// A concurrent duplicate surfaces as ErrDuplicate.
	Admit(ctx context.Context, e *Enrollment) error

	// Withdraw marks the enrollment withdrawn, releases its seat or waitlist
	// slot, and, when a seat freed up and the waitlist is non-empty, flips
	// the earliest waitlisted enrollment (created_at, then id) to enrolled.
	// The whole flow is one roster-scoped transaction; the roster row lock
	// is taken before any enrollment row lock. Returns the withdrawn record
	// and the promoted one (nil when no promotion happened).
	Withdraw(ctx context.Context, id string) (*Enrollment, *Enrollment, error)
}

type pgxRepository struct {
	pool   *pgxpool.Pool
	ledger *roster.Ledger
}

func NewPgxRepository(pool *pgxpool.Pool, ledger *roster.Ledger) Repository {
	return &pgxRepository{pool: pool, ledger: ledger}
}

const enrollmentColumns = "id, roster_id, participant_id, status, waitlist_position, created_at, updated_at"

func scanEnrollment(row pgx.Row) (*Enrollment, error) {
	var e Enrollment
	err := row.Scan(
		&e.ID, &e.RosterID, &e.ParticipantID, &e.Status,
		&e.WaitlistPosition, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Enrollment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(enrollmentColumns).
		From("public.enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get enrollment query failed: %w", err)
	}

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get enrollment failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) GetActive(ctx context.Context, rosterID, participantID string) (*Enrollment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(enrollmentColumns).
		From("public.enrollments").
		Where(squirrel.Eq{"roster_id": rosterID}).
		Where(squirrel.Eq{"participant_id": participantID}).
		Where(squirrel.Eq{"status": []string{string(StatusEnrolled), string(StatusWaitlisted)}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get active enrollment query failed: %w", err)
	}

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active enrollment failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Enrollment, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(enrollmentColumns, "count(*) OVER() as total_count").
		From("public.enrollments")

	if filter.RosterID != "" {
		query = query.Where(squirrel.Eq{"roster_id": filter.RosterID})
	}
	if filter.ParticipantID != "" {
		query = query.Where(squirrel.Eq{"participant_id": filter.ParticipantID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	query = query.OrderBy("created_at ASC", "id ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list enrollments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments failed: %w", err)
	}
	defer rows.Close()

	var enrollments []*Enrollment
	var total int
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(
			&e.ID, &e.RosterID, &e.ParticipantID, &e.Status,
			&e.WaitlistPosition, &e.CreatedAt, &e.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan enrollment failed: %w", err)
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, total, rows.Err()
}

func (r *pgxRepository) ListWaitlist(ctx context.Context, rosterID string) ([]*Enrollment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(enrollmentColumns).
		From("public.enrollments").
		Where(squirrel.Eq{"roster_id": rosterID}).
		Where(squirrel.Eq{"status": string(StatusWaitlisted)}).
		OrderBy("waitlist_position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list waitlist query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list waitlist failed: %w", err)
	}
	defer rows.Close()

	var enrollments []*Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(
			&e.ID, &e.RosterID, &e.ParticipantID, &e.Status,
			&e.WaitlistPosition, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment failed: %w", err)
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

func (r *pgxRepository) Admit(ctx context.Context, e *Enrollment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin admit transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// The ledger takes the roster row lock, which also serializes concurrent
	// admits for the duplicate check below.
	outcome, err := r.ledger.TryAdmit(ctx, tx, e.RosterID)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return roster.ErrNotFound
		}
		return err
	}

	e.Status = StatusWaitlisted
	e.WaitlistPosition = &outcome.WaitlistPosition
	if outcome.Admitted {
		e.Status = StatusEnrolled
		e.WaitlistPosition = nil
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO public.enrollments (roster_id, participant_id, status, waitlist_position, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, updated_at`,
		e.RosterID, e.ParticipantID, e.Status, e.WaitlistPosition, e.CreatedAt,
	).Scan(&e.ID, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert enrollment failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit admit transaction failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Withdraw(ctx context.Context, id string) (*Enrollment, *Enrollment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin withdraw transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock order is roster row first, enrollment rows second, on every write
	// path (promoteHead locks the waitlist head while already holding the
	// roster lock). The roster id is resolved with a plain read so no
	// enrollment lock is taken before the roster lock.
	var rosterID string
	err = tx.QueryRow(ctx,
		`SELECT roster_id FROM public.enrollments WHERE id = $1`,
		id,
	).Scan(&rosterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("resolve enrollment roster failed: %w", err)
	}
	if err := r.ledger.LockRoster(ctx, tx, rosterID); err != nil {
		return nil, nil, err
	}

	// Re-read under the roster lock: a concurrent withdrawal may have changed
	// the status (or promoted this enrollment) between the plain read and the
	// lock acquisition.
	withdrawn, err := scanEnrollment(tx.QueryRow(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM public.enrollments
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("lock enrollment row failed: %w", err)
	}
	if withdrawn.Status == StatusWithdrawn {
		return nil, nil, ErrAlreadyWithdrawn
	}

	wasEnrolled := withdrawn.Status == StatusEnrolled
	vacatedPosition := withdrawn.WaitlistPosition

	// Flip to withdrawn before the ledger renumbers, so this record is not
	// shifted along with the surviving waitlist entries.
	err = tx.QueryRow(ctx,
		`UPDATE public.enrollments
		 SET status = $2, waitlist_position = NULL, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		id, StatusWithdrawn,
	).Scan(&withdrawn.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("update enrollment failed: %w", err)
	}
	withdrawn.Status = StatusWithdrawn
	withdrawn.WaitlistPosition = nil

	result, err := r.ledger.Withdraw(ctx, tx, withdrawn.RosterID, wasEnrolled, vacatedPosition)
	if err != nil {
		return nil, nil, err
	}

	var promoted *Enrollment
	if result.PromotionCandidate {
		promoted, err = r.promoteHead(ctx, tx, withdrawn.RosterID)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit withdraw transaction failed: %w", err)
	}
	return withdrawn, promoted, nil
}

// promoteHead flips the earliest waitlisted enrollment to enrolled and books
// the freed seat in the ledger. Ties on creation time break by enrollment id
// for determinism.
func (r *pgxRepository) promoteHead(ctx context.Context, tx pgx.Tx, rosterID string) (*Enrollment, error) {
	promoted, err := scanEnrollment(tx.QueryRow(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM public.enrollments
		 WHERE roster_id = $1 AND status = $2
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1
		 FOR UPDATE`,
		rosterID, StatusWaitlisted,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Counters said a candidate exists; the rows disagree.
			return nil, roster.ErrCapacityInvariant
		}
		return nil, fmt.Errorf("lock promotion candidate failed: %w", err)
	}

	err = tx.QueryRow(ctx,
		`UPDATE public.enrollments
		 SET status = $2, waitlist_position = NULL, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		promoted.ID, StatusEnrolled,
	).Scan(&promoted.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("promote enrollment failed: %w", err)
	}
	promoted.Status = StatusEnrolled
	promoted.WaitlistPosition = nil

	if err := r.ledger.Promote(ctx, tx, rosterID); err != nil {
		return nil, err
	}
	return promoted, nil
}
