package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ListOverlapping returns the bookings for one resource whose windows
	// overlap [start, end), ordered by start time. excludeBookingID is used
	// when re-checking an existing booking after edits.
	ListOverlapping(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) ([]Booking, error)

	// ListForRange returns all bookings for the given resources with any
	// overlap of [start, end), ordered by resource then start time.
	ListForRange(ctx context.Context, resourceIDs []string, start, end time.Time) ([]Booking, error)

	// RegisterAll inserts the given bookings in one transaction, re-checking
	// for collisions under per-resource advisory locks. Either every booking
	// is inserted or none is; on collision the union of conflicting bookings
	// is returned with a nil error and no insert happens.
	RegisterAll(ctx context.Context, bookings []*Booking) ([]Booking, error)

	// Delete removes a booking. Deleting an absent booking is a no-op.
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const bookingColumns = "b.id, b.resource_id, r.name, r.kind, b.owner_ref, b.start_time, b.end_time, b.created_at"

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.ResourceID, &b.ResourceName, &b.ResourceKind,
		&b.OwnerRef, &b.StartTime, &b.EndTime, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns).
		From("public.resource_bookings b").
		Join("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(bookingColumns, "count(*) OVER() as total_count").
		From("public.resource_bookings b").
		Join("public.resources r ON b.resource_id = r.id")

	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"b.resource_id": filter.ResourceID})
	}
	if filter.OwnerRef != "" {
		query = query.Where(squirrel.Eq{"b.owner_ref": filter.OwnerRef})
	}
	// Range filtering keeps any booking intersecting [From, To).
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.end_time": filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.start_time": filter.To})
	}

	query = query.OrderBy("b.start_time ASC")

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.ResourceID, &b.ResourceName, &b.ResourceKind,
			&b.OwnerRef, &b.StartTime, &b.EndTime, &b.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, total, rows.Err()
}

func (r *pgxRepository) ListOverlapping(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) ([]Booking, error) {
	bookings, err := queryOverlapping(ctx, r.pool, resourceID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// queryOverlapping runs the overlap scan against any pgx querier, so the same
// SQL serves both the read path and the locked re-check inside RegisterAll.
// Overlap condition for half-open windows: start_time < end AND end_time > start.
func queryOverlapping(ctx context.Context, q querier, resourceID string, start, end time.Time, excludeBookingID string) ([]Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(bookingColumns).
		From("public.resource_bookings b").
		Join("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{"b.resource_id": resourceID}).
		Where(squirrel.Lt{"b.start_time": end}).
		Where(squirrel.Gt{"b.end_time": start}).
		OrderBy("b.start_time ASC")

	if excludeBookingID != "" {
		query = query.Where(squirrel.NotEq{"b.id": excludeBookingID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query failed: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("check overlap failed: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.ResourceID, &b.ResourceName, &b.ResourceKind,
			&b.OwnerRef, &b.StartTime, &b.EndTime, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *pgxRepository) ListForRange(ctx context.Context, resourceIDs []string, start, end time.Time) ([]Booking, error) {
	if len(resourceIDs) == 0 {
		return nil, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(bookingColumns).
		From("public.resource_bookings b").
		Join("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{"b.resource_id": resourceIDs}).
		Where(squirrel.Lt{"b.start_time": end}).
		Where(squirrel.Gt{"b.end_time": start}).
		OrderBy("b.resource_id ASC", "b.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build range query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings for range failed: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.ResourceID, &b.ResourceName, &b.ResourceKind,
			&b.OwnerRef, &b.StartTime, &b.EndTime, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *pgxRepository) RegisterAll(ctx context.Context, bookings []*Booking) ([]Booking, error) {
	if len(bookings) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin register transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Advisory locks serialize check-then-insert per resource. Locking in
	// sorted id order keeps concurrent multi-resource registrations from
	// deadlocking each other.
	resourceIDs := make([]string, 0, len(bookings))
	seen := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.ResourceID] {
			seen[b.ResourceID] = true
			resourceIDs = append(resourceIDs, b.ResourceID)
		}
	}
	sort.Strings(resourceIDs)

	for _, id := range resourceIDs {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", id); err != nil {
			return nil, fmt.Errorf("acquire resource lock failed: %w", err)
		}
	}

	// Re-check every proposed window under the locks. The union of conflicts
	// across all resources is reported so a session double-booking both its
	// instructor and its location sees both collisions at once.
	var conflicts []Booking
	for _, b := range bookings {
		found, err := queryOverlapping(ctx, tx, b.ResourceID, b.StartTime, b.EndTime, "")
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, found...)
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	for _, b := range bookings {
		query, args, err := psql.Insert("public.resource_bookings").
			Columns("resource_id", "owner_ref", "start_time", "end_time").
			Values(b.ResourceID, b.OwnerRef, b.StartTime, b.EndTime).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert booking query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("insert booking failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit register transaction failed: %w", err)
	}
	return nil, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.resource_bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	// Idempotent release: zero rows affected is fine.
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	return nil
}
