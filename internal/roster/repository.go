package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, r *Roster) error
	GetByID(ctx context.Context, id string) (*Roster, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Roster, error)
	List(ctx context.Context, filter Filter) ([]*Roster, int, error)

	// Delete removes the roster; enrollments cascade at the database level.
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, ros *Roster) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.rosters").
		Columns("name", "max_capacity").
		Values(ros.Name, ros.MaxCapacity).
		Suffix("RETURNING id, current_enrollment, waitlist_count, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create roster query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&ros.ID, &ros.CurrentEnrollment, &ros.WaitlistCount, &ros.CreatedAt, &ros.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Roster, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "max_capacity", "current_enrollment", "waitlist_count",
		"created_at", "updated_at",
	).
		From("public.rosters").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get roster query failed: %w", err)
	}

	var ros Roster
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ros.ID, &ros.Name, &ros.MaxCapacity, &ros.CurrentEnrollment,
		&ros.WaitlistCount, &ros.CreatedAt, &ros.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get roster failed: %w", err)
	}
	return &ros, nil
}

func (r *pgxRepository) GetByIDs(ctx context.Context, ids []string) ([]*Roster, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "max_capacity", "current_enrollment", "waitlist_count",
		"created_at", "updated_at",
	).
		From("public.rosters").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get rosters query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get rosters failed: %w", err)
	}
	defer rows.Close()

	var rosters []*Roster
	for rows.Next() {
		var ros Roster
		if err := rows.Scan(
			&ros.ID, &ros.Name, &ros.MaxCapacity, &ros.CurrentEnrollment,
			&ros.WaitlistCount, &ros.CreatedAt, &ros.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan roster failed: %w", err)
		}
		rosters = append(rosters, &ros)
	}
	return rosters, rows.Err()
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Roster, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "max_capacity", "current_enrollment", "waitlist_count",
		"created_at", "updated_at", "count(*) OVER() as total_count",
	).
		From("public.rosters").
		OrderBy("created_at DESC")

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
		return nil, 0, fmt.Errorf("build list rosters query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rosters failed: %w", err)
	}
	defer rows.Close()

	var rosters []*Roster
	var total int
	for rows.Next() {
		var ros Roster
		if err := rows.Scan(
			&ros.ID, &ros.Name, &ros.MaxCapacity, &ros.CurrentEnrollment,
			&ros.WaitlistCount, &ros.CreatedAt, &ros.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan roster failed: %w", err)
		}
		rosters = append(rosters, &ros)
	}
	return rosters, total, rows.Err()
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.rosters").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete roster query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete roster failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
