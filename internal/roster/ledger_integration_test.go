package roster

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Requires a migrated database; set TEST_DB_DSN to run.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func createRoster(t *testing.T, pool *pgxpool.Pool, maxCapacity *int32) *Roster {
	t.Helper()

	repo := NewPgxRepository(pool)
	ros := &Roster{Name: "Intro to Go", MaxCapacity: maxCapacity}
	require.NoError(t, repo.Create(context.Background(), ros))
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), ros.ID)
	})
	return ros
}

// Two concurrent admits against a single remaining seat must resolve to
// exactly one admission and one waitlist slot at position 1.
func TestConcurrentTryAdmitSingleSeat(t *testing.T) {
	pool := newTestPool(t)
	ledger := NewLedger(zap.NewNop())
	ros := createRoster(t, pool, capOf(1))

	ctx := context.Background()
	const attempts = 2

	outcomes := make([]AdmitOutcome, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			tx, err := pool.Begin(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer tx.Rollback(ctx)

			outcomes[i], errs[i] = ledger.TryAdmit(ctx, tx, ros.ID)
			if errs[i] == nil {
				errs[i] = tx.Commit(ctx)
			}
		}(i)
	}
	wg.Wait()

	admitted, waitlisted := 0, 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if outcomes[i].Admitted {
			admitted++
		} else {
			waitlisted++
			assert.EqualValues(t, 1, outcomes[i].WaitlistPosition)
		}
	}
	assert.Equal(t, 1, admitted, "exactly one attempt may take the last seat")
	assert.Equal(t, 1, waitlisted)

	stored, err := NewPgxRepository(pool).GetByID(ctx, ros.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored.CurrentEnrollment)
	assert.EqualValues(t, 1, stored.WaitlistCount)
}

func TestTryAdmitUnknownRoster(t *testing.T) {
	pool := newTestPool(t)
	ledger := NewLedger(zap.NewNop())

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = ledger.TryAdmit(ctx, tx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
