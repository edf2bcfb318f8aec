package enrollment

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusflow/course-scheduling-backend/internal/roster"
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

func createRoster(t *testing.T, pool *pgxpool.Pool, maxCapacity int32) *roster.Roster {
	t.Helper()

	repo := roster.NewPgxRepository(pool)
	ros := &roster.Roster{Name: "Algorithms 101", MaxCapacity: &maxCapacity}
	require.NoError(t, repo.Create(context.Background(), ros))
	t.Cleanup(func() {
		// Cascade removes the enrollments created by the test.
		_ = repo.Delete(context.Background(), ros.ID)
	})
	return ros
}

func admit(t *testing.T, repo Repository, rosterID, participantID string) *Enrollment {
	t.Helper()

	e := &Enrollment{
		RosterID:      rosterID,
		ParticipantID: participantID,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Admit(context.Background(), e))
	return e
}

func TestAdmitWithdrawPromoteRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	ros := createRoster(t, pool, 1)
	repo := NewPgxRepository(pool, roster.NewLedger(zap.NewNop()))
	ctx := context.Background()

	p1 := uuid.NewString()
	p2 := uuid.NewString()

	first := admit(t, repo, ros.ID, p1)
	assert.Equal(t, StatusEnrolled, first.Status)
	assert.Nil(t, first.WaitlistPosition)

	second := admit(t, repo, ros.ID, p2)
	assert.Equal(t, StatusWaitlisted, second.Status)
	require.NotNil(t, second.WaitlistPosition)
	assert.EqualValues(t, 1, *second.WaitlistPosition)

	// Active enrollment blocks a second admission for the same participant.
	dup := &Enrollment{RosterID: ros.ID, ParticipantID: p1, CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, repo.Admit(ctx, dup), ErrDuplicate)

	withdrawn, promoted, err := repo.Withdraw(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWithdrawn, withdrawn.Status)
	require.NotNil(t, promoted)
	assert.Equal(t, second.ID, promoted.ID)
	assert.Equal(t, StatusEnrolled, promoted.Status)
	assert.Nil(t, promoted.WaitlistPosition)

	waitlist, err := repo.ListWaitlist(ctx, ros.ID)
	require.NoError(t, err)
	assert.Empty(t, waitlist)

	stored, err := roster.NewPgxRepository(pool).GetByID(ctx, ros.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored.CurrentEnrollment)
	assert.EqualValues(t, 0, stored.WaitlistCount)

	// The seat freed by p1 is taken; history does not block re-enrollment.
	again := admit(t, repo, ros.ID, p1)
	assert.Equal(t, StatusWaitlisted, again.Status)
}

// An enrolled withdrawal promotes the waitlist head while a concurrent
// withdrawal of that same head runs. Both transactions lock the roster row
// before any enrollment row, so they serialize in either order; neither may
// abort, and the roster must drain to zero.
func TestConcurrentWithdrawEnrolledAndWaitlistHead(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPgxRepository(pool, roster.NewLedger(zap.NewNop()))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		ros := createRoster(t, pool, 1)
		enrolled := admit(t, repo, ros.ID, uuid.NewString())
		head := admit(t, repo, ros.ID, uuid.NewString())
		require.Equal(t, StatusEnrolled, enrolled.Status)
		require.Equal(t, StatusWaitlisted, head.Status)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for j, id := range []string{enrolled.ID, head.ID} {
			wg.Add(1)
			go func(j int, id string) {
				defer wg.Done()
				_, _, errs[j] = repo.Withdraw(ctx, id)
			}(j, id)
		}
		wg.Wait()

		// The head may be promoted before its own withdrawal runs, or leave
		// the waitlist first; both interleavings must complete cleanly.
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		stored, err := roster.NewPgxRepository(pool).GetByID(ctx, ros.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, stored.CurrentEnrollment, "iteration %d", i)
		assert.EqualValues(t, 0, stored.WaitlistCount, "iteration %d", i)

		for _, id := range []string{enrolled.ID, head.ID} {
			e, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, StatusWithdrawn, e.Status)
		}
	}
}

func TestWithdrawUnknownEnrollment(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPgxRepository(pool, roster.NewLedger(zap.NewNop()))

	_, _, err := repo.Withdraw(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
