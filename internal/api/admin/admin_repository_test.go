package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/medibook-api/internal/types"
)

var identityColumnNames = []string{
	"id", "email", "role", "verified", "name", "specialty", "city", "experience",
	"license_number", "government_id", "verified_at", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PostgresAdminRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresAdminRepo(pool, discardLogger()), pool
}

func TestPostgresAdminRepo_MarkVerified(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Updated", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		now := time.Now().UTC()

		pool.ExpectQuery(`UPDATE identities\s+SET verified = TRUE`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(identityColumnNames).
				AddRow(id, "doc@x.com", "doctor", true, "Dr. A", nil, nil, nil, nil, nil, &now, now, now))

		identity, err := repo.MarkVerified(ctx, id)
		require.NoError(t, err)
		assert.True(t, identity.Verified)
		require.NotNil(t, identity.VerifiedAt)
		assert.Equal(t, now, *identity.VerifiedAt)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("NoMatchingProfessional", func(t *testing.T) {
		repo, pool := newMockRepo(t)

		pool.ExpectQuery(`UPDATE identities`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		_, err := repo.MarkVerified(ctx, id)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestPostgresAdminRepo_ListPending(t *testing.T) {
	ctx := context.Background()

	t.Run("FiltersByRole", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		now := time.Now().UTC()

		pool.ExpectQuery(`WHERE verified = FALSE AND role IN \('doctor', 'nurse'\) AND role = \$1 ORDER BY created_at ASC LIMIT \$2 OFFSET \$3`).
			WithArgs("nurse", 10, 0).
			WillReturnRows(pgxmock.NewRows(identityColumnNames).
				AddRow(uuid.New(), "n1@x.com", "nurse", false, "N1", nil, nil, nil, nil, nil, nil, now, now).
				AddRow(uuid.New(), "n2@x.com", "nurse", false, "N2", nil, nil, nil, nil, nil, nil, now, now))

		pending, err := repo.ListPending(ctx, types.ProfessionalFilter{Role: types.RoleNurse, Limit: 10})
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "n1@x.com", pending[0].Email)
		assert.Equal(t, types.StatusUnverified, pending[1].Status())
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("QueryFailure", func(t *testing.T) {
		repo, pool := newMockRepo(t)

		pool.ExpectQuery(`FROM identities`).WithArgs(20, 40).WillReturnError(errors.New("timeout"))

		_, err := repo.ListPending(ctx, types.ProfessionalFilter{Limit: 20, Offset: 40})
		assert.ErrorIs(t, err, types.ErrPersistence)
	})
}
