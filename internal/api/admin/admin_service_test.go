package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/medibook-api/internal/types"
)

type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) GetIdentityByID(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

func (m *MockAdminRepo) MarkVerified(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

func (m *MockAdminRepo) ListPending(ctx context.Context, filter types.ProfessionalFilter) ([]types.Identity, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Identity), args.Error(1)
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() { c.calls++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVerifyProfessional(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("UnverifiedDoctorBecomesVerified", func(t *testing.T) {
		repo := new(MockAdminRepo)
		dir := &countingInvalidator{}
		service := NewAdminService(repo, dir, discardLogger())
		now := time.Now()

		repo.On("GetIdentityByID", mock.Anything, id).
			Return(&types.Identity{ID: id, Role: types.RoleDoctor}, nil).Once()
		repo.On("MarkVerified", mock.Anything, id).
			Return(&types.Identity{ID: id, Role: types.RoleDoctor, Verified: true, VerifiedAt: &now}, nil).Once()

		identity, err := service.VerifyProfessional(ctx, id)
		require.NoError(t, err)
		assert.True(t, identity.Verified)
		assert.Equal(t, types.StatusVerified, identity.Status())
		assert.Equal(t, 1, dir.calls)
		repo.AssertExpectations(t)
	})

	t.Run("AlreadyVerifiedIsNoOp", func(t *testing.T) {
		repo := new(MockAdminRepo)
		dir := &countingInvalidator{}
		service := NewAdminService(repo, dir, discardLogger())

		repo.On("GetIdentityByID", mock.Anything, id).
			Return(&types.Identity{ID: id, Role: types.RoleNurse, Verified: true}, nil).Once()

		identity, err := service.VerifyProfessional(ctx, id)
		require.NoError(t, err)
		assert.True(t, identity.Verified)
		assert.Zero(t, dir.calls)
		repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
	})

	t.Run("PatientIsInvalidTransition", func(t *testing.T) {
		repo := new(MockAdminRepo)
		service := NewAdminService(repo, nil, discardLogger())

		repo.On("GetIdentityByID", mock.Anything, id).
			Return(&types.Identity{ID: id, Role: types.RolePatient, Verified: true}, nil).Once()

		_, err := service.VerifyProfessional(ctx, id)
		assert.ErrorIs(t, err, types.ErrInvalidTransition)
		repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
	})

	t.Run("UnknownIdentity", func(t *testing.T) {
		repo := new(MockAdminRepo)
		service := NewAdminService(repo, nil, discardLogger())

		repo.On("GetIdentityByID", mock.Anything, id).Return(nil, types.ErrNotFound).Once()

		_, err := service.VerifyProfessional(ctx, id)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("UpdateFailure", func(t *testing.T) {
		repo := new(MockAdminRepo)
		dir := &countingInvalidator{}
		service := NewAdminService(repo, dir, discardLogger())

		repo.On("GetIdentityByID", mock.Anything, id).
			Return(&types.Identity{ID: id, Role: types.RoleDoctor}, nil).Once()
		repo.On("MarkVerified", mock.Anything, id).Return(nil, types.ErrPersistence).Once()

		_, err := service.VerifyProfessional(ctx, id)
		assert.ErrorIs(t, err, types.ErrPersistence)
		assert.Zero(t, dir.calls)
	})
}

func TestListPending(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsLimit", func(t *testing.T) {
		repo := new(MockAdminRepo)
		service := NewAdminService(repo, nil, discardLogger())

		repo.On("ListPending", mock.Anything, types.ProfessionalFilter{Limit: 20}).Return(nil, nil).Once()

		pending, err := service.ListPending(ctx, types.ProfessionalFilter{})
		require.NoError(t, err)
		assert.NotNil(t, pending)
		assert.Empty(t, pending)
		repo.AssertExpectations(t)
	})

	t.Run("RejectsNonProfessionalRole", func(t *testing.T) {
		repo := new(MockAdminRepo)
		service := NewAdminService(repo, nil, discardLogger())

		_, err := service.ListPending(ctx, types.ProfessionalFilter{Role: types.RolePatient})
		assert.ErrorIs(t, err, types.ErrValidation)
		repo.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything)
	})
}
