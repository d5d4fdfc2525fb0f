package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/medibook-api/app/observability/metrics"
	"github.com/FACorreiaa/medibook-api/internal/api"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

var _ AdminService = (*AdminServiceImpl)(nil)

// AdminService moves doctors and nurses from Registered(unverified) to
// Verified.
type AdminService interface {
	VerifyProfessional(ctx context.Context, id uuid.UUID) (*types.Identity, error)
	ListPending(ctx context.Context, filter types.ProfessionalFilter) ([]types.Identity, error)
}

// DirectoryInvalidator is notified when the set of verified professionals
// changes.
type DirectoryInvalidator interface {
	Invalidate()
}

type AdminServiceImpl struct {
	logger    *slog.Logger
	repo      AdminRepo
	directory DirectoryInvalidator
}

func NewAdminService(repo AdminRepo, directory DirectoryInvalidator, logger *slog.Logger) *AdminServiceImpl {
	return &AdminServiceImpl{
		logger:    logger,
		repo:      repo,
		directory: directory,
	}
}

func (s *AdminServiceImpl) VerifyProfessional(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "VerifyProfessional", trace.WithAttributes(
		attribute.String("identity.id", id.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "VerifyProfessional"), slog.String("identity_id", id.String()))

	identity, err := s.repo.GetIdentityByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("verify professional: %w", err)
	}

	switch identity.Status() {
	case types.StatusNotApplicable:
		l.WarnContext(ctx, "Refusing to verify a non-professional account", slog.String("role", string(identity.Role)))
		return nil, fmt.Errorf("%w: %s accounts are not verified", types.ErrInvalidTransition, identity.Role)
	case types.StatusVerified:
		l.DebugContext(ctx, "Professional already verified")
		return identity, nil
	}

	identity, err = s.repo.MarkVerified(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("verify professional: %w", err)
	}

	metrics.Get().VerificationsTotal.Add(ctx, 1, metrics.RoleAttr(string(identity.Role)))
	if s.directory != nil {
		s.directory.Invalidate()
	}
	l.InfoContext(ctx, "Professional verified", slog.String("role", string(identity.Role)))
	return identity, nil
}

func (s *AdminServiceImpl) ListPending(ctx context.Context, filter types.ProfessionalFilter) ([]types.Identity, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "ListPending")
	defer span.End()

	if filter.Role != "" && !filter.Role.IsProfessional() {
		return nil, fmt.Errorf("%w: role must be doctor or nurse", types.ErrValidation)
	}
	if filter.Limit <= 0 {
		filter.Limit = api.DefaultPageSize
	}

	pending, err := s.repo.ListPending(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("list pending: %w", err)
	}
	if pending == nil {
		pending = []types.Identity{}
	}
	span.SetAttributes(attribute.Int("results.count", len(pending)))
	return pending, nil
}
