package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/medibook-api/app/observability/metrics"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService registers identities, logs them in and resolves the identity
// behind an already verified session credential.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*types.AuthResult, error)
	Login(ctx context.Context, email, password string) (*types.AuthResult, error)
	GetCurrentIdentity(ctx context.Context, identityID string) (*types.Identity, error)
}

type AuthServiceImpl struct {
	logger    *slog.Logger
	repo      AuthRepo
	hasher    PasswordHasher
	issuer    TokenIssuer
	dummyHash string
}

func NewAuthService(repo AuthRepo, hasher PasswordHasher, issuer TokenIssuer, logger *slog.Logger) *AuthServiceImpl {
	s := &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
	}
	// Compared against when the email is unknown so both login failures cost
	// one hash comparison.
	if h, err := hasher.Hash(uuid.NewString()); err == nil {
		s.dummyHash = h
	}
	return s
}

func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (result *types.AuthResult, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("identity.role", req.Role),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.record(ctx, span, start, err, "register") }()

	l := s.logger.With(slog.String("method", "Register"))

	role, err := types.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if role == types.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot self-register", types.ErrForbidden)
	}

	email := types.NormalizeEmail(req.Email)
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		l.InfoContext(ctx, "Registration rejected, email already in use")
		return nil, types.ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	identity, err := s.repo.CreateIdentity(ctx, types.CreateIdentityParams{
		Email:    email,
		Role:     role,
		Verified: types.InitialVerified(role),
		Profile:  req.profile(),
	}, hash)
	if err != nil {
		// A concurrent registration can pass the pre-check; the store's unique
		// constraint then reports ErrDuplicateIdentity.
		return nil, fmt.Errorf("register: %w", err)
	}

	token, expiresAt, err := s.issuer.Issue(identity.ID.String(), identity.Role)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	l.InfoContext(ctx, "Identity registered",
		slog.String("identity_id", identity.ID.String()),
		slog.String("role", string(identity.Role)),
		slog.String("status", string(identity.Status())))
	return &types.AuthResult{
		IdentityID:  identity.ID,
		Role:        identity.Role,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (result *types.AuthResult, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	start := time.Now()
	defer func() { s.record(ctx, span, start, err, "login") }()

	l := s.logger.With(slog.String("method", "Login"))

	identity, err := s.repo.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			if s.dummyHash != "" {
				_ = s.hasher.Compare(s.dummyHash, password)
			}
			l.DebugContext(ctx, "Login failed, unknown email")
			return nil, types.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		l.DebugContext(ctx, "Login failed, password mismatch", slog.String("identity_id", identity.ID.String()))
		return nil, types.ErrInvalidCredentials
	}

	if err := identity.CheckLoginEligible(); err != nil {
		l.InfoContext(ctx, "Login blocked until verification",
			slog.String("identity_id", identity.ID.String()),
			slog.String("role", string(identity.Role)))
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(identity.ID.String(), identity.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	l.InfoContext(ctx, "Identity logged in", slog.String("identity_id", identity.ID.String()))
	return &types.AuthResult{
		IdentityID:  identity.ID,
		Role:        identity.Role,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// GetCurrentIdentity trusts identityID: the request gate has already checked
// the token's signature and expiry.
func (s *AuthServiceImpl) GetCurrentIdentity(ctx context.Context, identityID string) (*types.Identity, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "GetCurrentIdentity", trace.WithAttributes(
		attribute.String("identity.id", identityID),
	))
	defer span.End()

	id, err := uuid.Parse(identityID)
	if err != nil {
		span.SetStatus(codes.Error, "malformed identity reference")
		return nil, fmt.Errorf("%w: malformed identity reference", types.ErrUnauthenticated)
	}

	identity, err := s.repo.GetIdentityByID(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "identity lookup failed")
		}
		return nil, fmt.Errorf("current identity: %w", err)
	}
	identity.PasswordHash = ""
	return identity, nil
}

func (s *AuthServiceImpl) record(ctx context.Context, span trace.Span, start time.Time, err error, op string) {
	outcome := outcomeFor(err)
	span.SetAttributes(attribute.String("auth.outcome", outcome))
	if outcome == metrics.OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		s.logger.ErrorContext(ctx, "Auth operation failed", slog.String("operation", op), slog.Any("error", err))
	}

	m := metrics.Get()
	elapsed := time.Since(start).Seconds()
	switch op {
	case "register":
		m.RegisterRequestsTotal.Add(ctx, 1, metrics.OutcomeAttr(outcome))
		m.RegisterDurationSeconds.Record(ctx, elapsed, metrics.OutcomeAttr(outcome))
	case "login":
		m.LoginRequestsTotal.Add(ctx, 1, metrics.OutcomeAttr(outcome))
		m.LoginDurationSeconds.Record(ctx, elapsed, metrics.OutcomeAttr(outcome))
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, types.ErrDuplicateIdentity):
		return metrics.OutcomeDuplicate
	case errors.Is(err, types.ErrInvalidCredentials):
		return metrics.OutcomeInvalidCredentials
	case errors.Is(err, types.ErrPendingVerification):
		return metrics.OutcomePendingVerification
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrForbidden):
		return "rejected"
	default:
		return metrics.OutcomeError
	}
}
