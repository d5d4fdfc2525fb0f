package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/medibook-api/app/observability/metrics"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool the repositories use. pgxmock pools
// satisfy it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IdentityColumns is the default projection of the identities table. It
// never includes password_hash.
const IdentityColumns = `id, email, role, verified, name, specialty, city, experience,
	license_number, government_id, verified_at, created_at, updated_at`

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the credential store.
type AuthRepo interface {
	// EmailExists reports whether an identity already uses the email.
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateIdentity persists a new identity with an already hashed secret.
	// A unique violation on email is returned as types.ErrDuplicateIdentity.
	CreateIdentity(ctx context.Context, params types.CreateIdentityParams, passwordHash string) (*types.Identity, error)
	// GetIdentityByEmail is the only read that loads password_hash.
	GetIdentityByEmail(ctx context.Context, email string) (*types.Identity, error)
	GetIdentityByID(ctx context.Context, id uuid.UUID) (*types.Identity, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     DBTX
}

func NewPostgresAuthRepo(db DBTX, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAuthRepo) EmailExists(ctx context.Context, email string) (exists bool, err error) {
	ctx, span := startSpan(ctx, "EmailExists", "SELECT")
	defer func() { endSpan(ctx, span, "identities.email_exists", err) }()

	err = r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM identities WHERE email = $1)",
		types.NormalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: check email: %v", types.ErrPersistence, err)
	}
	return exists, nil
}

func (r *PostgresAuthRepo) CreateIdentity(ctx context.Context, params types.CreateIdentityParams, passwordHash string) (identity *types.Identity, err error) {
	ctx, span := startSpan(ctx, "CreateIdentity", "INSERT")
	defer func() { endSpan(ctx, span, "identities.insert", err) }()

	identity = &types.Identity{
		Email:        types.NormalizeEmail(params.Email),
		PasswordHash: passwordHash,
		Role:         params.Role,
		Verified:     params.Verified,
		Profile:      params.Profile,
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash, role, verified, name, specialty, city,
			experience, license_number, government_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		identity.Email, passwordHash, string(identity.Role), identity.Verified, identity.Name,
		identity.Specialty, identity.City, identity.Experience, identity.LicenseNumber, identity.GovernmentID,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.WarnContext(ctx, "Unique constraint rejected identity insert", slog.String("constraint", pgErr.ConstraintName))
			return nil, types.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("%w: insert identity: %v", types.ErrPersistence, err)
	}
	return identity, nil
}

func (r *PostgresAuthRepo) GetIdentityByEmail(ctx context.Context, email string) (identity *types.Identity, err error) {
	ctx, span := startSpan(ctx, "GetIdentityByEmail", "SELECT")
	defer func() { endSpan(ctx, span, "identities.by_email", err) }()

	var hash string
	row := r.db.QueryRow(ctx,
		"SELECT "+IdentityColumns+", password_hash FROM identities WHERE email = $1",
		types.NormalizeEmail(email))
	identity, err = ScanIdentity(row, &hash)
	if err != nil {
		return nil, err
	}
	identity.PasswordHash = hash
	return identity, nil
}

func (r *PostgresAuthRepo) GetIdentityByID(ctx context.Context, id uuid.UUID) (identity *types.Identity, err error) {
	ctx, span := startSpan(ctx, "GetIdentityByID", "SELECT")
	defer func() { endSpan(ctx, span, "identities.by_id", err) }()

	row := r.db.QueryRow(ctx, "SELECT "+IdentityColumns+" FROM identities WHERE id = $1", id)
	return ScanIdentity(row)
}

// ScanIdentity reads one row projected with IdentityColumns followed by
// any extra destinations. pgx.ErrNoRows becomes types.ErrNotFound.
func ScanIdentity(row pgx.Row, extra ...any) (*types.Identity, error) {
	var (
		identity types.Identity
		role     string
	)
	dest := []any{
		&identity.ID, &identity.Email, &role, &identity.Verified, &identity.Name,
		&identity.Specialty, &identity.City, &identity.Experience, &identity.LicenseNumber,
		&identity.GovernmentID, &identity.VerifiedAt, &identity.CreatedAt, &identity.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scan identity: %v", types.ErrPersistence, err)
	}
	identity.Role = types.Role(role)
	return &identity, nil
}

type spanStart struct {
	trace.Span
	start time.Time
}

func startSpan(ctx context.Context, name, operation string) (context.Context, *spanStart) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "identities"),
	))
	return ctx, &spanStart{Span: span, start: time.Now()}
}

// endSpan records the query duration and, for anything but a miss, the error.
func endSpan(ctx context.Context, s *spanStart, query string, err error) {
	m := metrics.Get()
	m.DbQueryDurationSeconds.Record(ctx, time.Since(s.start).Seconds(), metrics.QueryAttr(query))
	if err != nil && !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrDuplicateIdentity) {
		m.DbQueryErrorsTotal.Add(ctx, 1, metrics.QueryAttr(query))
		s.RecordError(err)
		s.SetStatus(codes.Error, "query failed")
	}
	s.End()
}
