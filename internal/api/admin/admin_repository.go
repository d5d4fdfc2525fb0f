package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/medibook-api/app/observability/metrics"
	"github.com/FACorreiaa/medibook-api/internal/api/auth"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

var _ AdminRepo = (*PostgresAdminRepo)(nil)

type AdminRepo interface {
	GetIdentityByID(ctx context.Context, id uuid.UUID) (*types.Identity, error)
	// MarkVerified flips the verification flag of a doctor or nurse. The
	// first verification time is kept on repeated calls.
	MarkVerified(ctx context.Context, id uuid.UUID) (*types.Identity, error)
	ListPending(ctx context.Context, filter types.ProfessionalFilter) ([]types.Identity, error)
}

type PostgresAdminRepo struct {
	logger *slog.Logger
	db     auth.DBTX
}

func NewPostgresAdminRepo(db auth.DBTX, logger *slog.Logger) *PostgresAdminRepo {
	return &PostgresAdminRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAdminRepo) GetIdentityByID(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	ctx, span := otel.Tracer("AdminRepo").Start(ctx, "GetIdentityByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()
	start := time.Now()

	row := r.db.QueryRow(ctx, "SELECT "+auth.IdentityColumns+" FROM identities WHERE id = $1", id)
	identity, err := auth.ScanIdentity(row)
	observe(ctx, span, "admin.identity_by_id", start, err)
	return identity, err
}

func (r *PostgresAdminRepo) MarkVerified(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	ctx, span := otel.Tracer("AdminRepo").Start(ctx, "MarkVerified", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("identity.id", id.String()),
	))
	defer span.End()
	start := time.Now()

	row := r.db.QueryRow(ctx, `
		UPDATE identities
		SET verified = TRUE,
			verified_at = COALESCE(verified_at, NOW()),
			updated_at = NOW()
		WHERE id = $1 AND role IN ('doctor', 'nurse')
		RETURNING `+auth.IdentityColumns, id)
	identity, err := auth.ScanIdentity(row)
	observe(ctx, span, "admin.mark_verified", start, err)
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "Professional marked verified", slog.String("identity_id", id.String()))
	return identity, nil
}

func (r *PostgresAdminRepo) ListPending(ctx context.Context, filter types.ProfessionalFilter) ([]types.Identity, error) {
	ctx, span := otel.Tracer("AdminRepo").Start(ctx, "ListPending", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()
	start := time.Now()

	query, args := pendingQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("%w: list pending: %v", types.ErrPersistence, err)
		observe(ctx, span, "admin.list_pending", start, err)
		return nil, err
	}
	defer rows.Close()

	var pending []types.Identity
	for rows.Next() {
		identity, err := auth.ScanIdentity(rows)
		if err != nil {
			observe(ctx, span, "admin.list_pending", start, err)
			return nil, err
		}
		pending = append(pending, *identity)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("%w: iterate pending: %v", types.ErrPersistence, err)
	}
	observe(ctx, span, "admin.list_pending", start, err)
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func pendingQuery(filter types.ProfessionalFilter) (string, []any) {
	var (
		where = []string{"verified = FALSE", "role IN ('doctor', 'nurse')"}
		args  []any
	)
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		where = append(where, "role = $"+strconv.Itoa(len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)
	query := "SELECT " + auth.IdentityColumns + " FROM identities WHERE " + strings.Join(where, " AND ") +
		" ORDER BY created_at ASC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))
	return query, args
}

func observe(ctx context.Context, span trace.Span, query string, start time.Time, err error) {
	m := metrics.Get()
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), metrics.QueryAttr(query))
	if err != nil && !errors.Is(err, types.ErrNotFound) && !errors.Is(err, pgx.ErrNoRows) {
		m.DbQueryErrorsTotal.Add(ctx, 1, metrics.QueryAttr(query))
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
	}
}
