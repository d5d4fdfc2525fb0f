package professionals

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/medibook-api/app/observability/metrics"
	"github.com/FACorreiaa/medibook-api/internal/api/auth"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	ListVerified(ctx context.Context, filter types.ProfessionalFilter) ([]types.PublicProfessional, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	db     auth.DBTX
}

func NewPostgresRepository(db auth.DBTX, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

// ListVerified returns verified doctors and nurses. Only public profile
// columns are read.
func (r *PostgresRepository) ListVerified(ctx context.Context, filter types.ProfessionalFilter) ([]types.PublicProfessional, error) {
	ctx, span := otel.Tracer("ProfessionalsRepo").Start(ctx, "ListVerified", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("filter.role", string(filter.Role)),
	))
	defer span.End()
	start := time.Now()
	m := metrics.Get()
	defer func() {
		m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), metrics.QueryAttr("professionals.list_verified"))
	}()

	query, args := verifiedQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, metrics.QueryAttr("professionals.list_verified"))
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("%w: list professionals: %v", types.ErrPersistence, err)
	}
	defer rows.Close()

	var result []types.PublicProfessional
	for rows.Next() {
		var (
			p    types.PublicProfessional
			role string
		)
		if err := rows.Scan(&p.ID, &p.Name, &role, &p.Specialty, &p.City, &p.Experience); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: scan professional: %v", types.ErrPersistence, err)
		}
		p.Role = types.Role(role)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: iterate professionals: %v", types.ErrPersistence, err)
	}
	span.SetAttributes(attribute.Int("results.count", len(result)))
	return result, nil
}

func verifiedQuery(filter types.ProfessionalFilter) (string, []any) {
	var (
		where = []string{"verified = TRUE", "role IN ('doctor', 'nurse')"}
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Role != "" {
		where = append(where, "role = "+next(string(filter.Role)))
	}
	if filter.City != "" {
		where = append(where, "LOWER(city) = LOWER("+next(filter.City)+")")
	}
	if filter.Specialty != "" {
		where = append(where, "LOWER(specialty) = LOWER("+next(filter.Specialty)+")")
	}
	limit := next(filter.Limit)
	offset := next(filter.Offset)

	query := `SELECT id, name, role, specialty, city, experience FROM identities WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY name ASC, id ASC LIMIT ` + limit + ` OFFSET ` + offset
	return query, args
}
