package professionals

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/medibook-api/internal/api"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListVerified(ctx context.Context, filter types.ProfessionalFilter) ([]types.PublicProfessional, error)
	Invalidate()
}

// ServiceImpl serves the public directory from an in-process cache. Entries
// expire after the configured TTL and are flushed whenever an admin
// verifies someone.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

func NewService(repo Repository, ttl time.Duration, logger *slog.Logger) *ServiceImpl {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (s *ServiceImpl) ListVerified(ctx context.Context, filter types.ProfessionalFilter) ([]types.PublicProfessional, error) {
	ctx, span := otel.Tracer("ProfessionalsService").Start(ctx, "ListVerified", trace.WithAttributes(
		attribute.String("filter.role", string(filter.Role)),
		attribute.String("filter.city", filter.City),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ListVerified"))

	if filter.Role != "" && !filter.Role.IsProfessional() {
		return nil, fmt.Errorf("%w: role must be doctor or nurse", types.ErrValidation)
	}
	filter.City = strings.TrimSpace(filter.City)
	filter.Specialty = strings.TrimSpace(filter.Specialty)
	if filter.Limit <= 0 {
		filter.Limit = api.DefaultPageSize
	}

	key := cacheKey(filter)
	if cached, found := s.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		l.DebugContext(ctx, "Directory cache hit", slog.String("key", key))
		return slices.Clone(cached.([]types.PublicProfessional)), nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	list, err := s.repo.ListVerified(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	if list == nil {
		list = []types.PublicProfessional{}
	}
	// Callers own the returned slice; the cache keeps its own copy.
	s.cache.Set(key, slices.Clone(list), cache.DefaultExpiration)
	return list, nil
}

// Invalidate drops every cached listing.
func (s *ServiceImpl) Invalidate() {
	s.cache.Flush()
}

func cacheKey(f types.ProfessionalFilter) string {
	return fmt.Sprintf("role=%s|city=%s|specialty=%s|limit=%d|offset=%d",
		f.Role, strings.ToLower(f.City), strings.ToLower(f.Specialty), f.Limit, f.Offset)
}
