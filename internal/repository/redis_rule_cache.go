package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
	pkgredis "github.com/peakstay/reservation-engine/pkg/redis"
	"github.com/peakstay/reservation-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const ruleCacheKeyPrefix = "price_rules:"

// CachedCatalogRepository decorates a CatalogRepository with a short-TTL
// Redis cache for price rules. Rules change rarely while pricing previews
// are hot; a stale read only mispresents a preview, never a stored
// reservation, because the quote is recomputed at creation time.
type CachedCatalogRepository struct {
	inner CatalogRepository
	redis *pkgredis.Client
	ttl   time.Duration
}

// NewCachedCatalogRepository creates a caching decorator around inner
func NewCachedCatalogRepository(inner CatalogRepository, redis *pkgredis.Client, ttl time.Duration) *CachedCatalogRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedCatalogRepository{inner: inner, redis: redis, ttl: ttl}
}

// GetUnit delegates to the inner repository
func (r *CachedCatalogRepository) GetUnit(ctx context.Context, id string) (*domain.Unit, error) {
	return r.inner.GetUnit(ctx, id)
}

// GetActivePriceRules serves rules from Redis when present, falling back
// to the inner repository on any cache miss or cache error.
func (r *CachedCatalogRepository) GetActivePriceRules(ctx context.Context, unitID string) ([]domain.PriceRule, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.rule_cache.get")
	defer span.End()

	span.SetAttributes(attribute.String("unit_id", unitID))

	key := ruleCacheKeyPrefix + unitID
	if cached, err := r.redis.Client().Get(ctx, key).Bytes(); err == nil {
		var rules []domain.PriceRule
		if err := json.Unmarshal(cached, &rules); err == nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			span.SetStatus(codes.Ok, "")
			return rules, nil
		}
	}

	rules, err := r.inner.GetActivePriceRules(ctx, unitID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if payload, err := json.Marshal(rules); err == nil {
		// Cache errors are not worth failing a pricing read over.
		_ = r.redis.Client().Set(ctx, key, payload, r.ttl).Err()
	}

	span.SetAttributes(attribute.Bool("cache_hit", false), attribute.Int("count", len(rules)))
	span.SetStatus(codes.Ok, "")
	return rules, nil
}

// GetAddOnsByIDs delegates to the inner repository
func (r *CachedCatalogRepository) GetAddOnsByIDs(ctx context.Context, ids []string) ([]domain.AddOn, error) {
	return r.inner.GetAddOnsByIDs(ctx, ids)
}

// GetDepositPolicy delegates to the inner repository
func (r *CachedCatalogRepository) GetDepositPolicy(ctx context.Context) (*domain.DepositPolicy, error) {
	return r.inner.GetDepositPolicy(ctx)
}

// Ensure CachedCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*CachedCatalogRepository)(nil)
