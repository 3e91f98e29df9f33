package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peakstay/reservation-engine/internal/domain"
	"github.com/peakstay/reservation-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresCatalogRepository implements CatalogRepository against the
// back-office catalog tables. All operations are read-only.
type PostgresCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalogRepository creates a new PostgresCatalogRepository
func NewPostgresCatalogRepository(pool *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{pool: pool}
}

// GetUnit retrieves a chalet by ID
func (r *PostgresCatalogRepository) GetUnit(ctx context.Context, id string) (*domain.Unit, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.catalog.get_unit")
	defer span.End()

	span.SetAttributes(attribute.String("unit_id", id))

	query := `
		SELECT id, name, capacity, base_price, weekend_price, is_active
		FROM units
		WHERE id = $1
	`

	unit := &domain.Unit{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.Name,
		&unit.Capacity,
		&unit.BasePrice,
		&unit.WeekendPrice,
		&unit.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrUnitNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return unit, nil
}

// GetActivePriceRules returns the unit's active rules ordered by
// sort_order. The resolver's first-match scan depends on this ordering.
func (r *PostgresCatalogRepository) GetActivePriceRules(ctx context.Context, unitID string) ([]domain.PriceRule, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.catalog.get_price_rules")
	defer span.End()

	span.SetAttributes(attribute.String("unit_id", unitID))

	query := `
		SELECT id, unit_id, start_date, end_date, price, price_multiplier, is_active, sort_order
		FROM price_rules
		WHERE unit_id = $1 AND is_active = true
		ORDER BY sort_order, id
	`

	rows, err := r.pool.Query(ctx, query, unitID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get price rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.PriceRule
	for rows.Next() {
		var rule domain.PriceRule
		if err := rows.Scan(
			&rule.ID,
			&rule.UnitID,
			&rule.StartDate,
			&rule.EndDate,
			&rule.Price,
			&rule.PriceMultiplier,
			&rule.IsActive,
			&rule.SortOrder,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan price rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating price rules: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(rules)))
	span.SetStatus(codes.Ok, "")
	return rules, nil
}

// GetAddOnsByIDs retrieves catalog add-ons by ID
func (r *PostgresCatalogRepository) GetAddOnsByIDs(ctx context.Context, ids []string) ([]domain.AddOn, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.catalog.get_add_ons")
	defer span.End()

	span.SetAttributes(attribute.Int("requested", len(ids)))

	if len(ids) == 0 {
		span.SetStatus(codes.Ok, "")
		return nil, nil
	}

	query := `
		SELECT id, name, price, price_type, is_active
		FROM add_ons
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get add-ons: %w", err)
	}
	defer rows.Close()

	var addOns []domain.AddOn
	for rows.Next() {
		var addOn domain.AddOn
		var priceType string
		if err := rows.Scan(&addOn.ID, &addOn.Name, &addOn.Price, &priceType, &addOn.IsActive); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan add-on: %w", err)
		}
		addOn.PriceType = domain.AddOnPriceType(priceType)
		addOns = append(addOns, addOn)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating add-ons: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(addOns)))
	span.SetStatus(codes.Ok, "")
	return addOns, nil
}

// GetDepositPolicy reads the deposit settings. Missing keys fall back to
// the defaults (fixed, 100 / 30%).
func (r *PostgresCatalogRepository) GetDepositPolicy(ctx context.Context) (*domain.DepositPolicy, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.catalog.get_deposit_policy")
	defer span.End()

	query := `
		SELECT key, value
		FROM settings
		WHERE key IN ('deposit_type', 'deposit_fixed', 'deposit_percentage')
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get deposit settings: %w", err)
	}
	defer rows.Close()

	policy := domain.DefaultDepositPolicy()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		switch key {
		case "deposit_type":
			if value == string(domain.DepositPercentage) {
				policy.Type = domain.DepositPercentage
			} else {
				policy.Type = domain.DepositFixed
			}
		case "deposit_fixed":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				policy.FixedAmount = v
			}
		case "deposit_percentage":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				policy.Percentage = v
			}
		}
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	span.SetAttributes(attribute.String("deposit_type", string(policy.Type)))
	span.SetStatus(codes.Ok, "")
	return policy, nil
}

// Ensure PostgresCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*PostgresCatalogRepository)(nil)
