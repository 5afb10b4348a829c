package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/internal/repository"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

// PriceService exposes the mutable price table. Values are read live for
// every evaluation; the order total always reflects the rate in effect at the
// moment the funnel confirms.
type PriceService interface {
	Get(ctx context.Context, key domain.PriceKey) (float64, error)
	Set(ctx context.Context, callerID int64, key domain.PriceKey, value float64) error
	All(ctx context.Context) ([]domain.PriceEntry, error)
	Seed(ctx context.Context) error
}

type priceService struct {
	prices repository.PriceRepository
	roles  RoleService
	logger *zap.Logger
}

// NewPriceService instantiates the service.
func NewPriceService(prices repository.PriceRepository, roles RoleService, logger *zap.Logger) PriceService {
	return &priceService{prices: prices, roles: roles, logger: logger}
}

func (s *priceService) Get(ctx context.Context, key domain.PriceKey) (float64, error) {
	value, err := s.prices.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if fallback, ok := domain.DefaultPrices[key]; ok {
				return fallback, nil
			}
			return 0, util.NewNotFound("price entry", map[string]any{"key": key})
		}
		return 0, util.NewInternalError(err)
	}
	return value, nil
}

// Set updates a price entry. Only full admins may change prices, and values
// must be strictly positive.
func (s *priceService) Set(ctx context.Context, callerID int64, key domain.PriceKey, value float64) error {
	tier, err := s.roles.TierOf(ctx, callerID)
	if err != nil {
		return err
	}
	if err := requireTier(tier, domain.TierFullAdmin, "full admin tier required"); err != nil {
		return err
	}
	if !isKnownPriceKey(key) {
		return util.NewValidationError("unknown price key", map[string]any{"key": key})
	}
	if value <= 0 {
		return util.NewInvalidInput("price must be greater than zero", map[string]any{"key": key, "value": value})
	}
	if err := s.prices.Set(ctx, key, value); err != nil {
		return util.NewInternalError(err)
	}
	s.logger.Info("price updated",
		zap.String("key", string(key)),
		zap.Float64("value", value),
		zap.Int64("set_by", callerID))
	return nil
}

func (s *priceService) All(ctx context.Context) ([]domain.PriceEntry, error) {
	entries, err := s.prices.All(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return entries, nil
}

// Seed writes the default values for keys that do not exist yet. Existing
// entries are never overwritten.
func (s *priceService) Seed(ctx context.Context) error {
	if err := s.prices.SeedDefaults(ctx, domain.DefaultPrices); err != nil {
		return util.NewInternalError(err)
	}
	return nil
}

func isKnownPriceKey(key domain.PriceKey) bool {
	for _, known := range domain.PriceKeys {
		if known == key {
			return true
		}
	}
	return false
}
