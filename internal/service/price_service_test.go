package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starline-labs/storefront-desk/internal/domain"
	"github.com/starline-labs/storefront-desk/pkg/util"
)

func newPriceService() (PriceService, RoleService) {
	roles, _ := newRoleService()
	return NewPriceService(newFakePriceRepo(), roles, zap.NewNop()), roles
}

func TestPriceGetFallsBackToDefault(t *testing.T) {
	prices, _ := newPriceService()

	value, err := prices.Get(context.Background(), domain.PriceKeyStarRate)
	require.NoError(t, err)
	assert.Equal(t, 1.45, value)
}

func TestPriceSetRejectsNonPositive(t *testing.T) {
	prices, _ := newPriceService()
	ctx := context.Background()

	assert.True(t, util.IsInvalidInput(prices.Set(ctx, rootID, domain.PriceKeyStarRate, 0)))
	assert.True(t, util.IsInvalidInput(prices.Set(ctx, rootID, domain.PriceKeyStarRate, -3)))
}

func TestPriceSetRequiresFullAdmin(t *testing.T) {
	prices, roles := newPriceService()
	ctx := context.Background()

	_, err := roles.Grant(ctx, rootID, 10, domain.TierSupport)
	require.NoError(t, err)

	assert.True(t, util.IsForbidden(prices.Set(ctx, 10, domain.PriceKeyStarRate, 2)))
	assert.True(t, util.IsUnauthorized(prices.Set(ctx, 99, domain.PriceKeyStarRate, 2)))

	require.NoError(t, prices.Set(ctx, rootID, domain.PriceKeyStarRate, 2))
	value, err := prices.Get(ctx, domain.PriceKeyStarRate)
	require.NoError(t, err)
	assert.Equal(t, 2.0, value)
}

func TestPriceSetRejectsUnknownKey(t *testing.T) {
	prices, _ := newPriceService()

	err := prices.Set(context.Background(), rootID, "gold_rate", 10)
	assert.True(t, util.HasCode(err, "VALIDATION_FAILED"))
}

func TestPriceSeedDoesNotOverwrite(t *testing.T) {
	prices, _ := newPriceService()
	ctx := context.Background()

	require.NoError(t, prices.Set(ctx, rootID, domain.PriceKeyTonRate, 200))
	require.NoError(t, prices.Seed(ctx))

	value, err := prices.Get(ctx, domain.PriceKeyTonRate)
	require.NoError(t, err)
	assert.Equal(t, 200.0, value)
}
