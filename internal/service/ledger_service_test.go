package service

import (
	"context"
	"testing"

	"novacrm/internal/dto"
	"novacrm/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMovementsNewestFirst(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Widget", 100, 10, "50.00")

	for _, q := range []int{90, 70, 120} {
		_, err := f.inventory.ChangeQuantity(context.Background(), p.ID, QuantityChange{NewQuantity: q})
		require.NoError(t, err)
	}

	resp, err := f.ledgerSvc.ListMovements(context.Background(), f.tenantID, dto.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, int64(3), resp.Total)

	// Newest first: the +50 inbound move tops the list.
	assert.Equal(t, 50, resp.Data[0].QuantityChange)
	assert.Equal(t, model.MovementInbound, resp.Data[0].Kind)
	assert.Equal(t, -10, resp.Data[2].QuantityChange)
}

func TestListMovementsFilterByKind(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Widget", 100, 10, "50.00")

	for _, q := range []int{90, 120} {
		_, err := f.inventory.ChangeQuantity(context.Background(), p.ID, QuantityChange{NewQuantity: q})
		require.NoError(t, err)
	}

	resp, err := f.ledgerSvc.ListMovements(context.Background(), f.tenantID, dto.MovementFilter{Kind: model.MovementOutbound})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, -10, resp.Data[0].QuantityChange)
}

func TestListMovementsTenantIsolation(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Widget", 100, 10, "50.00")

	_, err := f.inventory.ChangeQuantity(context.Background(), p.ID, QuantityChange{NewQuantity: 90})
	require.NoError(t, err)

	resp, err := f.ledgerSvc.ListMovements(context.Background(), uuid.New(), dto.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestListPriceHistoryRoundTrip(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Widget", 100, 10, "50.00")

	_, err := f.inventory.ChangePrice(context.Background(), p.ID, PriceChange{
		NewPrice: decimal.RequireFromString("60.00"),
		Reason:   "Supplier increase",
	})
	require.NoError(t, err)

	resp, err := f.ledgerSvc.ListPriceHistory(context.Background(), f.tenantID, p.ID, 1, 50)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	entry := resp.Data[0]
	assert.True(t, entry.OldPrice.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, entry.NewPrice.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, entry.Change.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, model.PriceChangeIncrease, entry.Kind)
	assert.Equal(t, "Supplier increase", entry.Reason)
}

func TestListPriceHistoryForeignTenant(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Widget", 100, 10, "50.00")

	_, err := f.ledgerSvc.ListPriceHistory(context.Background(), uuid.New(), p.ID, 1, 50)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListMovementsBadProductFilter(t *testing.T) {
	f := newFixture()
	_, err := f.ledgerSvc.ListMovements(context.Background(), f.tenantID, dto.MovementFilter{ProductID: "not-a-uuid"})
	require.ErrorIs(t, err, ErrNotFound)
}
