package service

import (
	"context"
	"fmt"

	"novacrm/internal/model"
	"novacrm/internal/repository"
	"novacrm/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuantityChange describes one quantity mutation. SuppressLedger is set by
// callers (order fulfillment, bulk updates) that write their own, more
// specific ledger entry — exactly one ledger entry must exist per logical
// change, never zero, never two.
type QuantityChange struct {
	NewQuantity    int
	Reason         string
	UserID         *uuid.UUID
	SuppressLedger bool
}

// PriceChange describes one selling-price mutation. Kind optionally overrides
// the classification when the delta is zero-signed (defaults to manual).
type PriceChange struct {
	NewPrice       decimal.Decimal
	Kind           string
	Reason         string
	UserID         *uuid.UUID
	SuppressLedger bool
}

// InventoryService is the sole authorized path for changing a product's
// on-hand quantity or selling price. It persists the change, appends the
// ledger entry (unless suppressed), evaluates derived signals against the
// post-mutation state, and queues a best-effort low-stock notification.
//
// The pre-change state is read inside the same transaction and threaded
// explicitly through the call — no shared out-of-band state keyed by
// product id, no persistence hooks.
type InventoryService interface {
	ChangeQuantity(ctx context.Context, productID uuid.UUID, change QuantityChange) (*model.Product, error)
	ChangeQuantityTx(ctx context.Context, tx *gorm.DB, p *model.Product, change QuantityChange) error
	ChangePrice(ctx context.Context, productID uuid.UUID, change PriceChange) (*model.Product, error)
	ChangePriceTx(ctx context.Context, tx *gorm.DB, p *model.Product, change PriceChange) error

	// RecordMovementTx / RecordPriceChangeTx let suppressing callers append
	// their own specific ledger entry inside the same transaction.
	RecordMovementTx(tx *gorm.DB, m *model.StockMovement) error
	RecordPriceChangeTx(tx *gorm.DB, h *model.PriceHistory) error
}

type inventoryService struct {
	products        repository.ProductRepository
	movements       repository.StockMovementRepository
	prices          repository.PriceHistoryRepository
	alerts          repository.StockAlertRepository
	recommendations repository.StockRecommendationRepository
	tenants         repository.TenantRepository
	dispatcher      *worker.Dispatcher
}

func NewInventoryService(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	prices repository.PriceHistoryRepository,
	alerts repository.StockAlertRepository,
	recommendations repository.StockRecommendationRepository,
	tenants repository.TenantRepository,
	dispatcher *worker.Dispatcher,
) InventoryService {
	return &inventoryService{
		products:        products,
		movements:       movements,
		prices:          prices,
		alerts:          alerts,
		recommendations: recommendations,
		tenants:         tenants,
		dispatcher:      dispatcher,
	}
}

func (s *inventoryService) ChangeQuantity(ctx context.Context, productID uuid.UUID, change QuantityChange) (*model.Product, error) {
	var p *model.Product
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = s.products.FindByIDTx(tx, productID)
		if err != nil {
			return fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return s.ChangeQuantityTx(ctx, tx, p, change)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ChangeQuantityTx applies a quantity change inside an open transaction.
// The caller must have loaded p inside the same transaction so that
// p.Quantity is the authoritative pre-change value.
func (s *inventoryService) ChangeQuantityTx(ctx context.Context, tx *gorm.DB, p *model.Product, change QuantityChange) error {
	if change.NewQuantity < 0 {
		return fmt.Errorf("%w: product %q cannot hold %d units", ErrInvalidQuantity, p.Name, change.NewQuantity)
	}

	before := p.Quantity
	delta := change.NewQuantity - before

	if err := s.products.SetQuantityTx(tx, p.ID, change.NewQuantity); err != nil {
		return err
	}
	p.Quantity = change.NewQuantity

	if !change.SuppressLedger {
		reason := change.Reason
		if reason == "" {
			reason = "Manual stock adjustment"
		}
		mov := &model.StockMovement{
			TenantID:       p.TenantID,
			ProductID:      p.ID,
			Kind:           model.MovementKindFor(delta),
			QuantityBefore: before,
			QuantityAfter:  change.NewQuantity,
			QuantityChange: delta,
			Reason:         reason,
			UserID:         change.UserID,
		}
		if err := s.movements.CreateTx(tx, mov); err != nil {
			return err
		}
	}

	return s.afterMutation(ctx, tx, p)
}

func (s *inventoryService) ChangePrice(ctx context.Context, productID uuid.UUID, change PriceChange) (*model.Product, error) {
	var p *model.Product
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = s.products.FindByIDTx(tx, productID)
		if err != nil {
			return fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return s.ChangePriceTx(ctx, tx, p, change)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ChangePriceTx applies a price change inside an open transaction. Same
// pre-change-state contract as ChangeQuantityTx.
func (s *inventoryService) ChangePriceTx(ctx context.Context, tx *gorm.DB, p *model.Product, change PriceChange) error {
	oldPrice := p.Price
	delta := change.NewPrice.Sub(oldPrice)

	if err := s.products.SetPriceTx(tx, p.ID, change.NewPrice); err != nil {
		return err
	}
	p.Price = change.NewPrice

	if !change.SuppressLedger {
		kind := priceChangeKind(delta, change.Kind)
		reason := change.Reason
		if reason == "" {
			reason = "Manual price change"
		}
		h := &model.PriceHistory{
			TenantID:  p.TenantID,
			ProductID: p.ID,
			OldPrice:  oldPrice,
			NewPrice:  change.NewPrice,
			Change:    delta,
			Kind:      kind,
			Reason:    reason,
			UserID:    change.UserID,
		}
		if err := s.prices.CreateTx(tx, h); err != nil {
			return err
		}
	}

	return s.afterMutation(ctx, tx, p)
}

func (s *inventoryService) RecordMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return s.movements.CreateTx(tx, m)
}

func (s *inventoryService) RecordPriceChangeTx(tx *gorm.DB, h *model.PriceHistory) error {
	return s.prices.CreateTx(tx, h)
}

// priceChangeKind classifies a price delta: sign wins, the caller-supplied
// kind applies only when the sign is ambiguous, and manual is the fallback.
func priceChangeKind(delta decimal.Decimal, override string) string {
	switch {
	case delta.IsPositive():
		return model.PriceChangeIncrease
	case delta.IsNegative():
		return model.PriceChangeDecrease
	case override != "":
		return override
	default:
		return model.PriceChangeManual
	}
}

// afterMutation runs strictly after the state write and its ledger entry:
// derived signals always see the post-mutation state. Signal writes share
// the transaction, so a failure rolls back the whole unit of work. The
// low-stock notification is a queue handoff only and never fails the
// mutation.
func (s *inventoryService) afterMutation(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	for _, a := range alertsFor(p) {
		alert := a
		if err := s.alerts.CreateTx(tx, &alert); err != nil {
			return err
		}
	}
	for _, r := range recommendationsFor(p) {
		rec := r
		if err := s.recommendations.CreateTx(tx, &rec); err != nil {
			return err
		}
	}

	if p.Quantity <= p.MinStockLevel {
		s.notifyLowStock(ctx, p)
	}
	return nil
}

func (s *inventoryService) notifyLowStock(ctx context.Context, p *model.Product) {
	if s.dispatcher == nil || s.tenants == nil {
		return
	}
	tenant, err := s.tenants.FindByID(ctx, p.TenantID)
	if err != nil {
		log.Warn().Err(err).Str("tenant_id", p.TenantID.String()).Msg("low-stock notification: tenant lookup failed")
		return
	}
	payload := worker.NotificationJobPayload{
		ToEmail: tenant.OwnerEmail,
		Subject: fmt.Sprintf("Low stock: %s", p.Name),
		Body:    fmt.Sprintf("%s is down to %d units (minimum %d). Consider restocking.", p.Name, p.Quantity, p.MinStockLevel),
	}
	if err := s.dispatcher.EnqueueNotification(ctx, payload); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("low-stock notification: enqueue failed")
	}
}
