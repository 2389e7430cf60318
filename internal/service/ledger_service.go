package service

import (
	"context"
	"fmt"

	"novacrm/internal/dto"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/google/uuid"
)

// LedgerService is the read side of the two append-only trails: stock
// movements and price history. Entries are never mutated here.
type LedgerService interface {
	ListMovements(ctx context.Context, tenantID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	ListPriceHistory(ctx context.Context, tenantID, productID uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error)
}

type ledgerService struct {
	movements repository.StockMovementRepository
	prices    repository.PriceHistoryRepository
	products  repository.ProductRepository
}

func NewLedgerService(
	movements repository.StockMovementRepository,
	prices repository.PriceHistoryRepository,
	products repository.ProductRepository,
) LedgerService {
	return &ledgerService{movements: movements, prices: prices, products: products}
}

func (s *ledgerService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	repoFilter := repository.StockMovementFilter{
		TenantID: tenantID,
		Kind:     filter.Kind,
		Page:     page,
		Limit:    limit,
	}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product id %q: %w", filter.ProductID, ErrNotFound)
		}
		repoFilter.ProductID = &id
	}

	rows, total, err := s.movements.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MovementResponse, 0, len(rows))
	for i := range rows {
		out = append(out, movementToResponse(&rows[i]))
	}
	return &dto.MovementListResponse{
		Data:  out,
		Total: total,
		Page:  repoFilter.Page,
		Limit: repoFilter.Limit,
	}, nil
}

func (s *ledgerService) ListPriceHistory(ctx context.Context, tenantID, productID uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if p.TenantID != tenantID {
		return nil, ErrForbidden
	}

	rows, total, err := s.prices.ListByProduct(ctx, productID, page, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PriceHistoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, priceHistoryToResponse(&rows[i]))
	}
	return &dto.PriceHistoryListResponse{
		Data:  out,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func movementToResponse(m *model.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID.String(),
		ProductID:      m.ProductID.String(),
		Kind:           m.Kind,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		QuantityChange: m.QuantityChange,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func priceHistoryToResponse(h *model.PriceHistory) dto.PriceHistoryResponse {
	return dto.PriceHistoryResponse{
		ID:        h.ID.String(),
		ProductID: h.ProductID.String(),
		OldPrice:  h.OldPrice,
		NewPrice:  h.NewPrice,
		Change:    h.Change,
		Kind:      h.Kind,
		Reason:    h.Reason,
		CreatedAt: h.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
