package service

// signal_service.go — read side of the derived signals.
// Writes append without deduplication, so reads own the cleanup: collapsing
// duplicate signals per product, re-checking the triggering condition against
// the product's current state, and keeping mutually exclusive recommendation
// kinds from surfacing together.

import (
	"context"
	"errors"
	"fmt"

	"novacrm/internal/dto"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SignalService interface {
	ListAlerts(ctx context.Context, tenantID uuid.UUID) ([]dto.AlertResponse, error)
	MarkAlertRead(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error
	ResolveAlert(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error
	ListRecommendations(ctx context.Context, tenantID uuid.UUID) ([]dto.RecommendationResponse, error)
	ApplyRecommendation(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error
}

type signalService struct {
	alerts          repository.StockAlertRepository
	recommendations repository.StockRecommendationRepository
	products        repository.ProductRepository
}

func NewSignalService(
	alerts repository.StockAlertRepository,
	recommendations repository.StockRecommendationRepository,
	products repository.ProductRepository,
) SignalService {
	return &signalService{alerts: alerts, recommendations: recommendations, products: products}
}

// ListAlerts returns the tenant's unresolved alerts ordered by severity then
// recency. One alert per product+kind survives (the newest), and alerts whose
// condition no longer holds are dropped — resolution is not event-driven, so
// stale rows are expected.
func (s *signalService) ListAlerts(ctx context.Context, tenantID uuid.UUID) ([]dto.AlertResponse, error) {
	alerts, err := s.alerts.ListUnresolved(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	type key struct {
		product uuid.UUID
		kind    string
	}
	seen := make(map[key]bool)
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		k := key{a.ProductID, a.Kind}
		if seen[k] {
			continue
		}
		if a.Product == nil || !alertStillHolds(&a, a.Product) {
			continue
		}
		seen[k] = true
		out = append(out, dto.AlertResponse{
			ID:        a.ID.String(),
			ProductID: a.ProductID.String(),
			Product:   a.Product.Name,
			Kind:      a.Kind,
			Severity:  currentSeverity(&a, a.Product),
			Message:   a.Message,
			Read:      a.Read,
			CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}

// alertStillHolds re-validates the triggering condition against current state.
func alertStillHolds(a *model.StockAlert, p *model.Product) bool {
	switch a.Kind {
	case model.AlertOutOfStock:
		return p.Quantity <= 0
	case model.AlertLowStock:
		return p.Quantity > 0 && p.Quantity <= p.MinStockLevel
	case model.AlertOverstock:
		return p.Quantity > p.MinStockLevel*10
	default:
		// no_sales is driven by order history, not quantity — keep it.
		return true
	}
}

// currentSeverity recomputes severity from current state where derivable; a
// low-stock alert written as high may have become critical since.
func currentSeverity(a *model.StockAlert, p *model.Product) string {
	if a.Kind == model.AlertLowStock {
		if p.Quantity <= p.MinStockLevel/2 {
			return model.SeverityCritical
		}
		return model.SeverityHigh
	}
	return a.Severity
}

func (s *signalService) MarkAlertRead(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	if err := s.alerts.MarkRead(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("alert %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *signalService) ResolveAlert(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	if err := s.alerts.Resolve(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("alert %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

// ListRecommendations returns at most one unapplied recommendation per
// product, highest confidence first. Because overlapping write-time rules can
// append discount and reduce_stock for the same product, keeping only the top
// confidence entry also keeps mutually exclusive kinds from surfacing
// together.
func (s *signalService) ListRecommendations(ctx context.Context, tenantID uuid.UUID) ([]dto.RecommendationResponse, error) {
	recs, err := s.recommendations.ListUnapplied(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	out := make([]dto.RecommendationResponse, 0, len(recs))
	for _, r := range recs {
		if seen[r.ProductID] {
			continue
		}
		if r.Product == nil || !recommendationStillHolds(&r, r.Product) {
			continue
		}
		seen[r.ProductID] = true
		out = append(out, dto.RecommendationResponse{
			ID:                r.ID.String(),
			ProductID:         r.ProductID.String(),
			Product:           r.Product.Name,
			Kind:              r.Kind,
			SuggestedQuantity: r.SuggestedQuantity,
			SuggestedDiscount: r.SuggestedDiscount,
			Confidence:        r.Confidence,
			Reason:            r.Reason,
			CreatedAt:         r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}

func recommendationStillHolds(r *model.StockRecommendation, p *model.Product) bool {
	switch r.Kind {
	case model.RecommendRestock:
		return p.Quantity > 0 && p.Quantity <= p.MinStockLevel
	case model.RecommendDiscount:
		return p.Quantity > p.MinStockLevel*5
	case model.RecommendReduceStock:
		return p.Quantity > p.MinStockLevel*10
	default:
		return true
	}
}

func (s *signalService) ApplyRecommendation(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	if err := s.recommendations.MarkApplied(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recommendation %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}
