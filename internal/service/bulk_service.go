package service

import (
	"context"
	"encoding/json"
	"fmt"

	"novacrm/internal/dto"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BulkUpdateKind is the tagged transformation applied to each matched price.
type BulkUpdateKind string

const (
	BulkPercentageIncrease BulkUpdateKind = "percentage_increase"
	BulkPercentageDecrease BulkUpdateKind = "percentage_decrease"
	BulkFixedIncrease      BulkUpdateKind = "fixed_increase"
	BulkFixedDecrease      BulkUpdateKind = "fixed_decrease"
	BulkSetPrice           BulkUpdateKind = "set_price"
)

var hundred = decimal.NewFromInt(100)

// One pure function per variant. Percentage operations multiply by
// (1 ± pct/100); fixed operations add or subtract; set assigns directly.
func pctIncrease(price, pct decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Add(pct.Div(hundred)))
}

func pctDecrease(price, pct decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(pct.Div(hundred)))
}

func fixedIncrease(price, amount decimal.Decimal) decimal.Decimal {
	return price.Add(amount)
}

func fixedDecrease(price, amount decimal.Decimal) decimal.Decimal {
	return price.Sub(amount)
}

func setPrice(_, amount decimal.Decimal) decimal.Decimal {
	return amount
}

// applyBulkKind dispatches on the tagged kind. Results below zero are
// rejected, which fails the whole batch.
func applyBulkKind(kind BulkUpdateKind, amount, price decimal.Decimal) (decimal.Decimal, error) {
	var result decimal.Decimal
	switch kind {
	case BulkPercentageIncrease:
		result = pctIncrease(price, amount)
	case BulkPercentageDecrease:
		result = pctDecrease(price, amount)
	case BulkFixedIncrease:
		result = fixedIncrease(price, amount)
	case BulkFixedDecrease:
		result = fixedDecrease(price, amount)
	case BulkSetPrice:
		result = setPrice(price, amount)
	default:
		return decimal.Zero, fmt.Errorf("unknown bulk update kind %q", kind)
	}
	if result.IsNegative() {
		return decimal.Zero, fmt.Errorf("bulk update would drive price below zero (%s)", result)
	}
	return result.Round(2), nil
}

// BulkService applies one price transformation to a filtered product set as a
// single atomic batch: per-product price history entries share one reason,
// and one aggregated audit row records the batch. Any mid-batch failure rolls
// everything back and reports a single generic error.
type BulkService interface {
	ApplyPriceUpdate(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req dto.BulkUpdateRequest) (*dto.BulkUpdateResponse, error)
	ListUpdates(ctx context.Context, tenantID uuid.UUID, page, limit int) (*dto.BulkUpdateListResponse, error)
}

type bulkService struct {
	products   repository.ProductRepository
	inventory  InventoryService
	audits     repository.BulkUpdateRepository
	categories repository.CategoryRepository
}

func NewBulkService(
	products repository.ProductRepository,
	inventory InventoryService,
	audits repository.BulkUpdateRepository,
	categories repository.CategoryRepository,
) BulkService {
	return &bulkService{products: products, inventory: inventory, audits: audits, categories: categories}
}

func (s *bulkService) ApplyPriceUpdate(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req dto.BulkUpdateRequest) (*dto.BulkUpdateResponse, error) {
	kind := BulkUpdateKind(req.Kind)

	var categoryID, subcategoryID *uuid.UUID
	switch req.Scope {
	case "category":
		id, err := parseUUIDPtr(req.CategoryID)
		if err != nil || id == nil {
			return nil, fmt.Errorf("category scope requires a valid category_id")
		}
		categoryID = id
	case "subcategory":
		id, err := parseUUIDPtr(req.SubcategoryID)
		if err != nil || id == nil {
			return nil, fmt.Errorf("subcategory scope requires a valid subcategory_id")
		}
		subcategoryID = id
		// When a category is also named, the subcategory must belong to it.
		if catID, err := parseUUIDPtr(req.CategoryID); err == nil && catID != nil {
			ok, err := s.categories.SubcategoryBelongsTo(ctx, *id, *catID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrCategoryMismatch
			}
			categoryID = catID
		}
	}

	var audit model.BulkPriceUpdate

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		products, err := s.products.ListForBulk(tx, tenantID, categoryID, subcategoryID)
		if err != nil {
			return err
		}

		sample := make([]model.BulkSampleEntry, 0, min(len(products), model.BulkSampleCap))
		truncated := false

		for i := range products {
			p := &products[i]
			oldPrice := p.Price
			newPrice, err := applyBulkKind(kind, req.Amount, oldPrice)
			if err != nil {
				return err
			}

			if err := s.inventory.ChangePriceTx(ctx, tx, p, PriceChange{
				NewPrice:       newPrice,
				UserID:         userID,
				SuppressLedger: true,
			}); err != nil {
				return err
			}

			h := &model.PriceHistory{
				TenantID:  p.TenantID,
				ProductID: p.ID,
				OldPrice:  oldPrice,
				NewPrice:  newPrice,
				Change:    newPrice.Sub(oldPrice),
				Kind:      priceChangeKind(newPrice.Sub(oldPrice), model.PriceChangeBulk),
				Reason:    req.Reason,
				UserID:    userID,
			}
			if err := s.inventory.RecordPriceChangeTx(tx, h); err != nil {
				return err
			}

			if len(sample) < model.BulkSampleCap {
				sample = append(sample, model.BulkSampleEntry{
					ProductID: p.ID,
					Name:      p.Name,
					OldPrice:  oldPrice,
					NewPrice:  newPrice,
				})
			} else {
				truncated = true
			}
		}

		sampleJSON, err := json.Marshal(sample)
		if err != nil {
			return err
		}
		audit = model.BulkPriceUpdate{
			TenantID:      tenantID,
			UserID:        userID,
			Kind:          string(kind),
			Amount:        req.Amount,
			Scope:         req.Scope,
			CategoryID:    categoryID,
			SubcategoryID: subcategoryID,
			Reason:        req.Reason,
			ProductCount:  len(products),
			Sample:        sampleJSON,
			Truncated:     truncated,
		}
		return s.audits.CreateTx(tx, &audit)
	})
	if txErr != nil {
		// The whole batch rolled back. Callers get one aggregate failure,
		// not per-row diagnostics.
		log.Error().Err(txErr).Str("tenant_id", tenantID.String()).Str("kind", req.Kind).Msg("bulk price update failed")
		return nil, ErrBatchFailed
	}

	return bulkToResponse(&audit), nil
}

func (s *bulkService) ListUpdates(ctx context.Context, tenantID uuid.UUID, page, limit int) (*dto.BulkUpdateListResponse, error) {
	rows, total, err := s.audits.List(ctx, tenantID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BulkUpdateResponse, 0, len(rows))
	for i := range rows {
		items = append(items, *bulkToResponse(&rows[i]))
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return &dto.BulkUpdateListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func bulkToResponse(b *model.BulkPriceUpdate) *dto.BulkUpdateResponse {
	var entries []model.BulkSampleEntry
	_ = json.Unmarshal(b.Sample, &entries)
	sample := make([]dto.BulkSampleEntryResponse, 0, len(entries))
	for _, e := range entries {
		sample = append(sample, dto.BulkSampleEntryResponse{
			ProductID: e.ProductID.String(),
			Name:      e.Name,
			OldPrice:  e.OldPrice,
			NewPrice:  e.NewPrice,
		})
	}
	return &dto.BulkUpdateResponse{
		ID:           b.ID.String(),
		Kind:         b.Kind,
		Amount:       b.Amount,
		Scope:        b.Scope,
		Reason:       b.Reason,
		ProductCount: b.ProductCount,
		Sample:       sample,
		Truncated:    b.Truncated,
		CreatedAt:    b.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
