package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"novacrm/internal/dto"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductService defines the business logic contract for products. Quantity
// and price updates are routed through the inventory service — handlers never
// write those fields directly.
type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	inventory  InventoryService
	rdb        *redis.Client
	cacheTTL   time.Duration
}

func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	inventory InventoryService,
	rdb *redis.Client,
	cacheTTL time.Duration,
) ProductService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &productService{repo: repo, categories: categories, inventory: inventory, rdb: rdb, cacheTTL: cacheTTL}
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: initial quantity %d", ErrInvalidQuantity, req.Quantity)
	}

	exists, err := s.repo.ExistsByName(ctx, tenantID, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, req.Name)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category_id: %w", err)
	}
	subcategoryID, err := parseUUIDPtr(req.SubcategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid subcategory_id: %w", err)
	}
	if err := s.checkTaxonomy(ctx, categoryID, subcategoryID); err != nil {
		return nil, err
	}

	p := &model.Product{
		TenantID:       tenantID,
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     categoryID,
		SubcategoryID:  subcategoryID,
		Quantity:       req.Quantity,
		MinStockLevel:  req.MinStockLevel,
		Price:          req.Price,
		CostPrice:      req.CostPrice,
		DiscountPct:    req.DiscountPct,
		DiscountAmount: req.DiscountAmount,
		DiscountStart:  req.DiscountStart,
		DiscountEnd:    req.DiscountEnd,
		Active:         true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.ProductResponse, error) {
	// Cache first — dashboards poll product detail aggressively.
	if cached := s.cacheGet(ctx, id); cached != nil && cached.TenantID == tenantID.String() {
		return cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if p.TenantID != tenantID {
		return nil, ErrForbidden
	}
	resp := productToResponse(p)
	s.cacheSet(ctx, id, resp)
	return resp, nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update applies plain field edits directly and routes quantity/price changes
// through the inventory mutator so ledger entries and derived signals stay
// consistent. The whole update is one transaction.
func (s *productService) Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if existing.TenantID != tenantID {
		return nil, ErrForbidden
	}

	if req.Name != nil && *req.Name != existing.Name {
		dup, err := s.repo.ExistsByName(ctx, tenantID, *req.Name, &id)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, *req.Name)
		}
	}

	categoryID := existing.CategoryID
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %w", err)
		}
		categoryID = cid
	}
	subcategoryID := existing.SubcategoryID
	if req.SubcategoryID != nil {
		sid, err := parseUUIDPtr(req.SubcategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid subcategory_id: %w", err)
		}
		subcategoryID = sid
	}
	if err := s.checkTaxonomy(ctx, categoryID, subcategoryID); err != nil {
		return nil, err
	}

	var p *model.Product
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Re-read inside the transaction: the pre-change values used for
		// ledger deltas must not come from the request-time snapshot.
		p, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}

		if req.Quantity != nil && *req.Quantity != p.Quantity {
			if err := s.inventory.ChangeQuantityTx(ctx, tx, p, QuantityChange{
				NewQuantity: *req.Quantity,
				Reason:      req.Reason,
				UserID:      userID,
			}); err != nil {
				return err
			}
		}
		if req.Price != nil && !req.Price.Equal(p.Price) {
			if err := s.inventory.ChangePriceTx(ctx, tx, p, PriceChange{
				NewPrice: *req.Price,
				Reason:   req.Reason,
				UserID:   userID,
			}); err != nil {
				return err
			}
		}

		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Description != nil {
			p.Description = req.Description
		}
		p.CategoryID = categoryID
		p.SubcategoryID = subcategoryID
		if req.MinStockLevel != nil {
			p.MinStockLevel = *req.MinStockLevel
		}
		if req.CostPrice != nil {
			p.CostPrice = *req.CostPrice
		}
		if req.DiscountPct != nil {
			p.DiscountPct = *req.DiscountPct
		}
		if req.DiscountAmount != nil {
			p.DiscountAmount = *req.DiscountAmount
		}
		if req.DiscountStart != nil {
			p.DiscountStart = req.DiscountStart
		}
		if req.DiscountEnd != nil {
			p.DiscountEnd = req.DiscountEnd
		}
		if tx != nil {
			return tx.Save(p).Error
		}
		return s.repo.Update(ctx, p)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.cacheInvalidate(ctx, id)
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if p.TenantID != tenantID {
		return ErrForbidden
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.cacheInvalidate(ctx, id)
	return nil
}

// checkTaxonomy rejects a subcategory that does not belong to the category.
func (s *productService) checkTaxonomy(ctx context.Context, categoryID uuid.UUID, subcategoryID *uuid.UUID) error {
	if subcategoryID == nil {
		return nil
	}
	ok, err := s.categories.SubcategoryBelongsTo(ctx, *subcategoryID, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryMismatch
	}
	return nil
}

// ── Product cache (best-effort, never fails the request) ─────────────────────

func productCacheKey(id uuid.UUID) string { return "product:" + id.String() }

func (s *productService) cacheGet(ctx context.Context, id uuid.UUID) *dto.ProductResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.ProductResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *productService) cacheSet(ctx context.Context, id uuid.UUID, resp *dto.ProductResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, productCacheKey(id), raw, s.cacheTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("product cache: set failed")
	}
}

func (s *productService) cacheInvalidate(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, productCacheKey(id)).Err(); err != nil {
		log.Debug().Err(err).Msg("product cache: invalidation failed")
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	var subID *string
	if p.SubcategoryID != nil {
		s := p.SubcategoryID.String()
		subID = &s
	}
	return &dto.ProductResponse{
		ID:             p.ID.String(),
		TenantID:       p.TenantID.String(),
		Name:           p.Name,
		Description:    p.Description,
		CategoryID:     p.CategoryID.String(),
		SubcategoryID:  subID,
		Quantity:       p.Quantity,
		MinStockLevel:  p.MinStockLevel,
		Price:          p.Price,
		CostPrice:      p.CostPrice,
		DiscountPct:    p.DiscountPct,
		DiscountAmount: p.DiscountAmount,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
