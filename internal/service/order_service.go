package service

import (
	"context"
	"errors"
	"fmt"

	"novacrm/internal/dto"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService coordinates order fulfillment against inventory: reservations
// on creation, releases on cancellation and deletion. All quantity changes go
// through the inventory service with ledger suppression, followed by one
// order-specific movement per line — exactly one ledger entry per reservation
// or release.
type OrderService interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter repository.OrderFilter) (*dto.OrderListResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error
	Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error
	RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID, userID *uuid.UUID) error
}

type orderService struct {
	repo      repository.OrderRepository
	products  repository.ProductRepository
	inventory InventoryService
}

func NewOrderService(
	repo repository.OrderRepository,
	products repository.ProductRepository,
	inventory InventoryService,
) OrderService {
	return &orderService{repo: repo, products: products, inventory: inventory}
}

// Create registers an order with all its lines as one atomic unit: either
// every line's reservation succeeds, or nothing persists.
//
// Inside the transaction:
//  1. re-read every product (not from a request-time snapshot) and validate
//     availability for all lines before touching any quantity
//  2. create the order and its lines, unit price frozen at line creation
//  3. reserve each line through the inventory mutator (ledger suppressed)
//     and append the order-specific outbound movement
func (s *orderService) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	var order model.Order

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextNumber(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("ORD-%d", number)

		type resolvedLine struct {
			product  *model.Product
			quantity int
		}

		// Pass 1: resolve and validate every line inside the transaction.
		// Demand is accumulated per product so that several lines referencing
		// the same product are checked against their summed quantity, not each
		// against full stock.
		resolved := make([]resolvedLine, 0, len(req.Items))
		demand := make(map[uuid.UUID]int, len(req.Items))
		for _, item := range req.Items {
			pid, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fmt.Errorf("invalid product_id %q: %w", item.ProductID, err)
			}
			p, err := s.products.FindByIDTx(tx, pid)
			if err != nil {
				return fmt.Errorf("product %s: %w", item.ProductID, ErrNotFound)
			}
			if p.TenantID != tenantID {
				return fmt.Errorf("product %q: %w", p.Name, ErrForbidden)
			}
			if !p.Active {
				return fmt.Errorf("product %q is inactive and cannot be ordered", p.Name)
			}
			demand[pid] += item.Quantity
			if p.Quantity < demand[pid] {
				return fmt.Errorf("%w: product %q has %d units, %d requested",
					ErrInsufficientStock, p.Name, p.Quantity, demand[pid])
			}
			resolved = append(resolved, resolvedLine{product: p, quantity: item.Quantity})
		}

		// Pass 2: build and persist the order.
		total := decimal.Zero
		order = model.Order{
			TenantID:     tenantID,
			Number:       number,
			Name:         name,
			CustomerName: req.CustomerName,
			CreatedBy:    userID,
		}
		for _, line := range resolved {
			lineTotal := line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity)))
			total = total.Add(lineTotal)
			order.Items = append(order.Items, model.OrderItem{
				ProductID: line.product.ID,
				Quantity:  line.quantity,
				UnitPrice: line.product.Price,
				LineTotal: lineTotal,
			})
		}
		order.Total = total
		if err := s.repo.CreateTx(tx, &order); err != nil {
			return err
		}

		// Pass 3: reserve stock per line. The product is re-read immediately
		// before each reservation so a repeated product sees the quantity left
		// by the previous line, keeping before/after snapshots contiguous.
		// Suppression keeps the mutator from writing a second, generic entry
		// for the same change.
		for _, line := range resolved {
			p, err := s.products.FindByIDTx(tx, line.product.ID)
			if err != nil {
				return fmt.Errorf("product %s: %w", line.product.ID, ErrNotFound)
			}
			before := p.Quantity
			if err := s.inventory.ChangeQuantityTx(ctx, tx, p, QuantityChange{
				NewQuantity:    before - line.quantity,
				UserID:         userID,
				SuppressLedger: true,
			}); err != nil {
				return err
			}
			mov := &model.StockMovement{
				TenantID:       p.TenantID,
				ProductID:      p.ID,
				Kind:           model.MovementOutbound,
				QuantityBefore: before,
				QuantityAfter:  before - line.quantity,
				QuantityChange: -line.quantity,
				Reason:         fmt.Sprintf("Sale - Order %s", name),
				UserID:         userID,
			}
			if err := s.inventory.RecordMovementTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.toResponse(ctx, &order), nil
}

func (s *orderService) Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.TenantID != tenantID {
		return nil, ErrForbidden
	}
	return s.toResponse(ctx, order), nil
}

func (s *orderService) List(ctx context.Context, tenantID uuid.UUID, filter repository.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *s.toResponse(ctx, &orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Cancel releases every line exactly once and sets the cancelled flag, all in
// one transaction. A second cancellation is a no-op reporting
// ErrOrderAlreadyCancelled — nothing is re-released.
func (s *orderService) Cancel(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.TenantID != tenantID {
		return ErrForbidden
	}
	if order.Cancelled {
		return ErrOrderAlreadyCancelled
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Claim the flag first. The conditional update reports zero affected
		// rows when another transaction cancelled in the window since the
		// guard read above, so the lines are never released twice.
		if err := s.repo.MarkCancelledTx(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderAlreadyCancelled
			}
			return err
		}
		current, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		reason := fmt.Sprintf("Order Cancellation - Order %s", current.Name)
		return s.releaseItemsTx(ctx, tx, current.Items, reason, userID)
	})
}

// Delete removes the order and its lines. Stock is released first unless the
// order was already cancelled — cancellation already released everything.
func (s *orderService) Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.TenantID != tenantID {
		return ErrForbidden
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Locked re-read: the cancelled flag and the line set must come from
		// inside the transaction, not from the guard read above.
		current, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		if !current.Cancelled {
			reason := fmt.Sprintf("Order Deletion - Order %s", current.Name)
			if err := s.releaseItemsTx(ctx, tx, current.Items, reason, userID); err != nil {
				return err
			}
		}
		return s.repo.DeleteTx(tx, id)
	})
}

// RemoveItem deletes one line, releasing its reserved quantity when the order
// is still live. The order total is recomputed from the remaining lines.
func (s *orderService) RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID, userID *uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if order.TenantID != tenantID {
		return ErrForbidden
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Locked re-read keeps the release decision and the total consistent
		// with concurrent cancellations and removals of the same order.
		current, err := s.repo.FindByIDTx(tx, orderID)
		if err != nil {
			return err
		}
		var removed *model.OrderItem
		for i := range current.Items {
			if current.Items[i].ID == itemID {
				removed = &current.Items[i]
				break
			}
		}
		if removed == nil {
			return fmt.Errorf("order item %s: %w", itemID, ErrNotFound)
		}
		line := *removed

		if !current.Cancelled {
			reason := fmt.Sprintf("Line Removed - Order %s", current.Name)
			if err := s.releaseItemsTx(ctx, tx, []model.OrderItem{line}, reason, userID); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteItemTx(tx, itemID); err != nil {
			return err
		}
		return s.repo.UpdateTotalTx(tx, orderID, current.Total.Sub(line.LineTotal))
	})
}

// releaseItemsTx restores each line's reserved quantity through the inventory
// mutator (suppressed) and appends one specific inbound movement per line.
// Products are re-read inside the transaction, never from a stale snapshot.
func (s *orderService) releaseItemsTx(ctx context.Context, tx *gorm.DB, items []model.OrderItem, reason string, userID *uuid.UUID) error {
	for _, item := range items {
		p, err := s.products.FindByIDTx(tx, item.ProductID)
		if err != nil {
			return fmt.Errorf("product %s: %w", item.ProductID, ErrNotFound)
		}
		before := p.Quantity
		if err := s.inventory.ChangeQuantityTx(ctx, tx, p, QuantityChange{
			NewQuantity:    before + item.Quantity,
			UserID:         userID,
			SuppressLedger: true,
		}); err != nil {
			return err
		}
		mov := &model.StockMovement{
			TenantID:       p.TenantID,
			ProductID:      p.ID,
			Kind:           model.MovementInbound,
			QuantityBefore: before,
			QuantityAfter:  before + item.Quantity,
			QuantityChange: item.Quantity,
			Reason:         reason,
			UserID:         userID,
		}
		if err := s.inventory.RecordMovementTx(tx, mov); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) toResponse(ctx context.Context, o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		} else if p, err := s.products.FindByID(ctx, item.ProductID); err == nil {
			name = p.Name
		}
		items = append(items, dto.OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return &dto.OrderResponse{
		ID:           o.ID.String(),
		Number:       o.Number,
		Name:         o.Name,
		CustomerName: o.CustomerName,
		Total:        o.Total,
		Cancelled:    o.Cancelled,
		Items:        items,
		CreatedAt:    o.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
