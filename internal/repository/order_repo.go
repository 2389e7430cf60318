package repository

import (
	"context"
	"time"

	"novacrm/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter defines filters for listing orders.
type OrderFilter struct {
	Cancelled string // "true" | "false" | "" (all)
	Page      int
	Limit     int
}

type OrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]model.Order, int64, error)
	MarkCancelledTx(tx *gorm.DB, id uuid.UUID) error
	UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error
	NextNumber(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (int, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&o, "id = ?", id).Error
	return &o, err
}

// FindByIDTx locks the order row (SELECT ... FOR UPDATE) so that concurrent
// cancel/delete/line-removal transactions serialize on it.
func (r *orderRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("tenant_id = ?", tenantID)
	switch filter.Cancelled {
	case "true":
		q = q.Where("cancelled = true")
	case "false":
		q = q.Where("cancelled = false")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var orders []model.Order
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).
		Preload("Items").Find(&orders).Error
	return orders, total, err
}

// MarkCancelledTx flips the flag only when it is not yet set. Zero affected
// rows reports gorm.ErrRecordNotFound: the order is gone or a concurrent
// transaction already cancelled it, and the caller must not release stock.
func (r *orderRepo) MarkCancelledTx(tx *gorm.DB, id uuid.UUID) error {
	now := time.Now()
	res := tx.Model(&model.Order{}).
		Where("id = ? AND cancelled = false", id).
		Updates(map[string]interface{}{"cancelled": true, "cancelled_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("total", total).Error
}

func (r *orderRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Order{}, "id = ?", id).Error
}

func (r *orderRepo) DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error {
	return tx.Delete(&model.OrderItem{}, "id = ?", itemID).Error
}

// NextNumber allocates the next per-tenant order number inside the creation
// transaction.
func (r *orderRepo) NextNumber(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (int, error) {
	var max int
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	return max + 1, err
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
