package repository

import (
	"context"
	"time"

	"novacrm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockAlertRepository persists derived alert signals. Writes happen inside
// mutation transactions; reads are tenant-scoped dashboard queries.
type StockAlertRepository interface {
	CreateTx(tx *gorm.DB, a *model.StockAlert) error
	ListUnresolved(ctx context.Context, tenantID uuid.UUID) ([]model.StockAlert, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
	Resolve(ctx context.Context, tenantID, id uuid.UUID) error
}

type stockAlertRepo struct{ db *gorm.DB }

func NewStockAlertRepository(db *gorm.DB) StockAlertRepository {
	return &stockAlertRepo{db: db}
}

func (r *stockAlertRepo) CreateTx(tx *gorm.DB, a *model.StockAlert) error {
	return tx.Create(a).Error
}

// ListUnresolved orders by severity (critical first) then recency. Severity
// ranking is done in SQL so pagination stays correct.
func (r *stockAlertRepo) ListUnresolved(ctx context.Context, tenantID uuid.UUID) ([]model.StockAlert, error) {
	var alerts []model.StockAlert
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = stock_alerts.product_id").
		Where("products.tenant_id = ? AND stock_alerts.resolved = false", tenantID).
		Order(`CASE stock_alerts.severity
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3 END, stock_alerts.created_at DESC`).
		Preload("Product").
		Find(&alerts).Error
	return alerts, err
}

func (r *stockAlertRepo) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.StockAlert{}).
		Where("id = ? AND product_id IN (SELECT id FROM products WHERE tenant_id = ?)", id, tenantID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stockAlertRepo) Resolve(ctx context.Context, tenantID, id uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.StockAlert{}).
		Where("id = ? AND product_id IN (SELECT id FROM products WHERE tenant_id = ?)", id, tenantID).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StockRecommendationRepository persists derived recommendation signals.
type StockRecommendationRepository interface {
	CreateTx(tx *gorm.DB, rec *model.StockRecommendation) error
	ListUnapplied(ctx context.Context, tenantID uuid.UUID) ([]model.StockRecommendation, error)
	MarkApplied(ctx context.Context, tenantID, id uuid.UUID) error
}

type stockRecommendationRepo struct{ db *gorm.DB }

func NewStockRecommendationRepository(db *gorm.DB) StockRecommendationRepository {
	return &stockRecommendationRepo{db: db}
}

func (r *stockRecommendationRepo) CreateTx(tx *gorm.DB, rec *model.StockRecommendation) error {
	return tx.Create(rec).Error
}

func (r *stockRecommendationRepo) ListUnapplied(ctx context.Context, tenantID uuid.UUID) ([]model.StockRecommendation, error) {
	var recs []model.StockRecommendation
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = stock_recommendations.product_id").
		Where("products.tenant_id = ? AND stock_recommendations.applied = false", tenantID).
		Order("stock_recommendations.confidence DESC, stock_recommendations.created_at DESC").
		Preload("Product").
		Find(&recs).Error
	return recs, err
}

func (r *stockRecommendationRepo) MarkApplied(ctx context.Context, tenantID, id uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.StockRecommendation{}).
		Where("id = ? AND product_id IN (SELECT id FROM products WHERE tenant_id = ?)", id, tenantID).
		Updates(map[string]interface{}{"applied": true, "applied_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
