package repository

import (
	"context"

	"novacrm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BulkUpdateRepository interface {
	CreateTx(tx *gorm.DB, b *model.BulkPriceUpdate) error
	List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.BulkPriceUpdate, int64, error)
}

type bulkUpdateRepo struct{ db *gorm.DB }

func NewBulkUpdateRepository(db *gorm.DB) BulkUpdateRepository {
	return &bulkUpdateRepo{db: db}
}

func (r *bulkUpdateRepo) CreateTx(tx *gorm.DB, b *model.BulkPriceUpdate) error {
	return tx.Create(b).Error
}

func (r *bulkUpdateRepo) List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.BulkPriceUpdate, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := r.db.WithContext(ctx).Model(&model.BulkPriceUpdate{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.BulkPriceUpdate
	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}
