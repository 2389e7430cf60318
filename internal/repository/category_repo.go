package repository

import (
	"context"
	"errors"

	"novacrm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepository is a read-only taxonomy lookup from the engine's point
// of view. Its only engine duty is validating that a product's subcategory
// belongs to its category before a mutation is accepted.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.Category, error)
	SubcategoryBelongsTo(ctx context.Context, subcategoryID, categoryID uuid.UUID) (bool, error)
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Preload("Subcategories").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *categoryRepo) List(ctx context.Context, tenantID uuid.UUID) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Subcategories").
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) SubcategoryBelongsTo(ctx context.Context, subcategoryID, categoryID uuid.UUID) (bool, error) {
	var sub model.Subcategory
	err := r.db.WithContext(ctx).First(&sub, "id = ?", subcategoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return sub.CategoryID == categoryID, nil
}
