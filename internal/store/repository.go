package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tiendaviva/tienda/internal/domain"
	"gorm.io/gorm"
)

// GormProductRepository is the GORM implementation of ProductRepository
// against the hosted product table.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FetchProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, errors.Wrapf(err, "fetch product %d", id)
	}
	return &product, nil
}

// SaveProductVariants writes the entire variants structure back as one
// jsonb column update.
func (r *GormProductRepository) SaveProductVariants(ctx context.Context, id int64, variants domain.VariantList) error {
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("variants", variants).Error
	return errors.Wrapf(err, "save variants for product %d", id)
}

func (r *GormProductRepository) SaveProductBaseStock(ctx context.Context, id int64, stock int) error {
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("base_stock", stock).Error
	return errors.Wrapf(err, "save base stock for product %d", id)
}
