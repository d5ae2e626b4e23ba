package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilters narrows admin inventory listings.
type ListFilters struct {
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
}

// Repository persists per-location stock records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProductInventory, error)
	FindByProductAndLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.ProductInventory, error)
	// DeductStock runs a single conditional decrement and reports affected rows.
	// Zero rows means the record is missing or holds less than qty.
	DeductStock(ctx context.Context, productID, locationID uuid.UUID, qty int) (int64, error)
	// RestoreStock increments stock with no upper bound; zero rows means the
	// record does not exist.
	RestoreStock(ctx context.Context, productID, locationID uuid.UUID, qty int) (int64, error)
	// AdjustStock applies a signed delta, refusing when the result would go
	// negative; zero rows means missing record or refused delta.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	Upsert(ctx context.Context, record *models.ProductInventory) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.ProductInventory, int64, error)
	ListBelowThreshold(ctx context.Context, threshold int, params pagination.Params) ([]models.ProductInventory, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductInventory, error) {
	var record models.ProductInventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Location").
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByProductAndLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.ProductInventory, error) {
	var record models.ProductInventory
	err := r.db.WithContext(ctx).
		First(&record, "product_id = ? AND location_id = ?", productID, locationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) DeductStock(ctx context.Context, productID, locationID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductInventory{}).
		Where("product_id = ? AND location_id = ? AND stock >= ?", productID, locationID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) RestoreStock(ctx context.Context, productID, locationID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductInventory{}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductInventory{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *repository) Upsert(ctx context.Context, record *models.ProductInventory) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock", "updated_at"}),
		}).
		Create(record).Error
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.ProductInventory, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductInventory{})
	if filters.ProductID != nil {
		query = query.Where("product_id = ?", *filters.ProductID)
	}
	if filters.LocationID != nil {
		query = query.Where("location_id = ?", *filters.LocationID)
	}
	return r.page(query, params)
}

func (r *repository) ListBelowThreshold(ctx context.Context, threshold int, params pagination.Params) ([]models.ProductInventory, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProductInventory{}).
		Where("stock < ?", threshold)
	return r.page(query, params)
}

func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.ProductInventory, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	n := params.Normalize()
	var records []models.ProductInventory
	err := query.
		Preload("Product").
		Preload("Location").
		Order("updated_at DESC").
		Offset(n.Offset()).
		Limit(n.Size).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
