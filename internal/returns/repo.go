package returns

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilters narrows admin return listings.
type ListFilters struct {
	Status *enums.ReturnStatus
	UserID *uuid.UUID
}

// Repository persists return requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ret *models.OrderReturn) error
	Save(ctx context.Context, ret *models.OrderReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.OrderReturn, error)
	// ActiveQtyForItem sums quantities already requested against an order
	// item, excluding rejected returns.
	ActiveQtyForItem(ctx context.Context, orderItemID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.OrderReturn, int64, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.OrderReturn, int64, error)
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

func (r *repository) Create(ctx context.Context, ret *models.OrderReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *repository) Save(ctx context.Context, ret *models.OrderReturn) error {
	return r.db.WithContext(ctx).Save(ret).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderReturn, error) {
	var ret models.OrderReturn
	err := r.db.WithContext(ctx).First(&ret, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

func (r *repository) ActiveQtyForItem(ctx context.Context, orderItemID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderReturn{}).
		Where("order_item_id = ? AND status != ?", orderItemID, enums.ReturnStatusRejected).
		Select("COALESCE(SUM(qty), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.OrderReturn, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderReturn{}).Where("user_id = ?", userID)
	return r.page(query, params)
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.OrderReturn, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderReturn{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	return r.page(query, params)
}

func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.OrderReturn, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	n := params.Normalize()
	var records []models.OrderReturn
	err := query.
		Order("created_at DESC").
		Offset(n.Offset()).
		Limit(n.Size).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
