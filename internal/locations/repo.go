package locations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilters narrows admin location listings.
type ListFilters struct {
	Pincode    string
	ActiveOnly bool
}

// Repository persists fulfillment locations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, location *models.Location) error
	Save(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	// FindFirstActiveByPincode returns the oldest active location serving the
	// pincode, or nil when none does.
	FindFirstActiveByPincode(ctx context.Context, pincode string) (*models.Location, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Location, int64, error)
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

func (r *repository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) Save(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *repository) FindFirstActiveByPincode(ctx context.Context, pincode string) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("pincode = ? AND is_active = ?", pincode, true).
		Order("created_at ASC").
		First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Location, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Location{})
	if filters.Pincode != "" {
		query = query.Where("pincode = ?", filters.Pincode)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	n := params.Normalize()
	var records []models.Location
	err := query.
		Order("created_at ASC").
		Offset(n.Offset()).
		Limit(n.Size).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
