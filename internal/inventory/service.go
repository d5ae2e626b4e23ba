package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the stock ledger. Every mutation is a single conditional update
// executed inside the caller's transaction, so stock can never go negative
// regardless of interleaving.
type Service interface {
	// Deduct removes qty units inside tx. It distinguishes a missing record
	// from insufficient stock.
	Deduct(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
	// Restore puts qty units back inside tx. No upper bound is enforced.
	Restore(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
	// Available reports whether the location holds at least qty units.
	Available(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error

	Adjust(ctx context.Context, recordID uuid.UUID, delta int) (*models.ProductInventory, error)
	Upsert(ctx context.Context, input UpsertInput) (*models.ProductInventory, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.ProductInventory], error)
	LowStock(ctx context.Context, threshold int, params pagination.Params) (pagination.Page[models.ProductInventory], error)
	OutOfStock(ctx context.Context, params pagination.Params) (pagination.Page[models.ProductInventory], error)
}

// UpsertInput creates or replaces a stock record.
type UpsertInput struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Stock      int
}

type service struct {
	tx               txRunner
	repo             Repository
	defaultThreshold int
}

// NewService wires the inventory ledger.
func NewService(tx txRunner, repo Repository, defaultThreshold int) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if defaultThreshold <= 0 {
		defaultThreshold = 5
	}
	return &service{tx: tx, repo: repo, defaultThreshold: defaultThreshold}, nil
}

func (s *service) Deduct(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	affected, err := repo.DeductStock(ctx, productID, locationID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deducting stock")
	}
	if affected > 0 {
		return nil
	}

	return s.classifyMiss(ctx, repo, productID, locationID)
}

func (s *service) Restore(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	affected, err := repo.RestoreStock(ctx, productID, locationID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restoring stock")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
	}
	return nil
}

func (s *service) Available(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	record, err := repo.FindByProductAndLocation(ctx, productID, locationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory record")
	}
	if record == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product not available at this location")
	}
	if record.Stock < qty {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
			WithDetails(map[string]any{"available": record.Stock, "requested": qty})
	}
	return nil
}

func (s *service) classifyMiss(ctx context.Context, repo Repository, productID, locationID uuid.UUID) error {
	record, err := repo.FindByProductAndLocation(ctx, productID, locationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory record")
	}
	if record == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product not available at this location")
	}
	return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
		WithDetails(map[string]any{"available": record.Stock})
}

func (s *service) Adjust(ctx context.Context, recordID uuid.UUID, delta int) (*models.ProductInventory, error) {
	if recordID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory record id required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	var updated *models.ProductInventory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.AdjustStock(ctx, recordID, delta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting stock")
		}
		if affected == 0 {
			record, err := repo.FindByID(ctx, recordID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory record")
			}
			if record == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "adjustment would drive stock negative").
				WithDetails(map[string]any{"stock": record.Stock, "delta": delta})
		}

		updated, err = repo.FindByID(ctx, recordID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.ProductInventory, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	var record *models.ProductInventory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		candidate := &models.ProductInventory{
			ID:         uuid.New(),
			ProductID:  input.ProductID,
			LocationID: input.LocationID,
			Stock:      input.Stock,
		}
		if err := repo.Upsert(ctx, candidate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting inventory record")
		}
		var err error
		record, err = repo.FindByProductAndLocation(ctx, input.ProductID, input.LocationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.ProductInventory], error) {
	records, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.ProductInventory]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing inventory")
	}
	return pagination.NewPage(records, params, total), nil
}

func (s *service) LowStock(ctx context.Context, threshold int, params pagination.Params) (pagination.Page[models.ProductInventory], error) {
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}
	records, total, err := s.repo.ListBelowThreshold(ctx, threshold, params)
	if err != nil {
		return pagination.Page[models.ProductInventory]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing low stock")
	}
	return pagination.NewPage(records, params, total), nil
}

func (s *service) OutOfStock(ctx context.Context, params pagination.Params) (pagination.Page[models.ProductInventory], error) {
	records, total, err := s.repo.ListBelowThreshold(ctx, 1, params)
	if err != nil {
		return pagination.Page[models.ProductInventory]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing out of stock")
	}
	return pagination.NewPage(records, params, total), nil
}
