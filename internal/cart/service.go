package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxLineQty bounds a single cart line.
const maxLineQty = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalog interface {
	GetActive(ctx context.Context, ref string) (*models.Product, error)
}

// Service manages customer carts.
type Service interface {
	// Add puts qty units of a product in the cart, topping up an existing
	// line for the same product.
	Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartItem, error)
	UpdateQty(ctx context.Context, userID, cartItemID uuid.UUID, qty int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, cartItemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	// ClearWithTx empties the cart inside the caller's transaction, so
	// checkout can clear atomically with order placement.
	ClearWithTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	// Merge folds guest cart lines into the user's cart, summing quantities.
	Merge(ctx context.Context, userID uuid.UUID, lines []MergeLine) (*View, error)
	View(ctx context.Context, userID uuid.UUID) (*View, error)
	// Lines returns the raw cart rows for checkout.
	Lines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
}

// MergeLine is one guest cart entry to fold in.
type MergeLine struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

// View is the priced cart rendered from live product data.
type View struct {
	Items      []ViewItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// ViewItem is one priced cart line. Unavailable lines keep their quantity but
// contribute nothing to the grand total.
type ViewItem struct {
	CartItemID uuid.UUID       `json:"cartItemId"`
	ProductID  uuid.UUID       `json:"productId"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	ImageURL   *string         `json:"imageUrl,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Qty        int             `json:"qty"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	Available  bool            `json:"available"`
}

type service struct {
	tx      txRunner
	repo    Repository
	catalog catalog
}

// NewService wires the cart service.
func NewService(tx txRunner, repo Repository, catalog catalog) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{tx: tx, repo: repo, catalog: catalog}, nil
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartItem, error) {
	if err := validateQty(qty); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetActive(ctx, productID.String()); err != nil {
		return nil, err
	}

	var item *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByUserAndProduct(ctx, userID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
		}
		if existing != nil {
			if err := validateQty(existing.Qty + qty); err != nil {
				return err
			}
			existing.Qty += qty
			if err := repo.Save(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart line")
			}
			item = existing
			return nil
		}

		item = &models.CartItem{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: productID,
			Qty:       qty,
		}
		if err := repo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) UpdateQty(ctx context.Context, userID, cartItemID uuid.UUID, qty int) (*models.CartItem, error) {
	if err := validateQty(qty); err != nil {
		return nil, err
	}

	item, err := s.findOwned(ctx, userID, cartItemID)
	if err != nil {
		return nil, err
	}
	item.Qty = qty
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart line")
	}
	return item, nil
}

func (s *service) Remove(ctx context.Context, userID, cartItemID uuid.UUID) error {
	item, err := s.findOwned(ctx, userID, cartItemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

func (s *service) ClearWithTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if err := s.repo.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

func (s *service) Merge(ctx context.Context, userID uuid.UUID, lines []MergeLine) (*View, error) {
	if len(lines) == 0 {
		return s.View(ctx, userID)
	}

	// Collapse duplicate product ids before touching storage.
	merged := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if err := validateQty(line.Qty); err != nil {
			return nil, err
		}
		if _, seen := merged[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		merged[line.ProductID] += line.Qty
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, productID := range order {
			qty := merged[productID]
			product, err := s.catalog.GetActive(ctx, productID.String())
			if err != nil {
				// Guest lines for retired products are dropped, not fatal.
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
					continue
				}
				return err
			}

			existing, err := repo.FindByUserAndProduct(ctx, userID, product.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
			}
			if existing != nil {
				existing.Qty = clampQty(existing.Qty + qty)
				if err := repo.Save(ctx, existing); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart line")
				}
				continue
			}
			item := &models.CartItem{
				ID:        uuid.New(),
				UserID:    userID,
				ProductID: product.ID,
				Qty:       clampQty(qty),
			}
			if err := repo.Create(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart line")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

func (s *service) View(ctx context.Context, userID uuid.UUID) (*View, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing cart")
	}

	view := &View{Items: make([]ViewItem, 0, len(items)), GrandTotal: decimal.Zero}
	for _, item := range items {
		line := ViewItem{
			CartItemID: item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			LineTotal:  decimal.Zero,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.Slug = item.Product.Slug
			line.ImageURL = item.Product.ImageURL
			line.Price = item.Product.Price
			line.Available = item.Product.IsActive
		}
		if line.Available {
			line.LineTotal = line.Price.Mul(decimal.NewFromInt(int64(item.Qty)))
			view.GrandTotal = view.GrandTotal.Add(line.LineTotal)
		}
		view.TotalItems += item.Qty
		view.Items = append(view.Items, line)
	}
	return view, nil
}

func (s *service) Lines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing cart")
	}
	return items, nil
}

func (s *service) findOwned(ctx context.Context, userID, cartItemID uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.FindByID(ctx, cartItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}
	if item == nil || item.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, nil
}

func validateQty(qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if qty > maxLineQty {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-item limit").
			WithDetails(map[string]any{"limit": maxLineQty})
	}
	return nil
}

func clampQty(qty int) int {
	if qty > maxLineQty {
		return maxLineQty
	}
	return qty
}
