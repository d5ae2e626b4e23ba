package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockLedger interface {
	Restore(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
}

type cartAdder interface {
	Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartItem, error)
}

// Actor identifies who is driving an order operation. Admins bypass
// ownership checks.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

// Service drives the order lifecycle after placement.
type Service interface {
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	MyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.Order], error)
	AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Order], error)
	// UpdateStatus moves the order along the transition table, stamping
	// shipped/delivered timestamps.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*models.Order, error)
	// Cancel stops a non-terminal, non-shipped order and restores inventory
	// when stock had actually been deducted.
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID, reason *string) (*models.Order, error)
	// Reorder re-adds each line of a past order to the cart and reports
	// per-line success.
	Reorder(ctx context.Context, userID, orderID uuid.UUID) ([]ReorderResult, error)
}

// ReorderResult reports one line of a reorder attempt.
type ReorderResult struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Qty       int       `json:"qty"`
	Added     bool      `json:"added"`
	Reason    string    `json:"reason,omitempty"`
}

type service struct {
	tx     txRunner
	repo   Repository
	ledger stockLedger
	cart   cartAdder
}

// NewService wires the order lifecycle service.
func NewService(tx txRunner, repo Repository, ledger stockLedger, cart cartAdder) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger, cart: cart}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || (!actor.Admin && order.UserID != actor.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) MyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.Order], error) {
	records, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return pagination.NewPage(records, params, total), nil
}

func (s *service) AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Order], error) {
	records, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return pagination.NewPage(records, params, total), nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*models.Order, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if to == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}
	if to == enums.OrderStatusReturnRequested {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders enter the return flow through a return request")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := Transition(order.Status, to); err != nil {
			return err
		}

		now := time.Now().UTC()
		switch to {
		case enums.OrderStatusShipped:
			order.ShippedAt = &now
		case enums.OrderStatusDelivered:
			if order.DeliveredAt == nil {
				order.DeliveredAt = &now
			}
		}
		order.Status = to
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID, reason *string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		if order == nil || (!actor.Admin && order.UserID != actor.UserID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !CanCancel(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		// Stock was only taken for COD orders and captured PREPAID orders.
		if order.PaymentMethod == enums.PaymentMethodCOD ||
			order.PaymentStatus == enums.PaymentStatusSuccess {
			for _, item := range order.Items {
				if err := s.ledger.Restore(ctx, tx, item.ProductID, order.LocationID, item.Qty); err != nil {
					return err
				}
			}
		}

		if order.PaymentStatus == enums.PaymentStatusSuccess {
			order.PaymentStatus = enums.PaymentStatusRefundPending
		} else {
			order.PaymentStatus = enums.PaymentStatusCancelled
		}

		now := time.Now().UTC()
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		order.CancelReason = reason
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Reorder(ctx context.Context, userID, orderID uuid.UUID) ([]ReorderResult, error) {
	order, err := s.Get(ctx, Actor{UserID: userID}, orderID)
	if err != nil {
		return nil, err
	}

	results := make([]ReorderResult, 0, len(order.Items))
	for _, item := range order.Items {
		result := ReorderResult{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Qty:       item.Qty,
		}
		if _, err := s.cart.Add(ctx, userID, item.ProductID, item.Qty); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				result.Reason = typed.Message()
			} else {
				result.Reason = "could not add to cart"
			}
		} else {
			result.Added = true
		}
		results = append(results, result)
	}
	return results, nil
}
