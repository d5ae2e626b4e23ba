package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/internal/orders"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockLedger interface {
	Deduct(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
}

type cartStore interface {
	ClearWithTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

// Service settles PREPAID orders. There is no gateway behind it; capture is
// an internal transition that commits the stock the order was quoted on.
type Service interface {
	// Confirm captures payment: deducts stock per line, records the
	// transaction, marks payment SUCCESS and the order PLACED, and clears
	// the cart.
	Confirm(ctx context.Context, userID, orderID uuid.UUID, reference *string) (*models.Order, error)
	// Fail marks the payment FAILED. The order stays PENDING with no stock
	// taken, so it can be retried or cancelled.
	Fail(ctx context.Context, userID, orderID uuid.UUID, reference *string) (*models.Order, error)
	Transactions(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error)
}

type service struct {
	tx       txRunner
	ordersRp orders.Repository
	repo     Repository
	ledger   stockLedger
	cart     cartStore
}

// NewService wires the payment capture service.
func NewService(tx txRunner, ordersRepo orders.Repository, repo Repository, ledger stockLedger, cart cartStore) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	return &service{tx: tx, ordersRp: ordersRepo, repo: repo, ledger: ledger, cart: cart}, nil
}

func (s *service) Confirm(ctx context.Context, userID, orderID uuid.UUID, reference *string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRp.WithTx(tx)
		var err error
		order, err = s.loadCapturable(ctx, ordersRepo, userID, orderID)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := s.ledger.Deduct(ctx, tx, item.ProductID, order.LocationID, item.Qty); err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeOutOfStock {
					return pkgerrors.New(pkgerrors.CodeOutOfStock, item.ProductName+" out of stock").
						WithDetails(typed.Details())
				}
				return err
			}
		}

		if err := s.repo.WithTx(tx).Create(ctx, &models.PaymentTransaction{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Amount:    order.Total,
			Status:    enums.PaymentStatusSuccess,
			Provider:  "internal",
			Reference: reference,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
		}

		order.PaymentStatus = enums.PaymentStatusSuccess
		order.Status = enums.OrderStatusPlaced
		if err := ordersRepo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}

		return s.cart.ClearWithTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Fail(ctx context.Context, userID, orderID uuid.UUID, reference *string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRp.WithTx(tx)
		var err error
		order, err = s.loadCapturable(ctx, ordersRepo, userID, orderID)
		if err != nil {
			return err
		}

		if err := s.repo.WithTx(tx).Create(ctx, &models.PaymentTransaction{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Amount:    order.Total,
			Status:    enums.PaymentStatusFailed,
			Provider:  "internal",
			Reference: reference,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
		}

		order.PaymentStatus = enums.PaymentStatusFailed
		if err := ordersRepo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Transactions(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error) {
	records, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payment transactions")
	}
	return records, nil
}

// loadCapturable enforces the capture preconditions: owned, PREPAID, order
// PENDING, payment PENDING (or FAILED, allowing a retry to settle).
func (s *service) loadCapturable(ctx context.Context, repo orders.Repository, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.PaymentMethod != enums.PaymentMethodPrepaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not prepaid")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment").
			WithDetails(map[string]any{"status": order.Status})
	}
	if order.PaymentStatus != enums.PaymentStatusPending && order.PaymentStatus != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment already settled").
			WithDetails(map[string]any{"paymentStatus": order.PaymentStatus})
	}
	return order, nil
}
