package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/internal/orders"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// returnTransitions is the admin-driven resolution table. REJECTED and
// REFUNDED are terminal.
var returnTransitions = map[enums.ReturnStatus][]enums.ReturnStatus{
	enums.ReturnStatusRequested: {enums.ReturnStatusApproved, enums.ReturnStatusRejected},
	enums.ReturnStatusApproved:  {enums.ReturnStatusRefunded},
	enums.ReturnStatusRejected:  {},
	enums.ReturnStatusRefunded:  {},
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockLedger interface {
	Restore(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
}

// Policy tunes return handling.
type Policy struct {
	// RestockOnApproval puts approved quantities back at the order's
	// location.
	RestockOnApproval bool
	// RequestWindow bounds how long after delivery a return may be opened.
	// Zero disables the check.
	RequestWindow time.Duration
}

// CreateInput opens a return against one order item.
type CreateInput struct {
	UserID      uuid.UUID
	OrderItemID uuid.UUID
	Qty         int
	Reason      string
	Comment     *string
}

// ResolveInput is the admin decision on a return.
type ResolveInput struct {
	Status       string
	AdminComment *string
	RefundAmount *decimal.Decimal
}

// Service manages the return workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.OrderReturn, error)
	MyReturns(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.OrderReturn], error)
	AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.OrderReturn], error)
	Resolve(ctx context.Context, returnID uuid.UUID, input ResolveInput) (*models.OrderReturn, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	ordersRp orders.Repository
	ledger   stockLedger
	policy   Policy
}

// NewService wires the returns service.
func NewService(tx txRunner, repo Repository, ordersRepo orders.Repository, ledger stockLedger, policy Policy) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("return repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, ordersRp: ordersRepo, ledger: ledger, policy: policy}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.OrderReturn, error) {
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	reason, err := enums.ParseReturnReason(input.Reason)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return reason")
	}

	var ret *models.OrderReturn
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRp.WithTx(tx)

		order, item, err := s.findOrderItem(ctx, ordersRepo, input.UserID, input.OrderItemID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusDelivered && order.Status != enums.OrderStatusReturnRequested {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be returned").
				WithDetails(map[string]any{"status": order.Status})
		}
		if s.policy.RequestWindow > 0 && order.DeliveredAt != nil {
			if time.Since(*order.DeliveredAt) > s.policy.RequestWindow {
				return pkgerrors.New(pkgerrors.CodeValidation, "return window has closed")
			}
		}

		already, err := repo.ActiveQtyForItem(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing returned quantity")
		}
		if already+input.Qty > item.Qty {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the purchased amount").
				WithDetails(map[string]any{"purchased": item.Qty, "alreadyRequested": already})
		}

		ret = &models.OrderReturn{
			ID:          uuid.New(),
			OrderID:     order.ID,
			OrderItemID: item.ID,
			UserID:      input.UserID,
			Qty:         input.Qty,
			Reason:      reason,
			Comment:     input.Comment,
			Status:      enums.ReturnStatusRequested,
		}
		if err := repo.Create(ctx, ret); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating return")
		}

		// The first return flips the order into the return flow.
		if order.Status == enums.OrderStatusDelivered {
			if err := orders.Transition(order.Status, enums.OrderStatusReturnRequested); err != nil {
				return err
			}
			order.Status = enums.OrderStatusReturnRequested
			if err := ordersRepo.Save(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *service) MyReturns(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.OrderReturn], error) {
	records, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return pagination.Page[models.OrderReturn]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing returns")
	}
	return pagination.NewPage(records, params, total), nil
}

func (s *service) AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.OrderReturn], error) {
	records, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.OrderReturn]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing returns")
	}
	return pagination.NewPage(records, params, total), nil
}

func (s *service) Resolve(ctx context.Context, returnID uuid.UUID, input ResolveInput) (*models.OrderReturn, error) {
	target, err := enums.ParseReturnStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return status")
	}
	if input.RefundAmount != nil && input.RefundAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must not be negative")
	}

	var ret *models.OrderReturn
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		ret, err = repo.FindByID(ctx, returnID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading return")
		}
		if ret == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
		}
		if err := transitionReturn(ret.Status, target); err != nil {
			return err
		}

		if target == enums.ReturnStatusApproved && s.policy.RestockOnApproval {
			order, err := s.ordersRp.WithTx(tx).FindByID(ctx, ret.OrderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
			}
			if order == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "order missing for return")
			}
			item := findItem(order, ret.OrderItemID)
			if item == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "order item missing for return")
			}
			if err := s.ledger.Restore(ctx, tx, item.ProductID, order.LocationID, ret.Qty); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		ret.Status = target
		ret.AdminComment = input.AdminComment
		if input.RefundAmount != nil {
			ret.RefundAmount = input.RefundAmount
		}
		if target == enums.ReturnStatusRejected || target == enums.ReturnStatusRefunded {
			ret.ResolvedAt = &now
		}
		if err := repo.Save(ctx, ret); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving return")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *service) findOrderItem(ctx context.Context, repo orders.Repository, userID, orderItemID uuid.UUID) (*models.Order, *models.OrderItem, error) {
	item, err := repo.FindItemByID(ctx, orderItemID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order item")
	}
	if item == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}

	order, err := repo.FindByID(ctx, item.OrderID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || order.UserID != userID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	return order, item, nil
}

func findItem(order *models.Order, itemID uuid.UUID) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return &order.Items[i]
		}
	}
	return nil
}

func transitionReturn(from, to enums.ReturnStatus) error {
	for _, target := range returnTransitions[from] {
		if target == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "return status transition not allowed").
		WithDetails(map[string]any{"from": from, "to": to})
}
