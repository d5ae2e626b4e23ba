package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/internal/orders"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type addressBook interface {
	GetOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error)
}

type locationResolver interface {
	ResolvePincode(ctx context.Context, pincode string) (*models.Location, error)
}

type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type stockLedger interface {
	Deduct(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
	Available(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
}

type cartStore interface {
	Lines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	ClearWithTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

// Input is a checkout request. When Lines is empty the customer's cart is
// used.
type Input struct {
	UserID        uuid.UUID
	AddressID     uuid.UUID
	PaymentMethod enums.PaymentMethod
	Lines         []Line
}

// Line is one requested product quantity.
type Line struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

// Result is the placed order summary returned to the customer.
type Result struct {
	OrderID         uuid.UUID           `json:"orderId"`
	OrderNumber     string              `json:"orderNumber"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	PaymentRequired bool                `json:"paymentRequired"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	ShippingCharge  decimal.Decimal     `json:"shippingCharge"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	DeliveryAddress DeliveryAddress     `json:"deliveryAddress"`
	EstimatedDays   int                 `json:"estimatedDays"`
	Items           []ResultItem        `json:"items"`
}

// DeliveryAddress is the snapshot stored on the order.
type DeliveryAddress struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Line1   string  `json:"line1"`
	Line2   *string `json:"line2,omitempty"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Pincode string  `json:"pincode"`
}

// ResultItem is one priced order line.
type ResultItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Service assembles orders. The whole placement runs in one transaction so a
// failing line rolls back every deduction and the order shell.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	tx        txRunner
	ordersRp  orders.Repository
	addresses addressBook
	locations locationResolver
	catalog   catalog
	ledger    stockLedger
	cart      cartStore
}

// NewService wires the order assembler.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	addresses addressBook,
	locations locationResolver,
	catalog catalog,
	ledger stockLedger,
	cart cartStore,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address service required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location service required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	return &service{
		tx:        tx,
		ordersRp:  ordersRepo,
		addresses: addresses,
		locations: locations,
		catalog:   catalog,
		ledger:    ledger,
		cart:      cart,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}

	lines, err := s.resolveLines(ctx, input)
	if err != nil {
		return nil, err
	}

	address, err := s.addresses.GetOwned(ctx, input.UserID, input.AddressID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "address does not belong to this account")
		}
		return nil, err
	}

	location, err := s.locations.ResolvePincode(ctx, address.Pincode)
	if err != nil {
		return nil, err
	}
	if input.PaymentMethod == enums.PaymentMethodCOD && !location.CODAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cash on delivery is not available for this pincode")
	}

	var result *Result
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRp.WithTx(tx)

		order := &models.Order{
			ID:              uuid.New(),
			OrderNumber:     newOrderNumber(),
			UserID:          input.UserID,
			LocationID:      location.ID,
			AddressID:       address.ID,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusPending,
			Subtotal:        decimal.Zero,
			Tax:             decimal.Zero,
			ShippingCharge:  location.ExtraShippingCharge,
			Discount:        decimal.Zero,
			Total:           decimal.Zero,
			DeliveryName:    address.Name,
			DeliveryPhone:   address.Phone,
			DeliveryLine1:   address.Line1,
			DeliveryLine2:   address.Line2,
			DeliveryCity:    address.City,
			DeliveryState:   address.State,
			DeliveryPincode: address.Pincode,
		}

		for _, line := range lines {
			item, err := s.assembleLine(ctx, tx, order, location, input.PaymentMethod, line)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
			order.Subtotal = order.Subtotal.Add(item.LineTotal)
			order.Tax = order.Tax.Add(lineTax(item))
		}

		order.Total = order.Subtotal.
			Add(order.Tax).
			Add(order.ShippingCharge).
			Sub(order.Discount)

		if input.PaymentMethod == enums.PaymentMethodCOD {
			order.Status = enums.OrderStatusPlaced
		}

		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		if input.PaymentMethod == enums.PaymentMethodCOD {
			if err := s.cart.ClearWithTx(ctx, tx, input.UserID); err != nil {
				return err
			}
		}

		result = buildResult(order, location)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) resolveLines(ctx context.Context, input Input) ([]Line, error) {
	if len(input.Lines) > 0 {
		seen := make(map[uuid.UUID]bool, len(input.Lines))
		for _, line := range input.Lines {
			if line.ProductID == uuid.Nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
			}
			if line.Qty <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
			}
			if seen[line.ProductID] {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in checkout lines")
			}
			seen[line.ProductID] = true
		}
		return input.Lines, nil
	}

	cartLines, err := s.cart.Lines(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if len(cartLines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	lines := make([]Line, 0, len(cartLines))
	for _, item := range cartLines {
		lines = append(lines, Line{ProductID: item.ProductID, Qty: item.Qty})
	}
	return lines, nil
}

func (s *service) assembleLine(
	ctx context.Context,
	tx *gorm.DB,
	order *models.Order,
	location *models.Location,
	method enums.PaymentMethod,
	line Line,
) (*models.OrderItem, error) {
	product, err := s.catalog.FindByID(ctx, line.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"productId": line.ProductID})
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, product.Name+" is no longer available")
	}
	if method == enums.PaymentMethodCOD && !product.CODAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, product.Name+" is not eligible for cash on delivery")
	}

	// COD commits stock now; PREPAID only proves availability and commits at
	// capture time.
	switch method {
	case enums.PaymentMethodCOD:
		err = s.ledger.Deduct(ctx, tx, product.ID, location.ID, line.Qty)
	default:
		err = s.ledger.Available(ctx, tx, product.ID, location.ID, line.Qty)
	}
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeOutOfStock {
			return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, product.Name+" out of stock").
				WithDetails(typed.Details())
		}
		return nil, err
	}

	qty := decimal.NewFromInt(int64(line.Qty))
	return &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     order.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		SKU:         product.SKU,
		Price:       product.Price,
		TaxPercent:  product.TaxPercent,
		Qty:         line.Qty,
		LineTotal:   product.Price.Mul(qty),
	}, nil
}

func lineTax(item *models.OrderItem) decimal.Decimal {
	return item.TaxPercent.Div(oneHundred).Mul(item.LineTotal)
}

func buildResult(order *models.Order, location *models.Location) *Result {
	result := &Result{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		PaymentRequired: order.PaymentMethod == enums.PaymentMethodPrepaid,
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		ShippingCharge:  order.ShippingCharge,
		Discount:        order.Discount,
		Total:           order.Total,
		DeliveryAddress: DeliveryAddress{
			Name:    order.DeliveryName,
			Phone:   order.DeliveryPhone,
			Line1:   order.DeliveryLine1,
			Line2:   order.DeliveryLine2,
			City:    order.DeliveryCity,
			State:   order.DeliveryState,
			Pincode: order.DeliveryPincode,
		},
		EstimatedDays: location.DeliveryDays,
	}
	for _, item := range order.Items {
		result.Items = append(result.Items, ResultItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			SKU:       item.SKU,
			Price:     item.Price,
			Qty:       item.Qty,
			LineTotal: item.LineTotal,
		})
	}
	return result
}

// newOrderNumber builds a human-readable unique order reference.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
