package locations

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Service manages fulfillment locations and pincode serviceability.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Location, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Location, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Location], error)
	// CheckPincode reports whether any active location serves the pincode.
	CheckPincode(ctx context.Context, pincode string) (*Serviceability, error)
	// ResolvePincode returns the serving location or a validation error when
	// the pincode is not serviceable. Checkout depends on this distinction.
	ResolvePincode(ctx context.Context, pincode string) (*models.Location, error)
}

// CreateInput captures an admin create request.
type CreateInput struct {
	Name                string
	City                string
	State               string
	Pincode             string
	Lat                 *float64
	Lng                 *float64
	DeliveryDays        int
	CODAvailable        bool
	ExtraShippingCharge decimal.Decimal
}

// UpdateInput carries partial updates; nil fields are left unchanged.
type UpdateInput struct {
	Name                *string
	City                *string
	State               *string
	Pincode             *string
	Lat                 *float64
	Lng                 *float64
	IsActive            *bool
	DeliveryDays        *int
	CODAvailable        *bool
	ExtraShippingCharge *decimal.Decimal
}

// Serviceability is the public pincode check response.
type Serviceability struct {
	Pincode             string          `json:"pincode"`
	Serviceable         bool            `json:"serviceable"`
	DeliveryDays        int             `json:"deliveryDays,omitempty"`
	CODAvailable        bool            `json:"codAvailable,omitempty"`
	ExtraShippingCharge decimal.Decimal `json:"extraShippingCharge"`
}

type service struct {
	repo Repository
}

// NewService wires the location service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("location repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Location, error) {
	if err := validatePincode(input.Pincode); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.State) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city and state are required")
	}
	if input.DeliveryDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery days must not be negative")
	}
	if input.ExtraShippingCharge.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "extra shipping charge must not be negative")
	}

	location := &models.Location{
		ID:                  uuid.New(),
		Name:                strings.TrimSpace(input.Name),
		City:                strings.TrimSpace(input.City),
		State:               strings.TrimSpace(input.State),
		Pincode:             strings.TrimSpace(input.Pincode),
		Lat:                 input.Lat,
		Lng:                 input.Lng,
		IsActive:            true,
		DeliveryDays:        input.DeliveryDays,
		CODAvailable:        input.CODAvailable,
		ExtraShippingCharge: input.ExtraShippingCharge,
	}
	if location.DeliveryDays == 0 {
		location.DeliveryDays = 3
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating location")
	}
	return location, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading location")
	}
	if location == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		location.Name = strings.TrimSpace(*input.Name)
	}
	if input.City != nil {
		location.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		location.State = strings.TrimSpace(*input.State)
	}
	if input.Pincode != nil {
		if err := validatePincode(*input.Pincode); err != nil {
			return nil, err
		}
		location.Pincode = strings.TrimSpace(*input.Pincode)
	}
	if input.Lat != nil {
		location.Lat = input.Lat
	}
	if input.Lng != nil {
		location.Lng = input.Lng
	}
	if input.IsActive != nil {
		location.IsActive = *input.IsActive
	}
	if input.DeliveryDays != nil {
		if *input.DeliveryDays < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery days must not be negative")
		}
		location.DeliveryDays = *input.DeliveryDays
	}
	if input.CODAvailable != nil {
		location.CODAvailable = *input.CODAvailable
	}
	if input.ExtraShippingCharge != nil {
		if input.ExtraShippingCharge.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "extra shipping charge must not be negative")
		}
		location.ExtraShippingCharge = *input.ExtraShippingCharge
	}

	if err := s.repo.Save(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving location")
	}
	return location, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading location")
	}
	if location == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return location, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Location], error) {
	records, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.Location]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing locations")
	}
	return pagination.NewPage(records, params, total), nil
}

func (s *service) CheckPincode(ctx context.Context, pincode string) (*Serviceability, error) {
	if err := validatePincode(pincode); err != nil {
		return nil, err
	}
	location, err := s.repo.FindFirstActiveByPincode(ctx, strings.TrimSpace(pincode))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving pincode")
	}
	if location == nil {
		return &Serviceability{Pincode: strings.TrimSpace(pincode)}, nil
	}
	return &Serviceability{
		Pincode:             location.Pincode,
		Serviceable:         true,
		DeliveryDays:        location.DeliveryDays,
		CODAvailable:        location.CODAvailable,
		ExtraShippingCharge: location.ExtraShippingCharge,
	}, nil
}

func (s *service) ResolvePincode(ctx context.Context, pincode string) (*models.Location, error) {
	if err := validatePincode(pincode); err != nil {
		return nil, err
	}
	location, err := s.repo.FindFirstActiveByPincode(ctx, strings.TrimSpace(pincode))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving pincode")
	}
	if location == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery is not available for this pincode").
			WithDetails(map[string]any{"pincode": strings.TrimSpace(pincode)})
	}
	return location, nil
}

func validatePincode(pincode string) error {
	if !pincodePattern.MatchString(strings.TrimSpace(pincode)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "pincode must be a 6 digit code")
	}
	return nil
}
