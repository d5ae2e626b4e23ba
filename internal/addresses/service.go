package addresses

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"gorm.io/gorm"
)

var (
	addressPincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern          = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a customer's saved addresses. Every operation is scoped to
// the acting user; an address belonging to someone else reads as missing.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input Input) (*models.UserAddress, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.UserAddress, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	GetOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error)
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error)
}

// Input carries the full address payload for create and update.
type Input struct {
	Name      string
	Phone     string
	Line1     string
	Line2     *string
	Landmark  *string
	City      string
	State     string
	Pincode   string
	Country   string
	Type      string
	IsDefault bool
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires the address book service.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*models.UserAddress, error) {
	addressType, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	address := &models.UserAddress{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Line1:     strings.TrimSpace(input.Line1),
		Line2:     trimPtr(input.Line2),
		Landmark:  trimPtr(input.Landmark),
		City:      strings.TrimSpace(input.City),
		State:     strings.TrimSpace(input.State),
		Pincode:   strings.TrimSpace(input.Pincode),
		Country:   country(input.Country),
		Type:      addressType,
		IsDefault: input.IsDefault,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addresses")
		}
		// The first saved address always becomes the default.
		if len(existing) == 0 {
			address.IsDefault = true
		} else if address.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing default address")
			}
		}
		if err := repo.Create(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.UserAddress, error) {
	addressType, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	var address *models.UserAddress
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		address, err = s.findOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}

		address.Name = strings.TrimSpace(input.Name)
		address.Phone = strings.TrimSpace(input.Phone)
		address.Line1 = strings.TrimSpace(input.Line1)
		address.Line2 = trimPtr(input.Line2)
		address.Landmark = trimPtr(input.Landmark)
		address.City = strings.TrimSpace(input.City)
		address.State = strings.TrimSpace(input.State)
		address.Pincode = strings.TrimSpace(input.Pincode)
		address.Country = country(input.Country)
		address.Type = addressType

		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing default address")
			}
			address.IsDefault = true
		}

		if err := repo.Save(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		address, err := s.findOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, address.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting address")
		}
		return nil
	})
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addresses")
	}
	return records, nil
}

func (s *service) GetOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	return s.findOwned(ctx, s.repo, userID, addressID)
}

func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	var address *models.UserAddress
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		address, err = s.findOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if address.IsDefault {
			return nil
		}
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing default address")
		}
		address.IsDefault = true
		if err := repo.Save(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) findOwned(ctx context.Context, repo Repository, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	address, err := repo.FindByID(ctx, addressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
	}
	if address == nil || address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return address, nil
}

func validateInput(input Input) (enums.AddressType, error) {
	if strings.TrimSpace(input.Name) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !phonePattern.MatchString(strings.TrimSpace(input.Phone)) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "phone must be a 10 digit mobile number")
	}
	if strings.TrimSpace(input.Line1) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "line1 is required")
	}
	if strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.State) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "city and state are required")
	}
	if !addressPincodePattern.MatchString(strings.TrimSpace(input.Pincode)) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "pincode must be a 6 digit code")
	}

	addressType := enums.AddressTypeHome
	if strings.TrimSpace(input.Type) != "" {
		parsed, err := enums.ParseAddressType(input.Type)
		if err != nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid address type")
		}
		addressType = parsed
	}
	return addressType, nil
}

func country(value string) string {
	if strings.TrimSpace(value) == "" {
		return "IN"
	}
	return strings.ToUpper(strings.TrimSpace(value))
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
