package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/shopkartlabs/shopkart-backend/internal/inventory"
	"github.com/shopkartlabs/shopkart-backend/internal/locations"
	"github.com/shopkartlabs/shopkart-backend/internal/products"
	"github.com/shopkartlabs/shopkart-backend/internal/users"
	"github.com/shopkartlabs/shopkart-backend/pkg/config"
	"github.com/shopkartlabs/shopkart-backend/pkg/db"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"github.com/shopkartlabs/shopkart-backend/pkg/security"
)

// Development seeding: an admin and a demo customer, two fulfillment
// locations, a small catalog and stock at each location. Safe to re-run;
// existing rows are left alone.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	exitOn(ctx, logg, "load config", err)

	if cfg.App.IsProd() {
		fmt.Fprintln(os.Stderr, "refusing to seed a prod database")
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(ctx, logg, "bootstrap database", err)
	defer dbClient.Close()

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)

	seedUser := func(email, first, last, password string, role enums.Role) {
		existing, err := userRepo.FindByEmail(ctx, email)
		exitOn(ctx, logg, "look up user", err)
		if existing != nil {
			return
		}
		hash, err := security.HashPassword(password, cfg.Password)
		exitOn(ctx, logg, "hash password", err)
		_, err = userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			FirstName:    first,
			LastName:     last,
			Role:         role,
		})
		exitOn(ctx, logg, "create user", err)
		logg.Info(logg.WithField(ctx, "email", email), "seeded user")
	}

	seedUser("admin@shopkart.in", "Admin", "User", "admin123", enums.RoleAdmin)
	seedUser("demo@shopkart.in", "Demo", "Customer", "demo1234", enums.RoleCustomer)

	locationsSvc, err := locations.NewService(locations.NewRepository(conn))
	exitOn(ctx, logg, "wire locations", err)

	seededLocations := make([]uuid.UUID, 0, 2)
	for _, input := range []locations.CreateInput{
		{Name: "Bengaluru FC", City: "Bengaluru", State: "Karnataka", Pincode: "560001", DeliveryDays: 2, CODAvailable: true},
		{Name: "Mumbai FC", City: "Mumbai", State: "Maharashtra", Pincode: "400001", DeliveryDays: 3, CODAvailable: false, ExtraShippingCharge: decimal.NewFromInt(40)},
	} {
		page, err := locationsSvc.List(ctx, locations.ListFilters{Pincode: input.Pincode}, paginationDefaults())
		exitOn(ctx, logg, "list locations", err)
		if page.TotalElements > 0 {
			seededLocations = append(seededLocations, page.Content[0].ID)
			continue
		}
		location, err := locationsSvc.Create(ctx, input)
		exitOn(ctx, logg, "create location", err)
		seededLocations = append(seededLocations, location.ID)
		logg.Info(logg.WithField(ctx, "pincode", input.Pincode), "seeded location")
	}

	productsSvc, err := products.NewService(products.NewRepository(conn))
	exitOn(ctx, logg, "wire products", err)

	seededProducts := make([]uuid.UUID, 0, 3)
	for _, input := range []products.CreateInput{
		{SKU: "SK-KET-001", Name: "Electric Kettle 1.5L", Category: "appliances", Price: decimal.NewFromInt(1499), MRP: decimal.NewFromInt(1999), TaxPercent: decimal.NewFromInt(18), CODAvailable: true, Returnable: true},
		{SKU: "SK-MUG-001", Name: "Ceramic Mug Set", Category: "kitchen", Price: decimal.NewFromInt(499), MRP: decimal.NewFromInt(699), TaxPercent: decimal.NewFromInt(12), CODAvailable: true, Returnable: true},
		{SKU: "SK-LMP-001", Name: "Desk Lamp", Category: "lighting", Price: decimal.NewFromInt(899), MRP: decimal.NewFromInt(1199), TaxPercent: decimal.NewFromInt(18), CODAvailable: false, Returnable: true},
	} {
		product, err := productsSvc.Create(ctx, input)
		if err != nil {
			// Re-runs hit the SKU conflict; skip quietly.
			continue
		}
		seededProducts = append(seededProducts, product.ID)
		logg.Info(logg.WithField(ctx, "sku", input.SKU), "seeded product")
	}

	inventorySvc, err := inventory.NewService(dbClient, inventory.NewRepository(conn), cfg.Inventory.LowStockThreshold)
	exitOn(ctx, logg, "wire inventory", err)

	for _, productID := range seededProducts {
		for _, locationID := range seededLocations {
			_, err := inventorySvc.Upsert(ctx, inventory.UpsertInput{
				ProductID:  productID,
				LocationID: locationID,
				Stock:      50,
			})
			exitOn(ctx, logg, "seed inventory", err)
		}
	}

	logg.Info(ctx, "seed complete")
}

func paginationDefaults() pagination.Params {
	return pagination.Params{Page: 0, Size: 10}
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, step, err)
	os.Exit(1)
}
