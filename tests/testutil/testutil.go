package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the plain-text password of every user created by CreateUser
const TestPassword = "correct-horse-battery"

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// OpenTestDB opens a migrated in-memory SQLite database that lives for the test.
// A single connection keeps every query on the same in-memory database.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with role and TestPassword as password
func CreateUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()

	hash, err := services.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		Phone:        "0912345678",
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateStore inserts an active pickup store
func CreateStore(t *testing.T, db *gorm.DB, name string) models.Store {
	t.Helper()

	store := models.Store{
		Name:         name,
		Address:      "1 Main Street",
		Phone:        "02-1234-5678",
		OpeningHours: "10:00-22:00",
		Active:       true,
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// CreateAddress inserts a delivery address owned by userID
func CreateAddress(t *testing.T, db *gorm.DB, userID uint) models.Address {
	t.Helper()

	address := models.Address{
		UserID:    userID,
		Recipient: "Test Recipient",
		Phone:     "0912345678",
		Line1:     "2 Side Road",
		City:      "Taipei",
		IsDefault: true,
	}
	if err := db.Create(&address).Error; err != nil {
		t.Fatalf("failed to create address: %v", err)
	}
	return address
}

// CreateProduct inserts an available product priced priceM for size M and priceL for size L.
// A priceL of zero leaves size L unavailable.
func CreateProduct(t *testing.T, db *gorm.DB, name string, priceM, priceL int64) models.Product {
	t.Helper()

	product := models.Product{
		Name:         name,
		Category:     "tea",
		PriceM:       decimal.NewFromInt(priceM),
		PriceL:       decimal.NewFromInt(priceL),
		SugarOptions: []string{"0%", "50%", "100%"},
		IceOptions:   []string{"none", "less", "normal"},
		Available:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

// CreateTopping inserts an available topping
func CreateTopping(t *testing.T, db *gorm.DB, name string, price int64) models.Topping {
	t.Helper()

	topping := models.Topping{
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Available: true,
	}
	if err := db.Create(&topping).Error; err != nil {
		t.Fatalf("failed to create topping: %v", err)
	}
	return topping
}
