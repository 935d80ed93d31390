// Package testdb opens a migrated sqlite database for package tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/abdout/souq/configs"
	"github.com/abdout/souq/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a fresh database in t.TempDir(). One connection only, so
// concurrent writers queue instead of failing with SQLITE_BUSY.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, configs.Migrate(db))
	return db
}

// ----- fixtures -----

func Tenant(t testing.TB, db *gorm.DB, slug string, mut ...func(*entity.Tenant)) *entity.Tenant {
	t.Helper()
	tn := &entity.Tenant{
		Name:                   slug,
		Slug:                   slug,
		BusinessType:           entity.BusinessRestaurant,
		Email:                  slug + "@merchant.test",
		Lat:                    24.7136,
		Lng:                    46.6753,
		DeliveryRadius:         10,
		MinimumOrder:           decimal.NewFromInt(20),
		DeliveryFee:            decimal.NewFromInt(3),
		OperatingHours:         datatypes.NewJSONType(entity.WeeklyHours{}),
		IsActive:               true,
		StripeAccountID:        "acct_" + slug,
		StripeDetailsSubmitted: true,
	}
	for _, m := range mut {
		m(tn)
	}
	require.NoError(t, db.Create(tn).Error)
	return tn
}

func Item(t testing.TB, db *gorm.DB, tenantID uint, name string, price float64, mut ...func(*entity.Item)) *entity.Item {
	t.Helper()
	it := &entity.Item{
		Name:         name,
		Price:        decimal.NewFromFloat(price),
		BusinessType: entity.ItemFood,
		Unit:         "piece",
		IsAvailable:  true,
		TenantID:     tenantID,
	}
	for _, m := range mut {
		m(it)
	}
	// is_available มี default:true gorm จะข้ามค่า false ตอน create แล้วเขียน true กลับเข้า struct
	available := it.IsAvailable
	require.NoError(t, db.Create(it).Error)
	if !available {
		require.NoError(t, db.Model(it).Update("is_available", false).Error)
		it.IsAvailable = false
	}
	return it
}

func User(t testing.TB, db *gorm.DB, email string, tenantID *uint) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, Password: "x", FirstName: "Test", LastName: "User", Role: entity.RoleUser, TenantID: tenantID}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Tracked(qty int) func(*entity.Item) {
	return func(i *entity.Item) {
		i.TrackInventory = true
		i.Inventory = qty
	}
}
