package repository

import (
	"regexp"
	"testing"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/testdb"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestDecrementStock_GuardedUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewItemRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items" SET "inventory"=inventory - $1 WHERE (id = $2 AND track_inventory = $3 AND inventory >= $4)`)).
		WithArgs(2, 5, true, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.DecrementStock(db, 5, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_NoRowsMeansShort(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewItemRepository(db)

	mock.ExpectExec(`UPDATE "items" SET "inventory"`).
		WithArgs(3, 5, true, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DecrementStock(db, 5, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_SQLite(t *testing.T) {
	db := testdb.New(t)
	tn := testdb.Tenant(t, db, "bakery")
	it := testdb.Item(t, db, tn.ID, "Croissant", 4, testdb.Tracked(2))
	untracked := testdb.Item(t, db, tn.ID, "Water", 1)
	repo := NewItemRepository(db)

	ok, err := repo.DecrementStock(db, it.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(db, it.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "must not go negative")

	ok, err = repo.DecrementStock(db, untracked.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(it.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Inventory)

	require.NoError(t, repo.RestoreStock(db, it.ID, 2))
	got, _ = repo.FindByID(it.ID)
	assert.Equal(t, 2, got.Inventory)
}

func TestLowStockCandidates(t *testing.T) {
	db := testdb.New(t)
	tn := testdb.Tenant(t, db, "pharma")
	testdb.Item(t, db, tn.ID, "own-threshold-low", 1, testdb.Tracked(4), func(i *entity.Item) { i.LowStockThreshold = 5 })
	testdb.Item(t, db, tn.ID, "own-threshold-ok", 1, testdb.Tracked(6), func(i *entity.Item) { i.LowStockThreshold = 5 })
	testdb.Item(t, db, tn.ID, "fallback-low", 1, testdb.Tracked(8))
	testdb.Item(t, db, tn.ID, "fallback-ok", 1, testdb.Tracked(30))
	testdb.Item(t, db, tn.ID, "untracked", 1)

	items, err := NewItemRepository(db).LowStockCandidates(tn.ID, 10)
	require.NoError(t, err)

	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"own-threshold-low", "fallback-low"}, names)
}

func TestSearch_FiltersAndSorts(t *testing.T) {
	db := testdb.New(t)
	a := testdb.Tenant(t, db, "alpha")
	b := testdb.Tenant(t, db, "beta", func(tn *entity.Tenant) { tn.BusinessType = entity.BusinessGrocery })
	closed := testdb.Tenant(t, db, "closed", func(tn *entity.Tenant) { tn.IsActive = false })

	burger := testdb.Item(t, db, a.ID, "Cheese Burger", 12)
	testdb.Item(t, db, a.ID, "Fries", 5)
	testdb.Item(t, db, b.ID, "Apples", 3, func(i *entity.Item) { i.BusinessType = entity.ItemGrocery })
	testdb.Item(t, db, b.ID, "Sold out milk", 2, testdb.Tracked(0), func(i *entity.Item) { i.BusinessType = entity.ItemGrocery })
	testdb.Item(t, db, a.ID, "Hidden", 9, func(i *entity.Item) { i.IsArchived = true })
	testdb.Item(t, db, a.ID, "Secret", 9, func(i *entity.Item) { i.IsPrivate = true })
	testdb.Item(t, db, closed.ID, "Closed shop burger", 9)

	repo := NewItemRepository(db)
	names := func(items []entity.Item) []string {
		out := []string{}
		for _, it := range items {
			out = append(out, it.Name)
		}
		return out
	}

	items, total, err := repo.Search(ItemFilter{Sort: "price-low", Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []string{"Sold out milk", "Apples", "Fries", "Cheese Burger"}, names(items))

	items, _, err = repo.Search(ItemFilter{Search: "BURGER", Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheese Burger"}, names(items))

	items, _, err = repo.Search(ItemFilter{TenantSlug: "beta", OnlyInStock: true, Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apples"}, names(items))

	min, max := decimal.NewFromInt(4), decimal.NewFromInt(10)
	items, _, err = repo.Search(ItemFilter{MinPrice: &min, MaxPrice: &max, Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fries"}, names(items))

	items, total, err = repo.Search(ItemFilter{Sort: "price-high", Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []string{"Sold out milk"}, names(items))

	u := testdb.User(t, db, "r@x.test", nil)
	require.NoError(t, db.Create(&entity.Review{UserID: u.ID, ItemID: burger.ID, Rating: 5}).Error)
	items, _, err = repo.Search(ItemFilter{Sort: "rating", Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheese Burger"}, names(items))
	assert.Equal(t, "alpha", items[0].Tenant.Slug)
}

func TestSearch_CategorySlugIncludesChildren(t *testing.T) {
	db := testdb.New(t)
	tn := testdb.Tenant(t, db, "shop")
	parent := entity.Category{Name: "Meals", Slug: "meals"}
	require.NoError(t, db.Create(&parent).Error)
	child := entity.Category{Name: "Burgers", Slug: "burgers", ParentID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)

	testdb.Item(t, db, tn.ID, "Burger", 10, func(i *entity.Item) { i.CategoryID = &child.ID })
	testdb.Item(t, db, tn.ID, "Plate", 10, func(i *entity.Item) { i.CategoryID = &parent.ID })
	testdb.Item(t, db, tn.ID, "Loose", 10)

	repo := NewItemRepository(db)
	_, total, err := repo.Search(ItemFilter{CategorySlug: "meals", Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = repo.Search(ItemFilter{CategorySlug: "burgers", Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestReviewStatsAndSoldCounts(t *testing.T) {
	db := testdb.New(t)
	tn := testdb.Tenant(t, db, "shop")
	it := testdb.Item(t, db, tn.ID, "Tea", 2)
	u1 := testdb.User(t, db, "a@x.test", nil)
	u2 := testdb.User(t, db, "b@x.test", nil)
	require.NoError(t, db.Create(&entity.Review{UserID: u1.ID, ItemID: it.ID, Rating: 4}).Error)
	require.NoError(t, db.Create(&entity.Review{UserID: u2.ID, ItemID: it.ID, Rating: 5}).Error)

	ok := entity.Order{Number: "A1", Status: entity.StatusDelivered, UserID: u1.ID, TenantID: tn.ID,
		Items: []entity.OrderItem{{ItemID: it.ID, Qty: 3}}}
	cancelled := entity.Order{Number: "A2", Status: entity.StatusCancelled, UserID: u1.ID, TenantID: tn.ID,
		Items: []entity.OrderItem{{ItemID: it.ID, Qty: 7}}}
	require.NoError(t, db.Create(&ok).Error)
	require.NoError(t, db.Create(&cancelled).Error)

	repo := NewItemRepository(db)
	stats, err := repo.ReviewStats([]uint{it.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats[it.ID].Count)
	assert.InDelta(t, 4.5, stats[it.ID].Average, 0.001)

	sold, err := repo.SoldCounts([]uint{it.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), sold[it.ID])
}
