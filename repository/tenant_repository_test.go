package repository

import (
	"testing"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantRepository_Lookups(t *testing.T) {
	db := testdb.New(t)
	testdb.Tenant(t, db, "grill")
	testdb.Tenant(t, db, "green", func(tn *entity.Tenant) { tn.BusinessType = entity.BusinessGrocery })
	testdb.Tenant(t, db, "sleepy", func(tn *entity.Tenant) { tn.IsActive = false })
	repo := NewTenantRepository(db)

	got, err := repo.FindBySlug("grill")
	require.NoError(t, err)
	assert.Equal(t, "acct_grill", got.StripeAccountID)

	byAcct, err := repo.FindByStripeAccount("acct_green")
	require.NoError(t, err)
	assert.Equal(t, "green", byAcct.Slug)

	ok, err := repo.SlugExists("sleepy")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = repo.SlugExists("nope")
	assert.False(t, ok)

	active, err := repo.ListActive("")
	require.NoError(t, err)
	assert.Len(t, active, 2)

	grocers, total, err := repo.ListActivePaged(entity.BusinessGrocery, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "green", grocers[0].Slug)
}

func TestTenantRepository_HardDeleteKeepsSlugFree(t *testing.T) {
	db := testdb.New(t)
	tn := testdb.Tenant(t, db, "gone")
	repo := NewTenantRepository(db)

	n, err := repo.HardDelete(db, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := repo.SlugExists("gone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoryRepository_SlugScopedPerTenant(t *testing.T) {
	db := testdb.New(t)
	tn := testdb.Tenant(t, db, "shop")
	repo := NewCategoryRepository(db)

	require.NoError(t, repo.Create(&entity.Category{Name: "Meals", Slug: "meals", BusinessType: entity.BusinessRestaurant}))
	ok, err := repo.SlugExists("meals", &tn.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Create(&entity.Category{Name: "Meals", Slug: "meals", TenantID: &tn.ID, BusinessType: entity.BusinessRestaurant}))
	ok, _ = repo.SlugExists("meals", &tn.ID)
	assert.True(t, ok)

	global, err := repo.ListTopLevel(entity.BusinessRestaurant, nil)
	require.NoError(t, err)
	assert.Len(t, global, 1)

	withTenant, err := repo.ListTopLevel(entity.BusinessRestaurant, &tn.ID)
	require.NoError(t, err)
	assert.Len(t, withTenant, 2)
}
