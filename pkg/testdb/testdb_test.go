package testdb

import (
	"testing"

	"github.com/abdout/souq/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_UnavailableIsPersisted(t *testing.T) {
	db := New(t)
	tn := Tenant(t, db, "fixture-shop")

	off := Item(t, db, tn.ID, "Off menu", 3, func(i *entity.Item) { i.IsAvailable = false })
	assert.False(t, off.IsAvailable)

	var got entity.Item
	require.NoError(t, db.First(&got, off.ID).Error)
	assert.False(t, got.IsAvailable)

	on := Item(t, db, tn.ID, "Tea", 2)
	require.NoError(t, db.First(&got, on.ID).Error)
	assert.True(t, got.IsAvailable)
}
