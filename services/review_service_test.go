package services

import (
	"testing"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "reviewed")
	it := testdb.Item(t, e.db, tn.ID, "Falafel", 3)
	alice := customer(t, e, "alice@test.io")
	bob := customer(t, e, "bob@test.io")
	lurker := customer(t, e, "lurker@test.io")
	placeOrder(t, e, alice, "reviewed", it.ID, 1)
	placeOrder(t, e, bob, "reviewed", it.ID, 1)
	svc := NewReviewService(e.reviews, e.items, e.orders, e.log)

	_, err := svc.Submit(alice, it.ID, &ReviewInput{Rating: 6})
	requireKind(t, err, apperr.BadRequest)
	_, err = svc.Submit(lurker, it.ID, &ReviewInput{Rating: 5})
	requireKind(t, err, apperr.BadRequest)
	_, err = svc.Submit(alice, 4242, &ReviewInput{Rating: 5})
	requireKind(t, err, apperr.NotFound)

	first, err := svc.Submit(alice, it.ID, &ReviewInput{Rating: 2, Comment: " cold "})
	require.NoError(t, err)
	assert.Equal(t, "cold", first.Comment)

	again, err := svc.Submit(alice, it.ID, &ReviewInput{Rating: 5, Comment: "better today"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 5, again.Rating)

	_, err = svc.Submit(bob, it.ID, &ReviewInput{Rating: 4})
	require.NoError(t, err)

	list, err := svc.List(it.ID)
	require.NoError(t, err)
	assert.Len(t, list.Reviews, 2)
	assert.EqualValues(t, 2, list.Stats.Count)
	assert.Equal(t, 4.5, list.Stats.Average)

	empty := testdb.Item(t, e.db, tn.ID, "New", 1)
	list, err = svc.List(empty.ID)
	require.NoError(t, err)
	assert.Zero(t, list.Stats.Average)

	var n int64
	e.db.Model(&entity.Review{}).Count(&n)
	assert.EqualValues(t, 2, n)
}
