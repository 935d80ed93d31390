package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(gorm.ErrRecordNotFound))
	assert.Equal(t, NotFound, KindOf(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)))
	assert.Equal(t, Forbidden, KindOf(New(Forbidden, "nope")))
	assert.Equal(t, BadRequest, KindOf(fmt.Errorf("wrapped: %w", BadRequestf("qty %d", 3))))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestMessageHidesInternalDetails(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("dial tcp 10.0.0.1: refused")))
	assert.Equal(t, "tenant not found", Message(NotFoundf("tenant not found")))
	assert.Equal(t, "not found", Message(gorm.ErrRecordNotFound))
}

func TestFromDB(t *testing.T) {
	assert.NoError(t, FromDB(nil, "x"))

	err := FromDB(gorm.ErrRecordNotFound, "item not found")
	assert.True(t, Is(err, NotFound))
	assert.Equal(t, "item not found", Message(err))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.True(t, Is(FromDB(errors.New("disk full"), "x"), Internal))

	forbidden := Forbiddenf("no")
	assert.Same(t, forbidden, FromDB(forbidden, "x"))
}
