package resume

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joblisting/internal/database"
	"joblisting/internal/database/dbtest"
	"joblisting/internal/errcode"
)

func TestUpsertThenFilled(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	ctx := context.Background()

	exists, err := svc.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	first, err := svc.Upsert(ctx, "alice", Content{Email: "a@x.com", Skills: "Go"})
	require.NoError(t, err)

	exists, err = svc.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
	filled, err := svc.Filled(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, filled)

	second, err := svc.Upsert(ctx, "alice", Content{FullName: "Alice A", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice A", second.FullName)
	assert.Empty(t, second.Skills)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	filled, err = svc.Filled(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, filled)

	var count int64
	require.NoError(t, db.Model(&database.Resume{}).Where("username = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetMissing(t *testing.T) {
	svc := NewService(dbtest.New(t))

	_, err := svc.Get(context.Background(), "nobody")
	assert.Equal(t, errcode.KindNotFound, errcode.KindOf(err))

	filled, err := svc.Filled(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, filled)
}

func TestIsFilledTrimsWhitespace(t *testing.T) {
	assert.False(t, IsFilled(database.Resume{FullName: "  ", Email: "a@x.com"}))
	assert.False(t, IsFilled(database.Resume{FullName: "Alice"}))
	assert.True(t, IsFilled(database.Resume{FullName: "Alice", Email: "a@x.com"}))
}

func TestContentOf(t *testing.T) {
	r := database.Resume{Username: "alice", FullName: "Alice", Summary: "Gopher"}
	assert.Equal(t, Content{FullName: "Alice", Summary: "Gopher"}, ContentOf(r))
}
