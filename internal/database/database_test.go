package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"joblisting/internal/database"
	"joblisting/internal/database/dbtest"
)

func TestEnsureAdminIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	created, err := database.EnsureAdmin(ctx, db, "hash-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = database.EnsureAdmin(ctx, db, "hash-2")
	require.NoError(t, err)
	assert.False(t, created)

	var admin database.User
	require.NoError(t, db.Where("username = ?", database.AdminUsername).First(&admin).Error)
	assert.Equal(t, database.RoleAdmin, admin.Role)
	assert.Equal(t, "hash-1", admin.PasswordHash)
}

func TestSeedSampleJobsOnlyWhenEmpty(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	n, err := database.SeedSampleJobs(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(database.SampleJobs()), n)

	n, err = database.SeedSampleJobs(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	require.NoError(t, db.Model(&database.Job{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestUsernameUniqueIndexTranslatesDuplicate(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, db.Create(&database.User{Username: "alice", PasswordHash: "x", Role: database.RoleCustomer}).Error)
	err := db.Create(&database.User{Username: "alice", PasswordHash: "y", Role: database.RoleCustomer}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestOnlyOneActiveSessionPerUsername(t *testing.T) {
	db := dbtest.New(t)
	now := time.Now()

	require.NoError(t, db.Create(&database.Session{Username: "alice", LoginTime: now, IsActive: true}).Error)
	require.NoError(t, db.Create(&database.Session{Username: "alice", LoginTime: now, IsActive: false}).Error)

	err := db.Create(&database.Session{Username: "alice", LoginTime: now, IsActive: true}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, database.ParseLogLevel("silent"))
	assert.Equal(t, logger.Error, database.ParseLogLevel("ERROR"))
	assert.Equal(t, logger.Info, database.ParseLogLevel(" info "))
	assert.Equal(t, logger.Warn, database.ParseLogLevel("whatever"))
}
