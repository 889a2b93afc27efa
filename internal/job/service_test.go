package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joblisting/internal/database"
	"joblisting/internal/database/dbtest"
	"joblisting/internal/errcode"
)

func TestCreateListNewestFirst(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	first, err := svc.Create(ctx, Input{Title: "Engineer", Company: "Acme", Location: "Manila", Salary: "50000", Description: "desc"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, Input{Title: "Analyst", Company: "Data Inc", Location: "Makati", Salary: "60,000 PHP", Description: "numbers"})
	require.NoError(t, err)

	jobs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second, jobs[0].ID)
	assert.Equal(t, first, jobs[1].ID)
	assert.Equal(t, "60,000 PHP", jobs[0].Salary)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	id, err := svc.Create(ctx, Input{Title: "Engineer", Company: "Acme", Location: "Manila", Salary: "50000", Description: "desc"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, Input{Title: "Senior Engineer", Company: "Acme", Location: "BGC", Salary: "90000", Description: "lead"}))
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", got.Title)
	assert.Equal(t, "BGC", got.Location)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.Equal(t, errcode.KindNotFound, errcode.KindOf(err))
}

func TestMissingJob(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	err := svc.Update(ctx, 404, Input{Title: "x", Company: "x", Location: "x", Salary: "x", Description: "x"})
	assert.Equal(t, errcode.KindNotFound, errcode.KindOf(err))
	err = svc.Delete(ctx, 404)
	assert.Equal(t, errcode.KindNotFound, errcode.KindOf(err))
}

func TestDeleteKeepsApplicationSnapshot(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	ctx := context.Background()

	id, err := svc.Create(ctx, Input{Title: "Engineer", Company: "Acme", Location: "Manila", Salary: "50000", Description: "desc"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&database.Application{Username: "alice", JobTitle: "Engineer", Company: "Acme"}).Error)

	require.NoError(t, svc.Update(ctx, id, Input{Title: "Renamed", Company: "Other", Location: "x", Salary: "x", Description: "x"}))
	require.NoError(t, svc.Delete(ctx, id))

	var app database.Application
	require.NoError(t, db.First(&app).Error)
	assert.Equal(t, "Engineer", app.JobTitle)
	assert.Equal(t, "Acme", app.Company)
}

func TestSeedSampleJobs(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	n, err := svc.SeedSampleJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	jobs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 5)
	assert.Equal(t, "Network Administrator", jobs[0].Title)
}
