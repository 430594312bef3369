package database

import (
	"context"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

var passingData = psychology.DecodedData{
	PersonalInfo: []int{1, 2, 3},
	Matrix: psychology.Matrix{
		{5, -2, 0, 0, 0},
		{1, -1, 0, 0, 0},
		{3, -4, 0, 0, 0},
		{7, 0, 0, 0, 0},
		{6, -3, 0, 0, 0},
	},
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.ToAppError(err)
	assert.Equal(t, apperrors.CategoryNotFound, appErr.Category)
	assert.Equal(t, errbuilder.CodeNotFound, appErr.ErrCode())
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result := NewTestResult("anna@example.com", "Anna Li", "W1sxXV1d", 95*time.Second, []string{"qa", " ", "berlin"})
	require.NoError(t, repo.SaveTestResult(ctx, result))
	assert.Equal(t, int64(1), result.ID)

	got, err := repo.GetTestResult(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.UID, got.UID)
	assert.Equal(t, "anna@example.com", got.Email)
	assert.Equal(t, "Anna Li", got.FullName)
	assert.Equal(t, "W1sxXV1d", got.TestResult)
	assert.Equal(t, 95*time.Second, got.Duration())
	assert.Equal(t, []string{"qa", "berlin"}, got.Tags)
	assert.WithinDuration(t, result.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = repo.GetTestResult(ctx, 42)
	requireNotFound(t, err)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		result := NewTestResult("", "member", "x", 0, nil)
		result.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.SaveTestResult(ctx, result))
	}

	tests := []struct {
		name    string
		limit   int
		offset  int
		wantIDs []int64
	}{
		{name: "default page", limit: 0, wantIDs: []int64{5, 4, 3, 2, 1}},
		{name: "limited", limit: 2, wantIDs: []int64{5, 4}},
		{name: "offset", limit: 2, offset: 2, wantIDs: []int64{3, 2}},
		{name: "past the end", limit: 10, offset: 10, wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := repo.ListTestResults(ctx, tt.limit, tt.offset)
			require.NoError(t, err)

			ids := make([]int64, 0, len(results))
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	count, err := repo.CountTestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRepository_DeleteAndPurge(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	old := NewTestResult("", "old", "x", 0, nil)
	old.CreatedAt = time.Now().UTC().AddDate(-2, 0, 0)
	require.NoError(t, repo.SaveTestResult(ctx, old))

	fresh := NewTestResult("", "fresh", "x", 0, nil)
	require.NoError(t, repo.SaveTestResult(ctx, fresh))

	extra := NewTestResult("", "extra", "x", 0, nil)
	require.NoError(t, repo.SaveTestResult(ctx, extra))

	require.NoError(t, repo.DeleteTestResult(ctx, extra.ID))
	requireNotFound(t, repo.DeleteTestResult(ctx, extra.ID))

	purged, err := repo.PurgeOlderThan(ctx, time.Now().AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.GetTestResult(ctx, old.ID)
	requireNotFound(t, err)
	_, err = repo.GetTestResult(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestResultService_Submit(t *testing.T) {
	service := NewResultService(newTestRepository(t), psychology.TestThreshold, psychology.DefaultDiff)
	ctx := context.Background()

	out, err := service.Submit(ctx, Submission{
		Email:    "bob@example.com",
		FullName: "Bob",
		Data:     passingData,
		Duration: time.Minute,
	})
	require.NoError(t, err)
	assert.True(t, out.Passed)
	require.NotNil(t, out.Stored)
	assert.Equal(t, out.Encoded, out.Stored.TestResult)

	failed, err := service.Submit(ctx, Submission{
		FullName: "Zero",
		Data:     psychology.DecodedData{PersonalInfo: []int{1}},
	})
	require.NoError(t, err)
	assert.False(t, failed.Passed)
	assert.Nil(t, failed.Stored, "failed tests are not stored")
	assert.NotEmpty(t, failed.Encoded)

	count, err := service.Repository().CountTestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = service.Submit(ctx, Submission{Data: psychology.DecodedData{PersonalInfo: []int{12}}})
	assert.Error(t, err, "personal info must be single digits")
}

func TestResultService_DecodeAndMembers(t *testing.T) {
	service := NewResultService(newTestRepository(t), psychology.TestThreshold, psychology.DefaultDiff)
	ctx := context.Background()

	out, err := service.Submit(ctx, Submission{FullName: "Kim", Data: passingData})
	require.NoError(t, err)

	broken := NewTestResult("", "Broken", "not-base64!", 0, nil)
	require.NoError(t, service.Repository().SaveTestResult(ctx, broken))

	listed, err := service.ListDecoded(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byName := map[string]DecodedResult{}
	for _, d := range listed {
		byName[d.FullName] = d
	}
	require.NotNil(t, byName["Kim"].Result)
	assert.Equal(t, "b1", byName["Kim"].Result.MainOctant.Code)
	assert.True(t, byName["Kim"].Passed)
	assert.Nil(t, byName["Broken"].Data)
	assert.Nil(t, byName["Broken"].Result)

	members, err := service.Members(ctx, []int64{out.Stored.ID})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int(out.Stored.ID), members[0].BaseID)
	assert.Equal(t, "Kim", members[0].Name)
	assert.Equal(t, passingData.Matrix, members[0].DecData.Matrix)

	_, err = service.Members(ctx, []int64{out.Stored.ID, 999})
	requireNotFound(t, err)

	_, err = service.Member(ctx, broken.ID)
	assert.Equal(t, apperrors.CategoryValidation, apperrors.ToAppError(err).Category)
}

func TestResultService_Purge(t *testing.T) {
	service := NewResultService(newTestRepository(t), psychology.TestThreshold, psychology.DefaultDiff)
	ctx := context.Background()

	old := NewTestResult("", "old", "x", 0, nil)
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -30)
	require.NoError(t, service.Repository().SaveTestResult(ctx, old))

	purged, err := service.Purge(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, purged, "zero retention keeps everything")

	purged, err = service.Purge(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("17")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := ParseID(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewDB_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := NewDB(dir)
	require.NoError(t, err)
	require.NoError(t, NewRepository(db).SaveTestResult(ctx, NewTestResult("", "Ola", "W1sxXV1d", time.Minute, nil)))
	require.NoError(t, db.Close())

	db, err = NewDB(dir)
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.QueryRow(`PRAGMA user_version`).Scan(&version))
	assert.Equal(t, len(migrations), version)

	count, err := NewRepository(db).CountTestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Contains(t, db.GetPoolStats(), "open_connections")
	_, err = db.GetPreparedStatement("unknown")
	assert.Error(t, err)
}
