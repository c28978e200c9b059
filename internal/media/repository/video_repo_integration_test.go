package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"renderbox/internal/media/domain"
	"renderbox/pkg/database"
	"renderbox/pkg/logger"
	testtool "renderbox/pkg/test_tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRepo(t *testing.T) VideoRepo {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	logger.SetNewNop()

	ctx := context.Background()
	container, host, port, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "postgres:16-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "renderbox",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	db, err := database.NewPGConnection(database.Connection{
		ConnectStr:    fmt.Sprintf("postgres://test:test@%s:%s/renderbox?sslmode=disable", host, port),
		RetryCount:    5,
		RetryInterval: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.ClosePG(db) })

	repo := NewVideoRepo(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func TestVideoRepo_Integration(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	t.Run("空表回傳空陣列", func(t *testing.T) {
		videos, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, videos)
		assert.Empty(t, videos)
	})

	first := &domain.Video{Title: "first", PublicID: "p-1", OriginalSize: 100, CompressedSize: 50, Duration: 3}
	second := &domain.Video{Title: "second", PublicID: "p-2", OriginalSize: 200, CompressedSize: 250, Duration: 4.5}

	t.Run("建立時由資料庫產生 id", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, first))
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, repo.Create(ctx, second))

		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.False(t, first.CreatedAt.IsZero())
	})

	t.Run("列表新的在前", func(t *testing.T) {
		videos, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, videos, 2)
		assert.Equal(t, "p-2", videos[0].PublicID)
		assert.Equal(t, "p-1", videos[1].PublicID)
		assert.Equal(t, int64(250), videos[0].CompressedSize)
	})

	t.Run("public id 不可重複", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Video{Title: "dup", PublicID: "p-1"})
		assert.Error(t, err)
	})

	t.Run("依 id 查詢", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Title)

		_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrVideoNotFound)

		_, err = repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrVideoNotFound)
	})
}
