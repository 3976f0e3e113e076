package book

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepositoryContract exercises behaviour every Repository must share.
// missingID must be syntactically valid for the backend but unused.
func testRepositoryContract(t *testing.T, repo Repository, missingID string) {
	ctx := context.Background()
	require.NoError(t, repo.DeleteAll(ctx))

	t.Run("create starts empty", func(t *testing.T) {
		b, err := repo.Create(ctx, "Dune")
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, "Dune", b.Title)
		assert.Equal(t, []Comment{}, b.Comments)
		assert.Zero(t, b.CommentCount)

		got, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	})

	t.Run("find by title allows duplicates", func(t *testing.T) {
		first, err := repo.Create(ctx, "Emma")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "Emma")
		require.NoError(t, err)

		found, err := repo.FindByTitle(ctx, "Emma")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, first.ID, found[0].ID)

		none, err := repo.FindByTitle(ctx, "emma")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("append comment", func(t *testing.T) {
		b, err := repo.Create(ctx, "Ulysses")
		require.NoError(t, err)

		_, err = repo.AppendComment(ctx, b.ID, "long")
		require.NoError(t, err)
		updated, err := repo.AppendComment(ctx, b.ID, "worth it")
		require.NoError(t, err)

		assert.Equal(t, []Comment{{Comment: "long"}, {Comment: "worth it"}}, updated.Comments)
		assert.Equal(t, 2, updated.CommentCount)
	})

	t.Run("concurrent appends keep count", func(t *testing.T) {
		b, err := repo.Create(ctx, "Middlemarch")
		require.NoError(t, err)

		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.AppendComment(ctx, b.ID, fmt.Sprintf("c%d", i))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, n, got.CommentCount)
		assert.Len(t, got.Comments, n)
	})

	t.Run("unknown and malformed ids are not found", func(t *testing.T) {
		for _, id := range []string{missingID, "not-an-id", "", "123"} {
			_, err := repo.GetByID(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound, id)

			_, err = repo.AppendComment(ctx, id, "x")
			assert.ErrorIs(t, err, ErrNotFound, id)

			assert.ErrorIs(t, repo.DeleteByID(ctx, id), ErrNotFound, id)
		}
	})

	t.Run("delete by id", func(t *testing.T) {
		b, err := repo.Create(ctx, "Beloved")
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, b.ID))
		_, err = repo.GetByID(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.DeleteByID(ctx, b.ID), ErrNotFound)
	})

	t.Run("delete all", func(t *testing.T) {
		require.NoError(t, repo.DeleteAll(ctx))
		books, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
