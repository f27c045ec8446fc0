package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/domain"
)

// RunStoreContract verifies that a RunStore implementation adheres to the
// interface contract. Adapter packages call it from their own tests so that
// memory and Redis stores stay behaviorally identical.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		run := &domain.TestRun{
			ID:        runID,
			StartedAt: time.Now().UTC().Truncate(time.Second),
			Results: []domain.TestResult{
				{Name: "greeting", Status: domain.StatusPass, NodeTrace: []string{"start", "end"}},
			},
		}
		run.Seal()

		require.NoError(t, store.Save(ctx, run))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, loaded.ID)
		assert.Equal(t, 1, loaded.Passed)
		require.Len(t, loaded.Results, 1)
		assert.Equal(t, []string{"start", "end"}, loaded.Results[0].NodeTrace)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, runID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "nope-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, runID))
		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})
}
