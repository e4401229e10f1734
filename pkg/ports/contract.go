package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/complog/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunArchiveStoreContract runs a suite of tests to verify that an ArchiveStore implementation
// adheres to the defined interface contract.
func RunArchiveStoreContract(t *testing.T, store ArchiveStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	doc := []byte(`{"type":"Session","logs":[{"type":"Log","timestamp":1.5,"text":"hello"}]}`)

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, sessionID, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.JSONEq(t, string(doc), string(loaded))
	})

	t.Run("Save overwrites", func(t *testing.T) {
		replacement := []byte(`{"type":"Session","logs":[]}`)
		require.NoError(t, store.Save(ctx, sessionID, replacement))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.JSONEq(t, string(replacement), string(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrArchiveNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, doc))

		err := store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrArchiveNotFound, "Load after Delete should return ErrArchiveNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete of unknown ID should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "/with spaces"
		require.NoError(t, store.Save(ctx, id1, doc))
		require.NoError(t, store.Save(ctx, id2, doc))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
