package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

func TestFolderStore_CRUD(t *testing.T) {
	store := NewFolderStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Folder{ID: "2", Name: "Screenshots", Path: "/s"}))
	require.NoError(t, store.Save(ctx, domain.Folder{ID: "1", Name: "Camera", Path: "/c"}))

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Camera", got.Name)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Camera", list[0].Name)

	require.NoError(t, store.Delete(ctx, "1"))
	_, err = store.Get(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "1"), domain.ErrNotFound)
}

func TestFolderStore_Save_Validation(t *testing.T) {
	store := NewFolderStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, domain.Folder{Name: "x", Path: "/x"}), domain.ErrInvalidInput)

	require.NoError(t, store.Save(ctx, domain.Folder{ID: "1", Name: "a", Path: "/same"}))
	assert.ErrorIs(t, store.Save(ctx, domain.Folder{ID: "2", Name: "b", Path: "/same"}), domain.ErrAlreadyExists)

	// Updating the same folder keeps its path
	assert.NoError(t, store.Save(ctx, domain.Folder{ID: "1", Name: "renamed", Path: "/same"}))
}

func TestSentLedger(t *testing.T) {
	ledger := NewSentLedger()
	ctx := context.Background()

	sent, err := ledger.IsSent(ctx, "f1_photo_a.jpg")
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, ledger.MarkSent(ctx, "f1_photo_a.jpg"))
	require.NoError(t, ledger.MarkSent(ctx, "f1_video_b.mp4"))
	require.NoError(t, ledger.MarkSent(ctx, "f2_photo_c.jpg"))

	sent, err = ledger.IsSent(ctx, "f1_photo_a.jpg")
	require.NoError(t, err)
	assert.True(t, sent)

	n, err := ledger.ClearPrefix(ctx, "f1_")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sent, err = ledger.IsSent(ctx, "f2_photo_c.jpg")
	require.NoError(t, err)
	assert.True(t, sent)
}
