package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStateGetNumberFallsBack(t *testing.T) {
	repo := NewSyncStateRepository()
	ctx := context.Background()

	// Absent key.
	n, err := repo.GetNumber(ctx, "import:next_page", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Garbage value.
	require.NoError(t, repo.SetState(ctx, "import:next_page", "not-a-number"))
	n, err = repo.GetNumber(ctx, "import:next_page", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Zero and negative cursors are invalid resume points.
	require.NoError(t, repo.SetState(ctx, "import:next_page", "0"))
	n, err = repo.GetNumber(ctx, "import:next_page", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.SetState(ctx, "import:next_page", "5"))
	n, err = repo.GetNumber(ctx, "import:next_page", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSyncStateLastSyncRoundTrip(t *testing.T) {
	repo := NewSyncStateRepository()
	ctx := context.Background()

	v, err := repo.GetLastSync(ctx, "stock:last_sync")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, repo.SetLastSync(ctx, "stock:last_sync", "15/01/2024 10:00:00"))
	v, err = repo.GetLastSync(ctx, "stock:last_sync")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "15/01/2024 10:00:00", *v)
}
