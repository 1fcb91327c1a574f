package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-ntfs/internal/testutil"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "volume.img")
	require.NoError(t, os.WriteFile(path, testutil.DefaultVolume().Bytes(), 0o600))
	return path
}

func TestOpenVolume(t *testing.T) {
	ctx := NewContext()
	vol, err := OpenVolume(ctx, ImageTarget{Path: writeImage(t)})
	require.NoError(t, err)
	defer vol.Close()

	assert.Equal(t, uint32(4096), vol.Geometry().ClusterSize())
}

func TestOpenVolumeTimeout(t *testing.T) {
	path := writeImage(t)

	t.Run("expired deadline", func(t *testing.T) {
		ctx := NewContext()
		parent, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		ctx.Context = parent

		_, err := OpenVolume(ctx, ImageTarget{Path: path})
		require.Error(t, err)

		var appErr *CommonError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, ErrCodeTimeout, appErr.Code)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("timeout disabled", func(t *testing.T) {
		ctx := NewContext()
		ctx.DefaultTimeout = 0

		vol, err := OpenVolume(ctx, ImageTarget{Path: path})
		require.NoError(t, err)
		assert.NoError(t, vol.Close())
	})
}
