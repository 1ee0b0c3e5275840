package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafestaff/logger"
	"cafestaff/testutil"
)

func TestReclaimIgnoresCallerCancellation(t *testing.T) {
	assets := testutil.NewAssets()
	assets.Put("old.png", testutil.PNG(t))
	s := NewCafeService(nil, assets, nil, logger.Nop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Nil(t, s.reclaim(ctx, "cafe.update", "old.png"))
	assert.False(t, assets.Has("old.png"))
	assert.Equal(t, []string{"old.png"}, assets.Deletes())
}

func TestReclaimMissingAssetIsNotAWarning(t *testing.T) {
	assets := testutil.NewAssets()
	s := NewCafeService(nil, assets, nil, logger.Nop(), 0)
	assert.Nil(t, s.reclaim(context.Background(), "cafe.delete", "gone.png"))
	assert.Nil(t, s.reclaim(context.Background(), "cafe.delete", ""))
	assert.Equal(t, []string{"gone.png"}, assets.Deletes())
}
