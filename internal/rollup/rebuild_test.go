package rollup

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	core "github.com/macrolog-lab/macrolog/internal/core/rollup"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

func TestRebuildAll_RecomputesEveryLayer(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	rebuilder := NewRebuilder(store, fixedEngine(), 2)

	// Entries spread over two weeks and two months.
	mustInsert(t, store,
		testEntry("a", v1.NewDate(2025, time.January, 6), "500"),
		testEntry("b", v1.NewDate(2025, time.January, 7), "700"),
		testEntry("c", v1.NewDate(2025, time.February, 3), "900"),
	)

	// A stale bucket left over from drift must be wiped, not merged.
	require.NoError(t, store.UpsertBucket(ctx, "", core.Daily, v1.NewDate(2024, time.June, 1), core.BucketValue{
		Calories: decimal.NewFromInt(12345),
		Count:    3,
	}))

	days, err := rebuilder.RebuildAll(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 3, days)

	_, err = store.GetBucket(ctx, "", core.Daily, v1.NewDate(2024, time.June, 1))
	require.ErrorIs(t, err, storage.ErrNotFound, "stale bucket should be wiped")

	daily, err := store.GetBucket(ctx, "", core.Daily, v1.NewDate(2025, time.January, 6))
	require.NoError(t, err)
	require.True(t, daily.Calories.Equal(decimal.NewFromInt(500)))

	weekly, err := store.GetBucket(ctx, "", core.Weekly, v1.NewDate(2025, time.January, 6))
	require.NoError(t, err)
	require.True(t, weekly.Calories.Equal(decimal.NewFromInt(600)))
	require.Equal(t, int64(2), weekly.Count)

	febWeekly, err := store.GetBucket(ctx, "", core.Weekly, v1.NewDate(2025, time.February, 3))
	require.NoError(t, err)
	require.True(t, febWeekly.Calories.Equal(decimal.NewFromInt(900)))

	janMonthly, err := store.GetBucket(ctx, "", core.Monthly, v1.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	require.True(t, janMonthly.Calories.Equal(decimal.NewFromInt(600)))

	febMonthly, err := store.GetBucket(ctx, "", core.Monthly, v1.NewDate(2025, time.February, 1))
	require.NoError(t, err)
	require.True(t, febMonthly.Calories.Equal(decimal.NewFromInt(900)))
}

func TestRebuildAll_MatchesIncrementalResult(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	engine := fixedEngine()
	dispatcher := NewDispatcher(engine)

	entries := []*v1.Entry{
		testEntry("a", v1.NewDate(2025, time.January, 6), "512.25"),
		testEntry("b", v1.NewDate(2025, time.January, 8), "433.5"),
		testEntry("c", v1.NewDate(2025, time.January, 8), "210"),
	}
	for _, e := range entries {
		mustInsert(t, store, e)
		require.NoError(t, dispatcher.EntryChanged(ctx, store, v1.ChangeEvent{Kind: v1.ChangeInsert, After: e}))
	}

	incremental, err := store.GetBucket(ctx, "", core.Weekly, v1.NewDate(2025, time.January, 6))
	require.NoError(t, err)

	_, err = NewRebuilder(store, engine, 0).RebuildAll(ctx, "")
	require.NoError(t, err)

	rebuilt, err := store.GetBucket(ctx, "", core.Weekly, v1.NewDate(2025, time.January, 6))
	require.NoError(t, err)
	require.Equal(t, incremental, rebuilt)
}

func TestRebuildAll_EmptyStore(t *testing.T) {
	store := storage.NewMemoryStore()
	days, err := NewRebuilder(store, fixedEngine(), 1).RebuildAll(context.Background(), "")
	require.NoError(t, err)
	require.Zero(t, days)
}

func TestDistinctKeys(t *testing.T) {
	days := []v1.Date{
		v1.NewDate(2025, time.January, 6),
		v1.NewDate(2025, time.January, 7),
		v1.NewDate(2025, time.January, 13),
	}
	weeks := distinctKeys(days, core.StartOfWeek)
	require.Equal(t, []v1.Date{
		v1.NewDate(2025, time.January, 6),
		v1.NewDate(2025, time.January, 13),
	}, weeks)

	months := distinctKeys(days, core.StartOfMonth)
	require.Equal(t, []v1.Date{v1.NewDate(2025, time.January, 1)}, months)
}
