package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAssetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := folioplan.Asset{ID: "X", Category: folioplan.CategorySecurity, Name: "World ETF", Ticker: "WRLD"}
	require.NoError(t, s.SaveAsset(ctx, a))

	assets, err := s.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, a, assets[0])

	// update keeps the id, replaces the rest
	a.Name = "World ETF (acc)"
	require.NoError(t, s.SaveAsset(ctx, a))
	assets, err = s.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "World ETF (acc)", assets[0].Name)

	require.NoError(t, s.DeleteAsset(ctx, "X"))
	assets, err = s.ListAssets(ctx)
	require.NoError(t, err)
	assert.Empty(t, assets)

	assert.ErrorIs(t, s.DeleteAsset(ctx, "X"), ErrNotFound)
}

func TestSaveAsset_RejectsBadInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.SaveAsset(ctx, folioplan.Asset{Category: folioplan.CategorySecurity}))
	assert.Error(t, s.SaveAsset(ctx, folioplan.Asset{ID: "X", Category: "house"}))
}

func TestPolicyVersionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v := &folioplan.PolicyVersion{
		ID:        "v1",
		Name:      "2024 allocation",
		Rationale: "## Why\nMore equity.",
		StartDate: date.MustParse("2024-01-15"),
		Status:    folioplan.StatusActive,
		Layers: []folioplan.Layer{
			{ID: "l1", Name: "Growth", GlobalWeight: 60, Targets: []folioplan.Target{
				{ID: "t1", AssetID: "X", Name: "World ETF", IntraWeight: 70, Color: "#336699"},
				{ID: "t2", AssetID: "Y", Name: "EM ETF", IntraWeight: folioplan.AutoWeight},
			}},
			{ID: "l2", Name: "Safety", GlobalWeight: 40, Targets: []folioplan.Target{
				{ID: "t3", AssetID: "Z", Name: "Savings", IntraWeight: 100},
			}},
		},
	}
	require.NoError(t, s.SavePolicyVersion(ctx, v))

	versions, err := s.ListPolicyVersions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, v, versions[0])

	got, err := s.GetPolicyVersion(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "2024 allocation", got.Name)

	_, err = s.GetPolicyVersion(ctx, "v9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavePolicyVersion_ReplacesHierarchy(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v := &folioplan.PolicyVersion{
		ID: "v1", Name: "v1", StartDate: date.MustParse("2024-01-01"), Status: folioplan.StatusActive,
		Layers: []folioplan.Layer{
			{ID: "l1", Name: "Growth", GlobalWeight: 100, Targets: []folioplan.Target{
				{ID: "t1", AssetID: "X", Name: "X", IntraWeight: 100},
			}},
		},
	}
	require.NoError(t, s.SavePolicyVersion(ctx, v))

	v.Layers = []folioplan.Layer{
		{ID: "l2", Name: "Balanced", GlobalWeight: 100, Targets: []folioplan.Target{
			{ID: "t2", AssetID: "Y", Name: "Y", IntraWeight: 100},
		}},
	}
	require.NoError(t, s.SavePolicyVersion(ctx, v))

	got, err := s.GetPolicyVersion(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, got.Layers, 1)
	assert.Equal(t, "l2", got.Layers[0].ID)
}

func TestSavePolicyVersion_RejectsDuplicateAssets(t *testing.T) {
	s := openTestStore(t)

	v := &folioplan.PolicyVersion{
		ID: "v1", Name: "v1", StartDate: date.MustParse("2024-01-01"), Status: folioplan.StatusActive,
		Layers: []folioplan.Layer{
			{ID: "l1", Name: "A", GlobalWeight: 50, Targets: []folioplan.Target{
				{ID: "t1", AssetID: "X", IntraWeight: 100},
			}},
			{ID: "l2", Name: "B", GlobalWeight: 50, Targets: []folioplan.Target{
				{ID: "t2", AssetID: "X", IntraWeight: 100},
			}},
		},
	}
	err := s.SavePolicyVersion(context.Background(), v)
	assert.ErrorIs(t, err, ErrDuplicateTarget)
}

func testSnapshot(m string) *folioplan.Snapshot {
	snap := &folioplan.Snapshot{
		ID:    "snap-" + m,
		Month: date.MustParseMonth(m),
		Records: []folioplan.HoldingRecord{
			{
				AssetID:        "X",
				Name:           "World ETF",
				Category:       folioplan.CategorySecurity,
				UnitPrice:      folioplan.A(101.5, ""),
				Quantity:       folioplan.Q(10),
				MarketValue:    folioplan.A(1015, ""),
				TotalCost:      folioplan.A(1000, ""),
				AddedQuantity:  folioplan.Q(10),
				AddedPrincipal: folioplan.A(1000, ""),
			},
		},
	}
	snap.RecomputeTotals()
	return snap
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := testSnapshot("2024-02")
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	history, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	got := history[0]
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.Month, got.Month)
	require.Len(t, got.Records, 1)
	assert.True(t, got.Records[0].UnitPrice.Equal(folioplan.A(101.5, "")))
	assert.True(t, got.TotalValue.Equal(folioplan.A(1015, "")))

	summaries, err := s.ListSnapshotSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].TotalInvested.Equal(folioplan.A(1000, "")))

	byMonth, err := s.GetSnapshot(ctx, date.MustParseMonth("2024-02"))
	require.NoError(t, err)
	assert.Equal(t, snap.ID, byMonth.ID)

	_, err = s.GetSnapshot(ctx, date.MustParseMonth("2030-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveSnapshot_OnePerMonth(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("2024-02")))

	// a different id for the same month replaces the existing snapshot
	other := testSnapshot("2024-02")
	other.ID = "snap-other"
	require.NoError(t, s.SaveSnapshot(ctx, other))

	history, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "snap-other", history[0].ID)
}

func TestSnapshots_SortedChronologically(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, m := range []string{"2024-03", "2023-12", "2024-01"} {
		require.NoError(t, s.SaveSnapshot(ctx, testSnapshot(m)))
	}
	history, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2023-12", history[0].Month.String())
	assert.Equal(t, "2024-03", history[2].Month.String())
}

func TestCacheInvalidatedAfterWrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// prime the cache
	_, err := s.ListAssets(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SaveAsset(ctx, folioplan.Asset{ID: "X", Category: folioplan.CategoryFund, Name: "F"}))

	assets, err := s.ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 1, "cache must be invalidated by writes")
}

func TestDeleteSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("2024-02")))
	require.NoError(t, s.DeleteSnapshot(ctx, date.MustParseMonth("2024-02")))
	assert.ErrorIs(t, s.DeleteSnapshot(ctx, date.MustParseMonth("2024-02")), ErrNotFound)
}
