package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-ai/comps-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	price := 5000.0
	item := model.ItemContext{Brand: "Omega", Model: "Speedmaster", Category: "watches"}
	comps := []model.Comp{{
		ID:             "c1",
		Source:         "ebay",
		Type:           model.ListingSold,
		Title:          "Omega Speedmaster Professional",
		Price:          &price,
		MatchType:      model.MatchBrandModelKeyword,
		RelevanceScore: 0.82,
		Validation:     &model.ValidationResult{IsValid: true, OverallScore: 0.82},
	}}
	check := &model.ValidationCheckResult{IsValid: true, Confidence: 1.0}

	created, err := s.CreateRun(ctx, item, comps, check)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetRun(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Omega", got.Item.Brand)
	require.Len(t, got.Comps, 1)
	assert.Equal(t, "c1", got.Comps[0].ID)
	require.NotNil(t, got.Comps[0].Validation)
	assert.InDelta(t, 0.82, got.Comps[0].Validation.OverallScore, 1e-9)
	require.NotNil(t, got.Check)
	assert.True(t, got.Check.IsValid)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_ListRuns_FilterReidentify(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.CreateRun(ctx, model.ItemContext{Brand: "A"}, nil, &model.ValidationCheckResult{IsValid: true})
	require.NoError(t, err)
	flagged, err := s.CreateRun(ctx, model.ItemContext{Brand: "B"}, nil, &model.ValidationCheckResult{ShouldReidentify: true})
	require.NoError(t, err)

	yes := true
	runs, err := s.ListRuns(ctx, RunFilter{ShouldReidentify: &yes})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, flagged.ID, runs[0].ID)

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteStore_ListRuns_NilCheck(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateRun(ctx, model.ItemContext{}, nil, nil)
	require.NoError(t, err)

	got, err := s.GetRun(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Check)
}
