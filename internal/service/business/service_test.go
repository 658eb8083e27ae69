package business

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/domain"
	apperrors "github.com/azhar1598/xplore-be/pkg/errors"
)

type fakeSynth struct {
	insight *domain.BusinessInsight
	err     error
	calls   int
}

func (f *fakeSynth) GetBusinessInsights(_ context.Context, name string) (*domain.BusinessInsight, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.insight
	return &out, nil
}

type memoryStore struct {
	records   []domain.InsightRecord
	findErr   error
	insertErr error
}

func (m *memoryStore) FindLatest(_ context.Context, owner, name string) (*domain.InsightRecord, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].OwnerID == owner && m.records[i].BusinessName == name {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Insert(_ context.Context, record domain.InsightRecord) (*domain.InsightRecord, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	record.CreatedAt = time.Now()
	m.records = append(m.records, record)
	return &record, nil
}

func (m *memoryStore) ListHistory(_ context.Context, filter domain.HistoryFilter) ([]domain.InsightRecord, error) {
	out := make([]domain.InsightRecord, 0)
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if filter.OwnerID != "" && r.OwnerID != filter.OwnerID {
			continue
		}
		if filter.BusinessName != "" && r.BusinessName != filter.BusinessName {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func sampleInsight() *domain.BusinessInsight {
	return &domain.BusinessInsight{
		BusinessName:      "Mobile Repair",
		Licenses:          []string{"Shop Act"},
		YoutubeVideo:      "https://www.youtube.com/embed/abc123",
		BusinessThumbnail: "https://images.example/medium/xyz.jpg",
	}
}

func TestGetInsightsSynthesizesAndStores(t *testing.T) {
	synth := &fakeSynth{insight: sampleInsight()}
	store := &memoryStore{}
	svc := NewService(synth, store, zap.NewNop())

	res, err := svc.GetInsights(context.Background(), "user-1", "mobile repair")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAPI, res.Source)
	assert.Equal(t, "Mobile Repair", res.Data.BusinessName)
	assert.Equal(t, 1, synth.calls)
	require.Len(t, store.records, 1)
	assert.Equal(t, "user-1", store.records[0].OwnerID)
	assert.Equal(t, "mobile repair", store.records[0].BusinessName)
	assert.Equal(t, *res.Data, store.records[0].Insight)
}

func TestGetInsightsPrefersStoredRecord(t *testing.T) {
	synth := &fakeSynth{insight: sampleInsight()}
	store := &memoryStore{}
	svc := NewService(synth, store, zap.NewNop())

	_, err := svc.GetInsights(context.Background(), "user-1", "mobile repair")
	require.NoError(t, err)

	res, err := svc.GetInsights(context.Background(), "user-1", "mobile repair")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCache, res.Source)
	assert.Equal(t, 1, synth.calls)
	assert.Len(t, store.records, 1)
}

func TestGetInsightsIsScopedPerOwner(t *testing.T) {
	synth := &fakeSynth{insight: sampleInsight()}
	store := &memoryStore{}
	svc := NewService(synth, store, zap.NewNop())

	_, err := svc.GetInsights(context.Background(), "user-1", "bakery")
	require.NoError(t, err)
	res, err := svc.GetInsights(context.Background(), "user-2", "bakery")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceAPI, res.Source)
	assert.Equal(t, 2, synth.calls)
}

func TestGetInsightsValidation(t *testing.T) {
	svc := NewService(&fakeSynth{insight: sampleInsight()}, &memoryStore{}, zap.NewNop())

	tests := map[string]struct {
		owner, name, field string
	}{
		"blank name":  {owner: "user-1", name: "  ", field: "name"},
		"blank owner": {owner: "", name: "bakery", field: "userId"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.GetInsights(context.Background(), tt.owner, tt.name)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestGetInsightsSynthesisFailureStoresNothing(t *testing.T) {
	synth := &fakeSynth{err: apperrors.NewProviderError("text down", "text", errors.New("timeout"))}
	store := &memoryStore{}
	svc := NewService(synth, store, zap.NewNop())

	_, err := svc.GetInsights(context.Background(), "user-1", "bakery")
	assert.True(t, apperrors.IsProviderUnavailable(err))
	assert.Empty(t, store.records)
}

func TestGetInsightsStoreErrors(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		synth := &fakeSynth{insight: sampleInsight()}
		store := &memoryStore{findErr: apperrors.NewStoreError("down", "find_latest", errors.New("conn"))}
		_, err := NewService(synth, store, zap.NewNop()).GetInsights(context.Background(), "u", "b")
		require.Error(t, err)
		assert.Equal(t, 0, synth.calls)
	})
	t.Run("insert", func(t *testing.T) {
		synth := &fakeSynth{insight: sampleInsight()}
		store := &memoryStore{insertErr: apperrors.NewStoreError("down", "insert", errors.New("conn"))}
		_, err := NewService(synth, store, zap.NewNop()).GetInsights(context.Background(), "u", "b")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeDatabase, apperrors.Code(err))
	})
}

func TestHistory(t *testing.T) {
	store := &memoryStore{records: []domain.InsightRecord{
		{OwnerID: "u1", BusinessName: "a"},
		{OwnerID: "u2", BusinessName: "a"},
		{OwnerID: "u1", BusinessName: "b"},
	}}
	svc := NewService(&fakeSynth{}, store, zap.NewNop())

	records, err := svc.History(context.Background(), domain.HistoryFilter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].BusinessName)
}
