package business

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/domain"
	"github.com/azhar1598/xplore-be/pkg/errors"
)

// Synthesizer produces a fresh (or short-term cached) insight for a business name.
type Synthesizer interface {
	GetBusinessInsights(ctx context.Context, businessName string) (*domain.BusinessInsight, error)
}

// RecordStore persists insights per owner.
type RecordStore interface {
	FindLatest(ctx context.Context, ownerID, businessName string) (*domain.InsightRecord, error)
	Insert(ctx context.Context, record domain.InsightRecord) (*domain.InsightRecord, error)
	ListHistory(ctx context.Context, filter domain.HistoryFilter) ([]domain.InsightRecord, error)
}

// Service answers insight requests for an owner, preferring a previously stored
// record over a new synthesis.
type Service struct {
	synth  Synthesizer
	store  RecordStore
	logger *zap.Logger
}

func NewService(synth Synthesizer, store RecordStore, logger *zap.Logger) *Service {
	return &Service{
		synth:  synth,
		store:  store,
		logger: logger,
	}
}

// GetInsights returns the latest stored record for (ownerID, businessName) with
// source "cache". Without one it synthesizes, stores and returns source "api".
func (s *Service) GetInsights(ctx context.Context, ownerID, businessName string) (*domain.InsightResult, error) {
	if strings.TrimSpace(businessName) == "" {
		return nil, errors.NewValidationError("Business name is required", "name", businessName)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, errors.NewValidationError("User id is required", "userId", ownerID)
	}

	existing, err := s.store.FindLatest(ctx, ownerID, businessName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug("Serving stored insight",
			zap.String("owner", ownerID),
			zap.String("business", businessName),
			zap.Time("created_at", existing.CreatedAt),
		)
		insight := existing.Insight
		return &domain.InsightResult{Source: domain.SourceCache, Data: &insight}, nil
	}

	insight, err := s.synth.GetBusinessInsights(ctx, businessName)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Insert(ctx, domain.InsightRecord{
		OwnerID:      ownerID,
		BusinessName: businessName,
		Insight:      *insight,
	}); err != nil {
		return nil, err
	}

	return &domain.InsightResult{Source: domain.SourceAPI, Data: insight}, nil
}

// History lists stored records newest first.
func (s *Service) History(ctx context.Context, filter domain.HistoryFilter) ([]domain.InsightRecord, error) {
	return s.store.ListHistory(ctx, filter)
}
