package ai

import (
	"context"

	"github.com/azhar1598/xplore-be/internal/prompt"
	"github.com/azhar1598/xplore-be/pkg/errors"
	"go.uber.org/zap"
)

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

// InsightGenerator turns a business name into the raw generated insight text.
type InsightGenerator struct {
	generator textGenerator
	logger    *zap.Logger
}

func NewInsightGenerator(generator textGenerator, logger *zap.Logger) *InsightGenerator {
	return &InsightGenerator{
		generator: generator,
		logger:    logger,
	}
}

func (g *InsightGenerator) GenerateInsightText(ctx context.Context, businessName string) (string, error) {
	text, err := prompt.BuildBusinessInsightPrompt(businessName)
	if err != nil {
		return "", errors.NewValidationError("Business name is required", "name", businessName)
	}

	raw, meta, err := g.generator.GenerateText(ctx, text, &GenerateOptions{
		Preset:   PresetBalanced,
		JSONMode: true,
	})
	if err != nil {
		return "", err
	}

	g.logger.Debug("Insight text generated",
		zap.String("business", businessName),
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
		zap.Bool("fallback", meta.UsedFallback),
	)
	return raw, nil
}
