package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/azhar1598/xplore-be/internal/constants"
	"github.com/azhar1598/xplore-be/internal/util"
	"github.com/azhar1598/xplore-be/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ProviderName labels the text backend as a whole in errors and metrics.
const ProviderName = "text"

var (
	statusCodeRegex   = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodeRegex   = regexp.MustCompile(`"code":\s*(\d{3})`)
	leadingCodeRegex  = regexp.MustCompile(`^(\d{3})\s`)
	rateLimitKeywords = []string{"429", "Rate limit", "rate limit", "RESOURCE_EXHAUSTED", "quota"}
)

// ModelManager routes generation to Gemini, falls back to OpenAI when enabled,
// and trips a circuit breaker on repeated upstream service failures.
type ModelManager struct {
	primary        TextProvider
	fallback       TextProvider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	GeminiAPIKey       string
	OpenAIAPIKey       string
	DefaultGeminiModel string
	DefaultOpenAIModel string
	EnableFallback     bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	defaultGemini := cfg.DefaultGeminiModel
	if defaultGemini == "" {
		defaultGemini = "gemini-1.5-flash"
	}
	defaultOpenAI := cfg.DefaultOpenAIModel
	if defaultOpenAI == "" {
		defaultOpenAI = "gpt-4o-mini"
	}

	primary := NewGeminiProvider(geminiClient, defaultGemini, logger)

	var fallback TextProvider
	if cfg.EnableFallback {
		if openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, defaultOpenAI, logger); openaiProvider != nil {
			fallback = openaiProvider
			logger.Info("OpenAI fallback enabled", zap.String("model", defaultOpenAI))
		}
	}
	if fallback == nil {
		logger.Info("OpenAI fallback disabled")
	}

	return NewModelManagerWithProviders(primary, fallback, logger), nil
}

// NewModelManagerWithProviders assembles a manager from already-built providers.
// fallback may be nil.
func NewModelManagerWithProviders(primary, fallback TextProvider, logger *zap.Logger) *ModelManager {
	mm := &ModelManager{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
	mm.circuitBreaker = util.NewCircuitBreaker(
		"text-provider",
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)
	return mm
}

// GenerateText returns the raw text of the first backend that answers. Every
// failure is reported as a ProviderError.
func (mm *ModelManager) GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, *GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.Status()
		mm.logger.Error("Text provider unavailable (circuit open)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		)
		return "", nil, errors.NewProviderError("text provider circuit open", ProviderName, nil)
	}

	primaryResult, primaryErr := mm.invoke(ctx, mm.primary, prompt, opts)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return primaryResult.Text, &GenerateMetadata{Provider: mm.primary.Name(), Model: primaryResult.Model}, nil
	}

	if mm.fallback != nil && ctx.Err() == nil {
		mm.logger.Warn("Primary text provider failed, trying fallback",
			zap.String("primary", mm.primary.Name()),
			zap.Error(primaryErr),
		)
		fallbackResult, fallbackErr := mm.invoke(ctx, mm.fallback, prompt, opts)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			return fallbackResult.Text, &GenerateMetadata{
				Provider:     mm.fallback.Name(),
				Model:        fallbackResult.Model,
				UsedFallback: true,
			}, nil
		}
		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)
		return "", nil, errors.NewProviderError("text providers failed", ProviderName,
			stderrors.Join(primaryErr, fallbackErr))
	}

	mm.recordFailure(primaryErr)
	return "", nil, errors.NewProviderError("text provider failed", ProviderName, primaryErr)
}

func (mm *ModelManager) invoke(ctx context.Context, provider TextProvider, prompt string, opts *GenerateOptions) (ProviderResult, error) {
	if provider == nil {
		return ProviderResult{}, fmt.Errorf("model provider is not configured")
	}
	result, err := provider.Generate(ctx, prompt, opts)
	if err != nil {
		return ProviderResult{}, err
	}
	if strings.TrimSpace(result.Text) == "" {
		return ProviderResult{}, fmt.Errorf("%s returned empty response", provider.Name())
	}
	return result, nil
}

func (mm *ModelManager) recordFailure(err error) {
	if !isServiceFailure(err) {
		return
	}
	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	primaryOK := mm.primary != nil && mm.primary.Ping(ctx)
	fallbackOK := mm.fallback != nil && mm.fallback.Ping(ctx)

	mm.logger.Info("Text provider health check",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
	)
	return primaryOK || fallbackOK
}

func (mm *ModelManager) CircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.Status()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

// isServiceFailure reports upstream-side failures (timeouts, 5xx, rate limits)
// as opposed to request problems the breaker should ignore.
func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}
	if code, ok := upstreamCode(msg); ok {
		return code >= 500 && code < 600
	}
	return statusCodeRegex.MatchString(msg)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if code, ok := upstreamCode(msg); ok && code == 429 {
		return true
	}
	for _, kw := range rateLimitKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func upstreamCode(msg string) (int, bool) {
	for _, re := range []*regexp.Regexp{geminiCodeRegex, leadingCodeRegex} {
		if m := re.FindStringSubmatch(msg); len(m) > 1 {
			if code, err := strconv.Atoi(m[1]); err == nil {
				return code, true
			}
		}
	}
	return 0, false
}
