package youtube

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/azhar1598/xplore-be/internal/constants"
	"github.com/azhar1598/xplore-be/internal/util"
	"github.com/azhar1598/xplore-be/pkg/errors"
)

const (
	providerName = "youtube"
	embedBaseURL = "https://www.youtube.com/embed/"
	querySuffix  = "-business"
)

// Service finds a representative video for a business name through the
// YouTube Data API while keeping a local view of the daily quota.
type Service struct {
	service    *youtube.Service
	logger     *zap.Logger
	quotaUsed  int
	quotaReset time.Time
	quotaMu    sync.Mutex
	now        func() time.Time
}

func NewService(ctx context.Context, apiKey string, logger *zap.Logger, opts ...option.ClientOption) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	ys := &Service{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
	ys.quotaReset = ys.nextQuotaReset()

	logger.Info("YouTube search service initialized", zap.Time("quotaReset", ys.quotaReset))
	return ys, nil
}

// SearchVideo returns the embed URL of the first video matching
// "<businessName>-business", or "" when the search has no video result.
func (ys *Service) SearchVideo(ctx context.Context, businessName string) (string, error) {
	cost := constants.YouTubeQuota.SearchCost
	if err := ys.checkQuota(cost); err != nil {
		return "", err
	}

	resp, err := ys.service.Search.List([]string{"snippet"}).
		Q(businessName + querySuffix).
		Type("video").
		MaxResults(1).
		Context(ctx).
		Do()
	ys.consumeQuota(cost)

	if err != nil {
		var apiErr *googleapi.Error
		if stderrors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden && isQuotaReason(apiErr) {
			ys.exhaustQuota()
			return "", errors.NewQuotaExceededError(providerName, constants.YouTubeQuota.DailyLimit,
				constants.YouTubeQuota.DailyLimit, cost, ys.resetTime())
		}
		return "", errors.NewProviderError("youtube search failed", providerName, err)
	}

	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		return embedBaseURL + item.Id.VideoId, nil
	}

	ys.logger.Debug("YouTube search returned no video", zap.String("business", businessName))
	return "", nil
}

func isQuotaReason(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
			return true
		}
	}
	return false
}

func (ys *Service) nextQuotaReset() time.Time {
	return util.NextMidnight(ys.now(), constants.YouTubeQuota.ResetLocation)
}

func (ys *Service) checkQuota(cost int) error {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	if ys.now().After(ys.quotaReset) {
		ys.quotaUsed = 0
		ys.quotaReset = ys.nextQuotaReset()
		ys.logger.Info("YouTube API quota auto-reset", zap.Time("nextReset", ys.quotaReset))
	}

	limit := constants.YouTubeQuota.DailyLimit
	if ys.quotaUsed+cost > limit-constants.YouTubeQuota.SafetyMargin {
		return errors.NewQuotaExceededError(providerName, ys.quotaUsed, limit, cost, ys.quotaReset)
	}
	return nil
}

func (ys *Service) consumeQuota(cost int) {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	ys.quotaUsed += cost
	remaining := constants.YouTubeQuota.DailyLimit - ys.quotaUsed

	ys.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", ys.quotaUsed),
		zap.Int("remaining", remaining),
	)
	if remaining < constants.YouTubeQuota.SafetyMargin*2 {
		ys.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("resetTime", ys.quotaReset))
	}
}

func (ys *Service) exhaustQuota() {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()
	ys.quotaUsed = constants.YouTubeQuota.DailyLimit
}

func (ys *Service) resetTime() time.Time {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()
	return ys.quotaReset
}

// QuotaUsed reports the units consumed since the last reset.
func (ys *Service) QuotaUsed() int {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()
	return ys.quotaUsed
}
