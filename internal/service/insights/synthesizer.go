package insights

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/azhar1598/xplore-be/internal/constants"
	"github.com/azhar1598/xplore-be/internal/domain"
	"github.com/azhar1598/xplore-be/internal/metrics"
	"github.com/azhar1598/xplore-be/pkg/errors"
)

// Provider labels used in logs, errors and metrics.
const (
	ProviderText  = "text"
	ProviderVideo = "video"
	ProviderImage = "image"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// TextProvider returns raw generated text expected to hold one insight object.
type TextProvider interface {
	GenerateInsightText(ctx context.Context, businessName string) (string, error)
}

// VideoSearcher returns an embeddable video URL or "" when nothing matches.
type VideoSearcher interface {
	SearchVideo(ctx context.Context, businessName string) (string, error)
}

// ImageSearcher returns an image URL or "" when nothing matches.
type ImageSearcher interface {
	SearchImage(ctx context.Context, businessName string) (string, error)
}

type Options struct {
	TextTimeout  time.Duration
	VideoTimeout time.Duration
	ImageTimeout time.Duration
	TTL          time.Duration
}

func (o Options) withDefaults() Options {
	if o.TextTimeout <= 0 {
		o.TextTimeout = constants.ProviderTimeouts.Text
	}
	if o.VideoTimeout <= 0 {
		o.VideoTimeout = constants.ProviderTimeouts.Video
	}
	if o.ImageTimeout <= 0 {
		o.ImageTimeout = constants.ProviderTimeouts.Image
	}
	if o.TTL <= 0 {
		o.TTL = constants.CacheTTL.BusinessInsight
	}
	return o
}

// Synthesizer builds BusinessInsight records on top of a cache-aside layer.
type Synthesizer struct {
	cache  Cache
	text   TextProvider
	video  VideoSearcher
	image  ImageSearcher
	opts   Options
	flight singleflight.Group
	logger *zap.Logger
}

// NewSynthesizer wires the providers. video and image may be nil, in which case
// the matching fields are always "".
func NewSynthesizer(cache Cache, text TextProvider, video VideoSearcher, image ImageSearcher, opts Options, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		cache:  cache,
		text:   text,
		video:  video,
		image:  image,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// CacheKey is the exact cache key for a business name; no normalization.
func CacheKey(businessName string) string {
	return constants.CacheKeys.BusinessPrefix + businessName
}

// GetBusinessInsights returns the cached insight for businessName or
// synthesizes, caches and returns a fresh one. Concurrent misses for the same
// name share a single upstream fan-out.
func (s *Synthesizer) GetBusinessInsights(ctx context.Context, businessName string) (*domain.BusinessInsight, error) {
	key := CacheKey(businessName)

	if cached, ok := s.lookup(ctx, key); ok {
		metrics.Syntheses.WithLabelValues(metrics.OutcomeCached).Inc()
		return cached, nil
	}

	// The flight outlives any single caller; each waiter still honours its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		return s.synthesize(flightCtx, businessName, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("Joined in-flight synthesis", zap.String("key", key))
		}
		return res.Val.(*domain.BusinessInsight).Clone(), nil
	}
}

func (s *Synthesizer) lookup(ctx context.Context, key string) (*domain.BusinessInsight, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Warn("Insight cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()
		return nil, false
	}

	var insight domain.BusinessInsight
	if err := json.Unmarshal([]byte(raw), &insight); err != nil {
		metrics.CacheLookups.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Warn("Insight cache entry unreadable, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()
	return &insight, true
}

func (s *Synthesizer) synthesize(ctx context.Context, businessName, key string) (*domain.BusinessInsight, error) {
	metrics.SynthesesInFlight.Inc()
	defer metrics.SynthesesInFlight.Dec()

	start := time.Now()

	// A fatal text failure cancels the decorative calls.
	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		raw     string
		textErr error
		video   string
		image   string
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		raw, textErr = s.generateText(fanCtx, businessName)
		if textErr != nil {
			cancel()
		}
	})
	if s.video != nil {
		wg.Go(func() {
			video = s.decorate(fanCtx, ProviderVideo, s.opts.VideoTimeout, businessName, s.video.SearchVideo)
		})
	}
	if s.image != nil {
		wg.Go(func() {
			image = s.decorate(fanCtx, ProviderImage, s.opts.ImageTimeout, businessName, s.image.SearchImage)
		})
	}
	wg.Wait()

	if textErr != nil {
		metrics.Syntheses.WithLabelValues(metrics.OutcomeFailure).Inc()
		s.logger.Error("Insight synthesis failed", zap.String("business", businessName), zap.Error(textErr))
		return nil, textErr
	}

	insight, err := ParseInsight(raw, ProviderText)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(ProviderText, metrics.OutcomeMalformed).Inc()
		metrics.Syntheses.WithLabelValues(metrics.OutcomeMalformed).Inc()
		s.logger.Error("Generated insight is malformed", zap.String("business", businessName), zap.Error(err))
		return nil, err
	}

	insight.YoutubeVideo = video
	insight.BusinessThumbnail = image
	if insight.BusinessName == "" {
		insight.BusinessName = businessName
	}

	s.store(ctx, key, insight)

	metrics.Syntheses.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info("Insight synthesized",
		zap.String("business", businessName),
		zap.Bool("has_video", video != ""),
		zap.Bool("has_thumbnail", image != ""),
		zap.Duration("took", time.Since(start)),
	)
	return insight, nil
}

func (s *Synthesizer) generateText(ctx context.Context, businessName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.TextTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.text.GenerateInsightText(ctx, businessName)
	metrics.ProviderDuration.WithLabelValues(ProviderText).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderRequests.WithLabelValues(ProviderText, metrics.OutcomeFailure).Inc()
		if errors.IsProviderUnavailable(err) || errors.IsValidation(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", errors.NewProviderError("text provider timed out", ProviderText, err)
		}
		return "", errors.NewProviderError("text provider failed", ProviderText, err)
	}

	metrics.ProviderRequests.WithLabelValues(ProviderText, metrics.OutcomeSuccess).Inc()
	return raw, nil
}

// decorate runs one decorative lookup; any failure or timeout yields "".
func (s *Synthesizer) decorate(
	ctx context.Context,
	provider string,
	timeout time.Duration,
	businessName string,
	search func(context.Context, string) (string, error),
) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	url, err := search(ctx, businessName)
	metrics.ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeFailure).Inc()
		s.logger.Warn("Decorative provider failed, leaving field empty",
			zap.String("provider", provider),
			zap.String("business", businessName),
			zap.Error(err),
		)
		return ""
	}
	if url == "" {
		metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeEmpty).Inc()
		return ""
	}

	metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeSuccess).Inc()
	return url
}

func (s *Synthesizer) store(ctx context.Context, key string, insight *domain.BusinessInsight) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(insight)
	if err != nil {
		s.logger.Error("Insight marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.opts.TTL); err != nil {
		s.logger.Warn("Insight cache write failed", zap.String("key", key), zap.Error(err))
	}
}
