package constants

import "time"

var CacheTTL = struct {
	BusinessInsight time.Duration
}{
	BusinessInsight: 24 * time.Hour, // 86400s, not configurable per call
}

var CacheKeys = struct {
	BusinessPrefix string
}{
	BusinessPrefix: "business:",
}

var RedisConfig = struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration
	MaxRetries   int
	PoolSize     int
}{
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PingTimeout:  5 * time.Second,
	MaxRetries:   3,
	PoolSize:     10,
}

var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
	PingTimeout:     5 * time.Second,
}

var ProviderTimeouts = struct {
	Text  time.Duration
	Video time.Duration
	Image time.Duration
}{
	Text:  30 * time.Second,
	Video: 10 * time.Second,
	Image: 10 * time.Second,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // consecutive service failures before OPEN
	ResetTimeout:        30 * time.Second, // default wait before retrying
	RateLimitTimeout:    10 * time.Minute, // wait after a 429
	HealthCheckInterval: 5 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var YouTubeQuota = struct {
	DailyLimit    int
	SearchCost    int
	SafetyMargin  int
	ResetLocation string
}{
	DailyLimit:    10000,
	SearchCost:    100, // search.list
	SafetyMargin:  500,
	ResetLocation: "America/Los_Angeles",
}

var ServerConfig = struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	BuildTimeout    time.Duration
}{
	ReadTimeout:     15 * time.Second,
	WriteTimeout:    90 * time.Second,
	ShutdownTimeout: 10 * time.Second,
	BuildTimeout:    30 * time.Second,
}

var AIInputLimits = struct {
	MaxBusinessNameLength int
	ResponsePreviewLength int
}{
	MaxBusinessNameLength: 200,
	ResponsePreviewLength: 200,
}
