package config

import "time"

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	BatchQueryTimeout   = 2 * time.Minute
	EventTimeout        = 10 * time.Second
	NetworkDialTimeout  = 5 * time.Second

	// Cache settings
	CatalogCacheSize = 512

	// Batch processing
	SweepBatchSize = 500
)

// Engine Constants
const (
	DefaultMaxBoosterBonus = 1.0 // additive booster bonus cap, 1.0 = at most x2
	DefaultMaxAttempts     = 5
	DefaultRetryInitial    = 50 * time.Millisecond
	DefaultRetryMax        = 2 * time.Second
	DefaultSweepInterval   = 6 * time.Hour
	DefaultSweepRetention  = 30 * 24 * time.Hour
	DefaultTimezone        = "UTC"
)

// HTTP Constants
const (
	DefaultListenAddr = ":8080"
	RequestTimeout    = 30 * time.Second
	MaxRequestSize    = 1024 * 1024 // 1MB
	DefaultRateLimit  = 600         // requests per client per minute
)

// Webhook Constants
const (
	WebhookMaxRetries    = 3
	WebhookRetryDelay    = time.Second
	WebhookClientTimeout = 10 * time.Second
	WebhookSignatureHdr  = "X-Loyalty-Signature"
)
