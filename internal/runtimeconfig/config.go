package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrLoggingProviderRequired     = errors.New("folio config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown      = errors.New("folio config: logging provider is invalid")
	ErrLoggingLevelInvalid         = errors.New("folio config: logging level is invalid")
	ErrLoggingFormatInvalid        = errors.New("folio config: logging format is invalid")
	ErrStorageProviderUnknown      = errors.New("folio config: storage provider is invalid")
	ErrStorageDriverUnknown        = errors.New("folio config: storage driver is invalid")
	ErrStorageDSNRequired          = errors.New("folio config: storage dsn is required for the bun provider")
	ErrPersistenceFeatureRequired  = errors.New("folio config: persistence feature must be enabled to use the bun provider")
	ErrCacheRequiresBunStorage     = errors.New("folio config: template cache requires the bun storage provider")
	ErrCacheTTLInvalid             = errors.New("folio config: cache ttl must be positive")
	ErrPreviewDebounceInvalid      = errors.New("folio config: preview debounce must be zero or positive")
	ErrPublishBaseURLInvalid       = errors.New("folio config: publish base url must be an absolute http(s) url")
	ErrSyncBufferInvalid           = errors.New("folio config: sync buffer must be zero or positive")
	ErrSyncMaxAttemptsInvalid      = errors.New("folio config: sync max attempts must be positive")
	ErrSyncRetryDelayInvalid       = errors.New("folio config: sync retry delay must be positive")
	ErrSyncBatchSizeInvalid        = errors.New("folio config: sync batch size must be positive")
	ErrAIProviderUnknown           = errors.New("folio config: ai provider is invalid")
	ErrAIToneUnknown               = errors.New("folio config: ai tone is invalid")
	ErrAIFeatureRequired           = errors.New("folio config: ai feature must be enabled to use a remote provider")
	ErrCommandsCronRequiresEnabled = errors.New("folio config: command cron auto-registration requires commands to be enabled")
	ErrAuditRetentionInvalid       = errors.New("folio config: audit retention must be zero or positive")
)

// Config aggregates feature flags and adapter bindings for the portfolio
// builder. Fields use simple types so hosts can fill them from any source.
type Config struct {
	Features  Features
	Logging   LoggingConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Preview   PreviewConfig
	Publish   PublishConfig
	Sync      SyncConfig
	AI        AIConfig
	Templates TemplatesConfig
	Commands  CommandsConfig
}

// Features toggles module functionality.
type Features struct {
	Logger      bool
	AI          bool
	Persistence bool
	Cache       bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// StorageConfig selects where lifecycle records and the template catalog
// are kept. Provider is memory or bun; Driver is sqlite or postgres.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
}

// CacheConfig controls the cached template repository.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// PreviewConfig controls the live preview session.
type PreviewConfig struct {
	Debounce time.Duration
}

// PublishConfig controls deployment URLs and sync status derivation.
type PublishConfig struct {
	BaseURL    string
	SyncBuffer time.Duration
}

// SyncConfig tunes the persistence retry queue.
type SyncConfig struct {
	MaxAttempts   int
	RetryDelay    time.Duration
	BatchSize     int
	QueueSize     int
	Async         bool
	WorkerEnabled bool
	PollInterval  time.Duration
}

// AIConfig selects the polish backend.
type AIConfig struct {
	Provider string
	APIKey   string
	Model    string
	Tone     string
}

// TemplatesConfig points at an optional directory of extra templates.
type TemplatesConfig struct {
	Dir string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled                bool
	AutoRegisterDispatcher bool
	AutoRegisterCron       bool
	CleanupAuditCron       string
	AuditRetention         time.Duration
}

// DefaultConfig returns an in-memory setup with the mock polisher.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Preview: PreviewConfig{
			Debounce: 300 * time.Millisecond,
		},
		Publish: PublishConfig{
			BaseURL:    "https://folioforge.vercel.app",
			SyncBuffer: time.Second,
		},
		Sync: SyncConfig{
			MaxAttempts:  5,
			RetryDelay:   5 * time.Second,
			BatchSize:    50,
			QueueSize:    64,
			PollInterval: 5 * time.Second,
		},
		AI: AIConfig{
			Provider: "mock",
			Model:    "gemini-2.5-flash",
			Tone:     "professional",
		},
		Commands: CommandsConfig{
			CleanupAuditCron: "@daily",
			AuditRetention:   7 * 24 * time.Hour,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if err := cfg.validateLogging(); err != nil {
		return err
	}
	if err := cfg.validateStorage(); err != nil {
		return err
	}
	if cfg.Preview.Debounce < 0 {
		return ErrPreviewDebounceInvalid
	}
	if base := strings.TrimSpace(cfg.Publish.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("%w: %s", ErrPublishBaseURLInvalid, base)
		}
	}
	if cfg.Publish.SyncBuffer < 0 {
		return ErrSyncBufferInvalid
	}
	if cfg.Features.Persistence {
		if cfg.Sync.MaxAttempts <= 0 {
			return ErrSyncMaxAttemptsInvalid
		}
		if cfg.Sync.RetryDelay <= 0 {
			return ErrSyncRetryDelayInvalid
		}
		if cfg.Sync.BatchSize <= 0 {
			return ErrSyncBatchSizeInvalid
		}
	}
	if err := cfg.validateAI(); err != nil {
		return err
	}
	if cfg.Commands.AutoRegisterCron && !cfg.Commands.Enabled {
		return ErrCommandsCronRequiresEnabled
	}
	if cfg.Commands.AuditRetention < 0 {
		return ErrAuditRetentionInvalid
	}
	return nil
}

func (cfg Config) validateLogging() error {
	if !cfg.Features.Logger {
		return nil
	}
	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func (cfg Config) validateStorage() error {
	switch normalize(cfg.Storage.Provider) {
	case "", "memory":
		if cfg.Cache.Enabled && cfg.Features.Cache {
			return ErrCacheRequiresBunStorage
		}
		return nil
	case "bun":
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if !cfg.Features.Persistence {
		return ErrPersistenceFeatureRequired
	}
	switch normalize(cfg.Storage.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	return nil
}

func (cfg Config) validateAI() error {
	switch normalize(cfg.AI.Provider) {
	case "", "mock":
	case "gemini":
		if !cfg.Features.AI {
			return ErrAIFeatureRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrAIProviderUnknown, cfg.AI.Provider)
	}
	switch normalize(cfg.AI.Tone) {
	case "", "professional", "concise", "creative":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrAIToneUnknown, cfg.AI.Tone)
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
