package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/folioforge/go-folio/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Preview.Debounce != 300*time.Millisecond {
		t.Fatalf("unexpected debounce %v", cfg.Preview.Debounce)
	}
	if cfg.Publish.SyncBuffer != time.Second || cfg.Publish.BaseURL == "" {
		t.Fatalf("unexpected publish defaults %+v", cfg.Publish)
	}
	if cfg.Sync.MaxAttempts != 5 || cfg.AI.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Sync, cfg.AI)
	}
}

func TestConfigValidate(t *testing.T) {
	bun := func(cfg *runtimeconfig.Config) {
		cfg.Features.Persistence = true
		cfg.Storage.Provider = "bun"
		cfg.Storage.DSN = "file::memory:?cache=shared"
	}

	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name: "logging provider required",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Provider = ""
			},
			want: runtimeconfig.ErrLoggingProviderRequired,
		},
		{
			name: "unknown logging provider",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Provider = "syslog"
			},
			want: runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name: "invalid logging level",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Level = "loud"
			},
			want: runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "invalid gologger format",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Logger = true
				cfg.Logging.Provider = "gologger"
				cfg.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
		{
			name:   "unknown storage provider",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Storage.Provider = "redis" },
			want:   runtimeconfig.ErrStorageProviderUnknown,
		},
		{
			name: "bun requires persistence feature",
			mutate: func(cfg *runtimeconfig.Config) {
				bun(cfg)
				cfg.Features.Persistence = false
			},
			want: runtimeconfig.ErrPersistenceFeatureRequired,
		},
		{
			name: "bun requires dsn",
			mutate: func(cfg *runtimeconfig.Config) {
				bun(cfg)
				cfg.Storage.DSN = " "
			},
			want: runtimeconfig.ErrStorageDSNRequired,
		},
		{
			name: "unknown driver",
			mutate: func(cfg *runtimeconfig.Config) {
				bun(cfg)
				cfg.Storage.Driver = "mysql"
			},
			want: runtimeconfig.ErrStorageDriverUnknown,
		},
		{
			name: "cache needs bun",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Cache = true
				cfg.Cache.Enabled = true
			},
			want: runtimeconfig.ErrCacheRequiresBunStorage,
		},
		{
			name: "cache ttl",
			mutate: func(cfg *runtimeconfig.Config) {
				bun(cfg)
				cfg.Cache.Enabled = true
				cfg.Cache.DefaultTTL = 0
			},
			want: runtimeconfig.ErrCacheTTLInvalid,
		},
		{
			name:   "negative debounce",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Preview.Debounce = -time.Second },
			want:   runtimeconfig.ErrPreviewDebounceInvalid,
		},
		{
			name:   "relative base url",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Publish.BaseURL = "/sites" },
			want:   runtimeconfig.ErrPublishBaseURLInvalid,
		},
		{
			name:   "negative sync buffer",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Publish.SyncBuffer = -1 },
			want:   runtimeconfig.ErrSyncBufferInvalid,
		},
		{
			name: "retry attempts",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Persistence = true
				cfg.Sync.MaxAttempts = 0
			},
			want: runtimeconfig.ErrSyncMaxAttemptsInvalid,
		},
		{
			name: "retry delay",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Persistence = true
				cfg.Sync.RetryDelay = 0
			},
			want: runtimeconfig.ErrSyncRetryDelayInvalid,
		},
		{
			name: "batch size",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.Persistence = true
				cfg.Sync.BatchSize = 0
			},
			want: runtimeconfig.ErrSyncBatchSizeInvalid,
		},
		{
			name:   "unknown ai provider",
			mutate: func(cfg *runtimeconfig.Config) { cfg.AI.Provider = "openai" },
			want:   runtimeconfig.ErrAIProviderUnknown,
		},
		{
			name:   "gemini needs ai feature",
			mutate: func(cfg *runtimeconfig.Config) { cfg.AI.Provider = "gemini" },
			want:   runtimeconfig.ErrAIFeatureRequired,
		},
		{
			name:   "unknown tone",
			mutate: func(cfg *runtimeconfig.Config) { cfg.AI.Tone = "sarcastic" },
			want:   runtimeconfig.ErrAIToneUnknown,
		},
		{
			name:   "cron needs commands",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Commands.AutoRegisterCron = true },
			want:   runtimeconfig.ErrCommandsCronRequiresEnabled,
		},
		{
			name:   "negative audit retention",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Commands.AuditRetention = -time.Hour },
			want:   runtimeconfig.ErrAuditRetentionInvalid,
		},
		{
			name:   "bun sqlite",
			mutate: bun,
		},
		{
			name: "gemini with feature",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Features.AI = true
				cfg.AI.Provider = "Gemini"
				cfg.AI.Tone = "Creative"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tc.want)
			}
		})
	}
}
