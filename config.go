package folio

import "github.com/folioforge/go-folio/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired     = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown      = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid         = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid        = runtimeconfig.ErrLoggingFormatInvalid
	ErrStorageProviderUnknown      = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown        = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired          = runtimeconfig.ErrStorageDSNRequired
	ErrPersistenceFeatureRequired  = runtimeconfig.ErrPersistenceFeatureRequired
	ErrCacheRequiresBunStorage     = runtimeconfig.ErrCacheRequiresBunStorage
	ErrCacheTTLInvalid             = runtimeconfig.ErrCacheTTLInvalid
	ErrPreviewDebounceInvalid      = runtimeconfig.ErrPreviewDebounceInvalid
	ErrPublishBaseURLInvalid       = runtimeconfig.ErrPublishBaseURLInvalid
	ErrSyncBufferInvalid           = runtimeconfig.ErrSyncBufferInvalid
	ErrSyncMaxAttemptsInvalid      = runtimeconfig.ErrSyncMaxAttemptsInvalid
	ErrSyncRetryDelayInvalid       = runtimeconfig.ErrSyncRetryDelayInvalid
	ErrSyncBatchSizeInvalid        = runtimeconfig.ErrSyncBatchSizeInvalid
	ErrAIProviderUnknown           = runtimeconfig.ErrAIProviderUnknown
	ErrAIToneUnknown               = runtimeconfig.ErrAIToneUnknown
	ErrAIFeatureRequired           = runtimeconfig.ErrAIFeatureRequired
	ErrCommandsCronRequiresEnabled = runtimeconfig.ErrCommandsCronRequiresEnabled
	ErrAuditRetentionInvalid       = runtimeconfig.ErrAuditRetentionInvalid
)

type (
	Config          = runtimeconfig.Config
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	PreviewConfig   = runtimeconfig.PreviewConfig
	PublishConfig   = runtimeconfig.PublishConfig
	SyncConfig      = runtimeconfig.SyncConfig
	AIConfig        = runtimeconfig.AIConfig
	TemplatesConfig = runtimeconfig.TemplatesConfig
	CommandsConfig  = runtimeconfig.CommandsConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
