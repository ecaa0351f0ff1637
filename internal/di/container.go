package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/folioforge/go-folio/internal/dashboard"
	"github.com/folioforge/go-folio/internal/editor"
	"github.com/folioforge/go-folio/internal/jobs"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/internal/logging/console"
	"github.com/folioforge/go-folio/internal/logging/gologger"
	"github.com/folioforge/go-folio/internal/persistence"
	"github.com/folioforge/go-folio/internal/polish"
	"github.com/folioforge/go-folio/internal/render"
	"github.com/folioforge/go-folio/internal/runtimeconfig"
	"github.com/folioforge/go-folio/internal/scheduler"
	"github.com/folioforge/go-folio/internal/templates"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

// Container wires module dependencies from runtimeconfig.Config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	templateRepo templates.TemplateRepository
	templateSvc  templates.Service

	scheduler interfaces.Scheduler
	syncQueue *jobs.SyncQueue
	audit     jobs.AuditRecorder

	mirror      lifecycle.Mirror
	asyncMirror *persistence.AsyncMirror
	loader      persistence.Loader
	store       *lifecycle.Store
	worker      *jobs.Worker

	polisher  polish.Service
	compiler  *render.Compiler
	projector *dashboard.Projector
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies an open database for the bun storage provider. The
// container does not close databases it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache service used by the template repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithTemplateRepository replaces the template catalog repository.
func WithTemplateRepository(repo templates.TemplateRepository) Option {
	return func(c *Container) {
		if repo != nil {
			c.templateRepo = repo
		}
	}
}

// WithScheduler replaces the in-memory retry scheduler.
func WithScheduler(sched interfaces.Scheduler) Option {
	return func(c *Container) {
		if sched != nil {
			c.scheduler = sched
		}
	}
}

// WithAuditRecorder replaces the in-memory audit recorder.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(c *Container) {
		if recorder != nil {
			c.audit = recorder
		}
	}
}

// WithMirror installs a lifecycle mirror. When it also implements
// persistence.Loader its records are restored into the store at startup.
func WithMirror(mirror lifecycle.Mirror) Option {
	return func(c *Container) {
		c.mirror = mirror
	}
}

// WithPolisher replaces the polish service selected from the AI config.
func WithPolisher(service polish.Service) Option {
	return func(c *Container) {
		if service != nil {
			c.polisher = service
		}
	}
}

// NewContainer validates cfg and builds every service it enables.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	ctx := context.Background()

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureTemplates(ctx); err != nil {
		c.closeDB()
		return nil, err
	}
	c.configureScheduler()
	if err := c.configureLifecycle(ctx); err != nil {
		c.closeDB()
		return nil, err
	}
	c.configureWorker()
	if err := c.configurePolish(ctx); err != nil {
		c.closeDB()
		return nil, err
	}

	c.compiler = render.NewCompiler(render.WithLogger(logging.RenderLogger(c.loggerProvider)))
	c.projector = dashboard.NewProjector(dashboard.WithSyncBuffer(cfg.Publish.SyncBuffer))

	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		provider, err := buildLoggerProvider(c.Config.Logging)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "folio.di")
	return nil
}

func buildLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, fmt.Errorf("di: configure gologger: %w", err)
		}
		return provider, nil
	default:
		level := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}

func (c *Container) configureStorage(ctx context.Context) error {
	if !strings.EqualFold(c.Config.Storage.Provider, "bun") {
		c.logger.Debug("storage.configured", "provider", "memory")
		return nil
	}
	if c.bunDB == nil {
		db, err := persistence.Open(c.Config.Storage.Driver, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if err := persistence.EnsureSchema(ctx, c.bunDB); err != nil {
		c.closeDB()
		return err
	}
	c.logger.Info("storage.configured", "provider", "bun", "driver", c.Config.Storage.Driver)
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureTemplates(ctx context.Context) error {
	if c.templateRepo == nil {
		switch {
		case c.bunDB != nil && c.cacheService != nil:
			c.templateRepo = templates.NewBunTemplateRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		case c.bunDB != nil:
			c.templateRepo = templates.NewBunTemplateRepository(c.bunDB)
		default:
			c.templateRepo = templates.NewMemoryTemplateRepository()
		}
	}
	c.templateSvc = templates.NewService(c.templateRepo, templates.WithLogger(logging.TemplatesLogger(c.loggerProvider)))

	builtin, err := templates.Builtin()
	if err != nil {
		return err
	}
	if err := c.templateSvc.Seed(ctx, builtin...); err != nil {
		return err
	}
	seeded := len(builtin)

	if dir := strings.TrimSpace(c.Config.Templates.Dir); dir != "" {
		extra, err := templates.LoadFS(os.DirFS(dir))
		if err != nil {
			return fmt.Errorf("di: load templates from %s: %w", dir, err)
		}
		if err := c.templateSvc.Seed(ctx, extra...); err != nil {
			return err
		}
		seeded += len(extra)
	}

	c.logger.Info("templates.configured", "count", seeded, "cached", c.cacheService != nil)
	return nil
}

func (c *Container) configureScheduler() {
	provider := "custom"
	if c.scheduler == nil {
		c.scheduler = scheduler.NewInMemory(scheduler.WithDefaultMaxAttempts(c.Config.Sync.MaxAttempts))
		provider = "in-memory"
	}
	if c.audit == nil {
		c.audit = jobs.NewInMemoryAuditRecorder()
	}

	c.syncQueue = jobs.NewSyncQueue(c.scheduler,
		jobs.WithRetryDelay(c.Config.Sync.RetryDelay),
		jobs.WithMaxAttempts(c.Config.Sync.MaxAttempts),
		jobs.WithQueueLogger(logging.JobsLogger(c.loggerProvider)),
	)

	logging.ModuleLogger(c.loggerProvider, "folio.scheduler").Info("scheduler.configured", "provider", provider)
}

func (c *Container) configureLifecycle(ctx context.Context) error {
	persistenceLogger := logging.PersistenceLogger(c.loggerProvider)

	if c.mirror == nil && c.bunDB != nil {
		c.mirror = persistence.NewBunMirror(c.bunDB, persistence.WithBunLogger(persistenceLogger))
	}
	if loader, ok := c.mirror.(persistence.Loader); ok {
		c.loader = loader
	}

	mirror := c.mirror
	if mirror != nil && c.Config.Sync.Async {
		c.asyncMirror = persistence.NewAsyncMirror(mirror,
			persistence.WithQueueSize(c.Config.Sync.QueueSize),
			persistence.WithAsyncDesyncRecorder(c.syncQueue),
			persistence.WithAsyncLogger(persistenceLogger),
		)
		mirror = c.asyncMirror
	}

	opts := []lifecycle.Option{
		lifecycle.WithDesyncRecorder(c.syncQueue),
		lifecycle.WithPublishBaseURL(c.Config.Publish.BaseURL),
		lifecycle.WithSyncBuffer(c.Config.Publish.SyncBuffer),
		lifecycle.WithLogger(logging.LifecycleLogger(c.loggerProvider)),
	}
	if mirror != nil {
		opts = append(opts, lifecycle.WithMirror(mirror))
	}
	c.store = lifecycle.NewStore(opts...)

	if c.loader != nil {
		snapshot, err := persistence.Restore(ctx, c.loader, c.store)
		if err != nil {
			return err
		}
		persistenceLogger.Info("persistence.restored",
			"portfolios", len(snapshot.Portfolios),
			"versions", len(snapshot.Versions),
			"deployments", len(snapshot.Deployments),
		)
	}

	c.logger.Info("lifecycle.configured", "mirror", c.mirror != nil, "async", c.asyncMirror != nil)
	return nil
}

func (c *Container) configureWorker() {
	c.worker = jobs.NewWorker(c.scheduler, c.store,
		jobs.WithBatchSize(c.Config.Sync.BatchSize),
		jobs.WithBackoff(c.Config.Sync.RetryDelay),
		jobs.WithAuditRecorder(c.audit),
		jobs.WithLogger(logging.JobsLogger(c.loggerProvider)),
	)
}

func (c *Container) configurePolish(ctx context.Context) error {
	if c.polisher != nil {
		return nil
	}
	cfg := polish.Config{Provider: polish.ProviderMock}
	if c.Config.Features.AI {
		cfg = polish.Config{
			Provider: c.Config.AI.Provider,
			APIKey:   c.Config.AI.APIKey,
			Model:    c.Config.AI.Model,
		}
	}
	service, err := polish.New(ctx, cfg, logging.PolishLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	c.polisher = service
	c.logger.Info("polish.configured", "provider", cfg.Provider)
	return nil
}

func (c *Container) closeDB() {
	if c.ownsDB && c.bunDB != nil {
		_ = c.bunDB.Close()
		c.bunDB = nil
	}
}

// LoggerProvider returns the provider used for module loggers. It is nil
// when logging is disabled and no provider was supplied.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BunDB returns the database backing the bun storage provider, if any.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) Templates() templates.Service {
	return c.templateSvc
}

func (c *Container) Scheduler() interfaces.Scheduler {
	return c.scheduler
}

func (c *Container) SyncQueue() *jobs.SyncQueue {
	return c.syncQueue
}

func (c *Container) AuditRecorder() jobs.AuditRecorder {
	return c.audit
}

func (c *Container) Store() *lifecycle.Store {
	return c.store
}

func (c *Container) JobWorker() *jobs.Worker {
	return c.worker
}

func (c *Container) Polisher() polish.Service {
	return c.polisher
}

func (c *Container) Compiler() *render.Compiler {
	return c.compiler
}

func (c *Container) Projector() *dashboard.Projector {
	return c.projector
}

// NewEditor builds an editing session wired to the container's store,
// catalog, polisher and template compiler. opts are applied last.
func (c *Container) NewEditor(opts ...editor.Option) *editor.Editor {
	session := render.NewSession(c.compiler,
		render.WithDebounce(c.Config.Preview.Debounce),
		render.WithSessionLogger(logging.RenderLogger(c.loggerProvider)),
	)
	base := []editor.Option{
		editor.WithSession(session),
		editor.WithPolisher(c.polisher),
		editor.WithExtractor(c.polisher),
		editor.WithTone(polish.ParseTone(c.Config.AI.Tone)),
		editor.WithLogger(logging.EditorLogger(c.loggerProvider)),
	}
	return editor.New(c.store, c.templateSvc, append(base, opts...)...)
}

// Dashboard projects the store into dashboard items and summary stats.
func (c *Container) Dashboard(ctx context.Context) ([]dashboard.Item, dashboard.Stats, error) {
	snapshot := c.store.Snapshot()
	items := c.projector.ProjectSnapshot(snapshot)
	active, err := c.templateSvc.CountActive(ctx)
	if err != nil {
		return nil, dashboard.Stats{}, err
	}
	return items, dashboard.Summarize(items, snapshot, active), nil
}

// RunWorker replays failed mirror writes until ctx ends.
func (c *Container) RunWorker(ctx context.Context) error {
	return c.worker.Run(ctx, c.Config.Sync.PollInterval)
}

// Flush waits for queued mirror writes when the async mirror is enabled.
func (c *Container) Flush(ctx context.Context) error {
	if c.asyncMirror == nil {
		return nil
	}
	return c.asyncMirror.Flush(ctx)
}

// Close drains the async mirror and closes a database the container opened.
func (c *Container) Close() error {
	var errs error
	if c.asyncMirror != nil {
		errs = errors.Join(errs, c.asyncMirror.Close())
	}
	if c.ownsDB && c.bunDB != nil {
		errs = errors.Join(errs, c.bunDB.Close())
		c.bunDB = nil
	}
	return errs
}
