package lifecycle

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

const (
	// DefaultPublishBaseURL prefixes the public URL of a published portfolio.
	DefaultPublishBaseURL = "https://folioforge.vercel.app"
	// DefaultSyncBuffer is the clock skew tolerated between a save and a deployment.
	DefaultSyncBuffer = time.Second
)

// Store holds the portfolio, version and deployment collections. Mutations
// are applied in memory first and then handed to the mirror in commit
// order; mirror failures never roll back in-memory state. Mirrors must not
// call back into the store from Apply.
type Store struct {
	mu          sync.RWMutex
	portfolios  map[uuid.UUID]*Portfolio
	versions    map[uuid.UUID]*Version
	deployments map[uuid.UUID]*Deployment

	mirrorMu sync.Mutex
	mirror   Mirror
	desync   DesyncRecorder

	now        func() time.Time
	id         func() uuid.UUID
	baseURL    string
	syncBuffer time.Duration
	logger     interfaces.Logger
}

// Option configures a Store.
type Option func(*Store)

func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(s *Store) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithMirror sets the persistence collaborator that receives every change.
func WithMirror(mirror Mirror) Option {
	return func(s *Store) {
		s.mirror = mirror
	}
}

// WithDesyncRecorder sets where failed mirror calls are parked.
func WithDesyncRecorder(recorder DesyncRecorder) Option {
	return func(s *Store) {
		s.desync = recorder
	}
}

func WithPublishBaseURL(base string) Option {
	return func(s *Store) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			s.baseURL = trimmed
		}
	}
}

func WithSyncBuffer(buffer time.Duration) Option {
	return func(s *Store) {
		if buffer >= 0 {
			s.syncBuffer = buffer
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		s.logger = logging.Ensure(logger)
	}
}

// NewStore builds an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		portfolios:  make(map[uuid.UUID]*Portfolio),
		versions:    make(map[uuid.UUID]*Version),
		deployments: make(map[uuid.UUID]*Deployment),
		now:         time.Now,
		id:          uuid.New,
		baseURL:     DefaultPublishBaseURL,
		syncBuffer:  DefaultSyncBuffer,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateVersion starts a draft version of portfolioID rendered with
// templateID. The portfolio is created when it does not exist yet; a nil
// portfolioID gets a generated one.
func (s *Store) CreateVersion(ctx context.Context, portfolioID uuid.UUID, templateID string, data contentdata.Data) (*Version, error) {
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return nil, ErrTemplateRequired
	}

	s.mu.Lock()
	now := s.timestamp()
	change := Change{Op: OpUpsert}

	if portfolioID == uuid.Nil {
		portfolioID = s.id()
	}
	if _, ok := s.portfolios[portfolioID]; !ok {
		portfolio := &Portfolio{
			ID:        portfolioID,
			Name:      DefaultPortfolioName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.portfolios[portfolioID] = portfolio
		change.Portfolios = append(change.Portfolios, clonePortfolio(portfolio))
	}

	version := &Version{
		ID:           s.id(),
		PortfolioID:  portfolioID,
		TemplateID:   templateID,
		Data:         data.Clone(),
		Status:       VersionDraft,
		CreatedAt:    now,
		LastModified: now,
	}
	s.versions[version.ID] = version
	change.Versions = append(change.Versions, cloneVersion(version))
	result := cloneVersion(version)

	s.release(ctx, change)
	s.logger.Debug("lifecycle.version.created", "portfolio_id", portfolioID, "version_id", result.ID, "template_id", templateID)
	return result, nil
}

// SaveVersion replaces the version data and bumps its lastModified together
// with the owning portfolio's updatedAt. The status is left unchanged.
func (s *Store) SaveVersion(ctx context.Context, versionID uuid.UUID, data contentdata.Data) (*Version, error) {
	s.mu.Lock()
	version, ok := s.versions[versionID]
	if !ok {
		s.mu.Unlock()
		return nil, &NotFoundError{Resource: "version", Key: versionID.String()}
	}
	now := s.timestamp()
	version.Data = data.Clone()
	version.LastModified = now

	change := Change{Op: OpUpsert, Versions: []*Version{cloneVersion(version)}}
	if portfolio, ok := s.portfolios[version.PortfolioID]; ok {
		portfolio.UpdatedAt = now
		change.Portfolios = []*Portfolio{clonePortfolio(portfolio)}
	}
	result := cloneVersion(version)

	s.release(ctx, change)
	return result, nil
}

// Publish marks the version online and appends a ready deployment for it.
// Every call creates a new deployment.
func (s *Store) Publish(ctx context.Context, versionID uuid.UUID, triggeredBy string) (*Deployment, error) {
	s.mu.Lock()
	version, ok := s.versions[versionID]
	if !ok {
		s.mu.Unlock()
		return nil, &NotFoundError{Resource: "version", Key: versionID.String()}
	}
	now := s.timestamp()
	version.Status = VersionOnline
	version.LastModified = now

	deployment := &Deployment{
		ID:                 s.id(),
		PortfolioVersionID: version.ID,
		TriggeredBy:        strings.TrimSpace(triggeredBy),
		Status:             DeploymentReady,
		URL:                s.publicURL(version.PortfolioID),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.deployments[deployment.ID] = deployment

	change := Change{
		Op:          OpUpsert,
		Versions:    []*Version{cloneVersion(version)},
		Deployments: []*Deployment{cloneDeployment(deployment)},
	}
	result := cloneDeployment(deployment)

	s.release(ctx, change)
	s.logger.Info("lifecycle.version.published", "version_id", versionID, "deployment_id", result.ID, "url", result.URL)
	return result, nil
}

// DeletePortfolio removes the portfolio with its versions and their
// deployments in a single step. Versions whose portfolio is already gone are
// removed as well.
func (s *Store) DeletePortfolio(ctx context.Context, portfolioID uuid.UUID) error {
	s.mu.Lock()
	portfolio, exists := s.portfolios[portfolioID]

	change := Change{Op: OpDelete}
	owned := make(map[uuid.UUID]struct{})
	for id, version := range s.versions {
		if version.PortfolioID == portfolioID {
			owned[id] = struct{}{}
		}
	}
	if !exists && len(owned) == 0 {
		s.mu.Unlock()
		return &NotFoundError{Resource: "portfolio", Key: portfolioID.String()}
	}

	for id, deployment := range s.deployments {
		if _, ok := owned[deployment.PortfolioVersionID]; ok {
			change.Deployments = append(change.Deployments, cloneDeployment(deployment))
			delete(s.deployments, id)
		}
	}
	for id := range owned {
		change.Versions = append(change.Versions, cloneVersion(s.versions[id]))
		delete(s.versions, id)
	}
	if exists {
		change.Portfolios = append(change.Portfolios, clonePortfolio(portfolio))
		delete(s.portfolios, portfolioID)
	}
	sortChange(&change)
	deployments, versions := len(change.Deployments), len(change.Versions)

	s.release(ctx, change)
	s.logger.Info("lifecycle.portfolio.deleted", "portfolio_id", portfolioID, "versions", versions, "deployments", deployments)
	return nil
}

// RenamePortfolio changes the portfolio name. Blank names are ignored.
func (s *Store) RenamePortfolio(ctx context.Context, portfolioID uuid.UUID, name string) (*Portfolio, error) {
	s.mu.Lock()
	portfolio, ok := s.portfolios[portfolioID]
	if !ok {
		s.mu.Unlock()
		return nil, &NotFoundError{Resource: "portfolio", Key: portfolioID.String()}
	}
	name = strings.TrimSpace(name)
	if name == "" || name == portfolio.Name {
		result := clonePortfolio(portfolio)
		s.mu.Unlock()
		return result, nil
	}
	portfolio.Name = name
	portfolio.UpdatedAt = s.timestamp()
	result := clonePortfolio(portfolio)

	s.release(ctx, Change{Op: OpUpsert, Portfolios: []*Portfolio{clonePortfolio(portfolio)}})
	return result, nil
}

// DeploymentUpdate carries pipeline progress. Empty fields are left as is.
type DeploymentUpdate struct {
	Status               DeploymentStatus
	URL                  string
	ProviderProjectID    string
	ProviderDeploymentID string
}

// UpdateDeployment applies pipeline progress to a deployment and bumps its
// updatedAt.
func (s *Store) UpdateDeployment(ctx context.Context, deploymentID uuid.UUID, update DeploymentUpdate) (*Deployment, error) {
	if update.Status != "" && !update.Status.Valid() {
		return nil, ErrInvalidDeploymentStatus
	}

	s.mu.Lock()
	deployment, ok := s.deployments[deploymentID]
	if !ok {
		s.mu.Unlock()
		return nil, &NotFoundError{Resource: "deployment", Key: deploymentID.String()}
	}
	if update.Status != "" {
		deployment.Status = update.Status
	}
	if url := strings.TrimSpace(update.URL); url != "" {
		deployment.URL = url
	}
	if v := strings.TrimSpace(update.ProviderProjectID); v != "" {
		deployment.ProviderProjectID = v
	}
	if v := strings.TrimSpace(update.ProviderDeploymentID); v != "" {
		deployment.ProviderDeploymentID = v
	}
	deployment.UpdatedAt = s.timestamp()
	result := cloneDeployment(deployment)

	s.release(ctx, Change{Op: OpUpsert, Deployments: []*Deployment{cloneDeployment(deployment)}})
	return result, nil
}

// Hydrate replaces the store contents with records loaded from persistence.
// Nothing is mirrored. Orphaned records are kept; readers skip them.
func (s *Store) Hydrate(snapshot Snapshot) {
	portfolios := make(map[uuid.UUID]*Portfolio, len(snapshot.Portfolios))
	for _, p := range snapshot.Portfolios {
		if p != nil {
			portfolios[p.ID] = clonePortfolio(p)
		}
	}
	versions := make(map[uuid.UUID]*Version, len(snapshot.Versions))
	for _, v := range snapshot.Versions {
		if v != nil {
			versions[v.ID] = cloneVersion(v)
		}
	}
	deployments := make(map[uuid.UUID]*Deployment, len(snapshot.Deployments))
	for _, d := range snapshot.Deployments {
		if d != nil {
			deployments[d.ID] = cloneDeployment(d)
		}
	}

	s.mu.Lock()
	s.portfolios, s.versions, s.deployments = portfolios, versions, deployments
	s.mu.Unlock()
	s.logger.Debug("lifecycle.hydrated", "portfolios", len(portfolios), "versions", len(versions), "deployments", len(deployments))
}

// Resync pushes the current state of refs to the mirror: records still held
// are upserted, missing ones deleted. Failures are returned to the caller
// and not recorded as a new desync.
func (s *Store) Resync(ctx context.Context, refs []Ref) error {
	s.mu.RLock()
	upsert := Change{Op: OpUpsert}
	remove := Change{Op: OpDelete}
	seen := make(map[Ref]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		switch ref.Entity {
		case EntityPortfolio:
			if p, ok := s.portfolios[ref.ID]; ok {
				upsert.Portfolios = append(upsert.Portfolios, clonePortfolio(p))
			} else {
				remove.Portfolios = append(remove.Portfolios, &Portfolio{ID: ref.ID})
			}
		case EntityVersion:
			if v, ok := s.versions[ref.ID]; ok {
				upsert.Versions = append(upsert.Versions, cloneVersion(v))
			} else {
				remove.Versions = append(remove.Versions, &Version{ID: ref.ID})
			}
		case EntityDeployment:
			if d, ok := s.deployments[ref.ID]; ok {
				upsert.Deployments = append(upsert.Deployments, cloneDeployment(d))
			} else {
				remove.Deployments = append(remove.Deployments, &Deployment{ID: ref.ID})
			}
		}
	}
	s.mirrorMu.Lock()
	s.mu.RUnlock()
	defer s.mirrorMu.Unlock()

	if s.mirror == nil {
		return nil
	}
	if !remove.IsZero() {
		if err := s.mirror.Apply(ctx, remove); err != nil {
			return err
		}
	}
	if !upsert.IsZero() {
		if err := s.mirror.Apply(ctx, upsert); err != nil {
			return err
		}
	}
	return nil
}

// release must be called with s.mu held. It unlocks the state and mirrors
// the change while holding mirrorMu so mirror calls follow commit order.
func (s *Store) release(ctx context.Context, change Change) {
	s.mirrorMu.Lock()
	s.mu.Unlock()
	defer s.mirrorMu.Unlock()

	if s.mirror == nil || change.IsZero() {
		return
	}
	err := s.mirror.Apply(ctx, change)
	if err == nil {
		return
	}

	refs := change.Refs()
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, string(ref.Entity)+":"+ref.ID.String())
	}
	s.logger.Warn("lifecycle.mirror.desync", "op", change.Op, "ids", strings.Join(ids, ","), "error", err)
	if s.desync == nil {
		return
	}
	if recErr := s.desync.RecordDesync(ctx, cloneChange(change), err); recErr != nil {
		s.logger.Error("lifecycle.mirror.desync_record_failed", "op", change.Op, "error", recErr)
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) publicURL(portfolioID uuid.UUID) string {
	return s.baseURL + "/" + portfolioID.String()
}

func sortChange(change *Change) {
	sort.Slice(change.Deployments, func(i, j int) bool {
		return change.Deployments[i].ID.String() < change.Deployments[j].ID.String()
	})
	sort.Slice(change.Versions, func(i, j int) bool {
		return change.Versions[i].ID.String() < change.Versions[j].ID.String()
	})
}
