package democontent

import (
	"context"
	"errors"
	"log/slog"
)

// Service is the surface the admin adapters drive.
type Service interface {
	RunImport(ctx context.Context) (ImportResult, error)
	RemoveDemoContent(ctx context.Context) int
}

// FrontPagePolicy decides when an import points the site's reading settings
// at the demo pages.
type FrontPagePolicy int

const (
	// FrontPageWhenKnown sets the front page and posts page whenever the demo
	// pages exist, including pages reused from an earlier run.
	FrontPageWhenKnown FrontPagePolicy = iota
	// FrontPageWhenCreated only sets them for pages created by this run.
	FrontPageWhenCreated
)

// Provisioner imports and removes demo content.
type Provisioner struct {
	repository      Repository
	settings        Settings
	sideloader      Sideloader
	mediaCleaner    MediaCleaner
	locations       ThemeLocations
	authorizer      Authorizer
	eventSink       EventSink
	catalog         Catalog
	frontPagePolicy FrontPagePolicy
	logger          *slog.Logger
}

var _ Service = (*Provisioner)(nil)

// Option represents a functional option for configuring the provisioner
type Option func(*Provisioner)

// WithRepository sets the content repository
func WithRepository(repo Repository) Option {
	return func(p *Provisioner) {
		p.repository = repo
	}
}

// WithSettings sets the site settings store
func WithSettings(settings Settings) Option {
	return func(p *Provisioner) {
		p.settings = settings
	}
}

// WithSideloader sets the media sideloader
func WithSideloader(sideloader Sideloader) Option {
	return func(p *Provisioner) {
		p.sideloader = sideloader
	}
}

// WithMediaCleaner sets the hook that removes stored files of deleted attachments
func WithMediaCleaner(cleaner MediaCleaner) Option {
	return func(p *Provisioner) {
		p.mediaCleaner = cleaner
	}
}

// WithThemeLocations sets the source of registered menu slots
func WithThemeLocations(locations ThemeLocations) Option {
	return func(p *Provisioner) {
		p.locations = locations
	}
}

// WithAuthorizer sets the capability check
func WithAuthorizer(authorizer Authorizer) Option {
	return func(p *Provisioner) {
		p.authorizer = authorizer
	}
}

// WithEventSink sets the event sink
func WithEventSink(sink EventSink) Option {
	return func(p *Provisioner) {
		p.eventSink = sink
	}
}

// WithCatalog replaces the default demo data set
func WithCatalog(catalog Catalog) Option {
	return func(p *Provisioner) {
		p.catalog = catalog
	}
}

// WithFrontPagePolicy sets when reading settings are updated
func WithFrontPagePolicy(policy FrontPagePolicy) Option {
	return func(p *Provisioner) {
		p.frontPagePolicy = policy
	}
}

// WithLogger sets the logger used for skipped items
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// New creates a provisioner with the given options. A repository, a settings
// store and a sideloader are required.
func New(options ...Option) (*Provisioner, error) {
	p := &Provisioner{
		authorizer: ContextAuthorizer{},
		eventSink:  NewNoopEventSink(),
		locations:  StaticLocations(nil),
		catalog:    DefaultCatalog(),
		logger:     slog.Default(),
	}

	for _, option := range options {
		option(p)
	}

	if p.repository == nil {
		return nil, errors.New("repository is required")
	}
	if p.settings == nil {
		return nil, errors.New("settings is required")
	}
	if p.sideloader == nil {
		return nil, errors.New("sideloader is required")
	}
	if err := p.catalog.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Provisioner) skip(op, key string, err error) {
	p.logger.Warn("Skipped demo item", "op", op, "key", key, "error", &ProvisionError{Op: op, Key: key, Err: err})
}

func (p *Provisioner) emit(name string, err error) {
	if err != nil {
		p.logger.Error("Failed to deliver event", "event", name, "error", err)
	}
}
