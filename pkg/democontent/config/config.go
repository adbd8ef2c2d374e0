package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/demo-content/pkg/democontent"
	"github.com/tendant/demo-content/pkg/democontent/events"
	"github.com/tendant/demo-content/pkg/democontent/media"
	"github.com/tendant/demo-content/pkg/democontent/repo/memory"
	repopg "github.com/tendant/demo-content/pkg/democontent/repo/postgres"
	fsstorage "github.com/tendant/demo-content/pkg/democontent/storage/fs"
	memorystorage "github.com/tendant/demo-content/pkg/democontent/storage/memory"
	s3storage "github.com/tendant/demo-content/pkg/democontent/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Environment:  "development",
		LogLevel:     "info",
		DatabaseType: "memory",
		AutoMigrate:  true,
		Storage: StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		MediaURLPrefix:  "/media",
		SideloadTimeout: 30 * time.Second,
		FrontPagePolicy: "known",
		ThemeLocations: []democontent.MenuLocation{
			{Slug: "primary_navigation", Label: "Primary Navigation"},
		},
		EventSource:        "/demo-content",
		EnableEventLogging: true,
	}
}

// ServerConfig represents the configuration shared by the demo-content commands
type ServerConfig struct {
	Environment string // development, production, testing
	LogLevel    string // debug, info, warn, error

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Optional Postgres search_path
	AutoMigrate  bool   // Apply the schema when the repository is built

	// Storage configuration
	Storage        StorageBackendConfig
	MediaURLPrefix string // URL prefix media files are served under

	// Provisioning options
	SideloadTimeout time.Duration
	CatalogPath     string // Optional JSON catalog replacing the default data set
	FrontPagePolicy string // "known" or "created"
	ThemeLocations  []democontent.MenuLocation

	// Events
	EventAuditURL      string // CloudEvents target; empty disables delivery
	EventSource        string
	EnableEventLogging bool
}

// StorageBackendConfig represents configuration for the media storage backend
type StorageBackendConfig struct {
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}

	if c.SideloadTimeout <= 0 {
		return errors.New("sideload_timeout must be positive")
	}

	if _, err := c.frontPagePolicy(); err != nil {
		return err
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

func (c *ServerConfig) frontPagePolicy() (democontent.FrontPagePolicy, error) {
	switch c.FrontPagePolicy {
	case "", "known":
		return democontent.FrontPageWhenKnown, nil
	case "created":
		return democontent.FrontPageWhenCreated, nil
	default:
		return 0, fmt.Errorf("front_page_policy must be 'known' or 'created', got %q", c.FrontPagePolicy)
	}
}

// Store is a repository that also holds site settings.
type Store interface {
	democontent.Repository
	democontent.Settings
}

// Runtime holds everything BuildRuntime wired together.
type Runtime struct {
	Provisioner *democontent.Provisioner
	Store       Store
	BlobStore   democontent.BlobStore

	pool *pgxpool.Pool
}

// Close releases the database pool, if any.
func (r *Runtime) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// BuildRuntime creates the repository, blob store, sideloader, event sink and
// provisioner described by the configuration
func (c *ServerConfig) BuildRuntime(ctx context.Context, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{}

	store, pool, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	rt.Store = store
	rt.pool = pool

	blobStore, err := c.BuildBlobStore()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}
	rt.BlobStore = blobStore

	eventSink, err := c.BuildEventSink(logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build event sink: %w", err)
	}

	catalog, err := c.BuildCatalog()
	if err != nil {
		rt.Close()
		return nil, err
	}

	policy, err := c.frontPagePolicy()
	if err != nil {
		rt.Close()
		return nil, err
	}

	sideloader := media.NewSideloader(store, blobStore,
		media.WithTimeout(c.SideloadTimeout),
		media.WithLogger(logger),
	)

	provisioner, err := democontent.New(
		democontent.WithRepository(store),
		democontent.WithSettings(store),
		democontent.WithSideloader(sideloader),
		democontent.WithMediaCleaner(media.NewCleaner(blobStore)),
		democontent.WithThemeLocations(democontent.StaticLocations(c.ThemeLocations)),
		democontent.WithEventSink(eventSink),
		democontent.WithCatalog(catalog),
		democontent.WithFrontPagePolicy(policy),
		democontent.WithLogger(logger),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Provisioner = provisioner

	return rt, nil
}

// buildRepository creates a Store based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (Store, *pgxpool.Pool, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil, nil
	case "postgres":
		pool, err := c.NewPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repopg.NewWithPool(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// NewPool opens a pgx pool for DatabaseURL, setting search_path to DBSchema
// when one is configured
func (c *ServerConfig) NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DatabaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema := c.DBSchema; schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// BuildBlobStore creates the media BlobStore based on the backend configuration
func (c *ServerConfig) BuildBlobStore() (democontent.BlobStore, error) {
	config := c.Storage
	switch config.Type {
	case "memory":
		return memorystorage.New(c.MediaURLPrefix), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   getString(config.Config, "base_dir", "./data/media"),
			URLPrefix: getString(config.Config, "url_prefix", c.MediaURLPrefix),
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			PresignDuration:        getInt(config.Config, "presign_duration", 3600),
			PublicBaseURL:          getString(config.Config, "public_base_url", ""),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

// BuildEventSink returns a CloudEvents sink when an audit URL is set, a
// logging sink when event logging is enabled, and a no-op sink otherwise
func (c *ServerConfig) BuildEventSink(logger *slog.Logger) (democontent.EventSink, error) {
	if c.EventAuditURL != "" {
		return events.NewSink(c.EventAuditURL, c.EventSource)
	}
	if c.EnableEventLogging {
		return democontent.NewLoggingEventSink(logger), nil
	}
	return democontent.NewNoopEventSink(), nil
}

// BuildCatalog loads CatalogPath, or returns the default catalog
func (c *ServerConfig) BuildCatalog() (democontent.Catalog, error) {
	if c.CatalogPath == "" {
		return democontent.DefaultCatalog(), nil
	}
	f, err := os.Open(c.CatalogPath)
	if err != nil {
		return democontent.Catalog{}, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return democontent.LoadCatalog(f)
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}

func getInt(config map[string]interface{}, key string, defaultValue int) int {
	if value, exists := config[key]; exists {
		if i, ok := value.(int); ok {
			return i
		}
		if str, ok := value.(string); ok {
			if i, err := strconv.Atoi(str); err == nil {
				return i
			}
		}
		if f, ok := value.(float64); ok {
			return int(f)
		}
	}
	return defaultValue
}
