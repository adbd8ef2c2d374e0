package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/demo-content/pkg/democontent"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	ENVIRONMENT - Runtime environment (default: "development")
//	LOG_LEVEL   - debug, info, warn or error (default: "info")
//
// Database:
//
//	DATABASE_URL    - "memory" (default) or "postgres://..."/"postgresql://..."
//	DB_SCHEMA       - Optional search_path for the Postgres pool
//	DB_AUTO_MIGRATE - Apply the schema on start (default: true)
//
// Storage:
//
//	STORAGE_URL      - One of:
//	                   - "memory://" - In-memory storage (default)
//	                   - "file:///path/to/media" - Filesystem storage
//	                   - "s3://bucket?region=us-east-1&endpoint=...&path_style=true&public_base_url=..."
//	MEDIA_URL_PREFIX - Prefix for media URLs of memory and file storage (default: "/media")
//
// Provisioning:
//
//	SIDELOAD_TIMEOUT     - Per-image fetch timeout (default: "30s")
//	CATALOG_PATH         - JSON catalog replacing the built-in one
//	FRONT_PAGE_POLICY    - "known" (default) or "created"
//	THEME_MENU_LOCATIONS - Declared menu slots, "slug:Label,slug:Label"
//
// Events:
//
//	EVENT_AUDIT_URL      - CloudEvents HTTP target
//	EVENT_SOURCE         - CloudEvents source (default: "/demo-content")
//	ENABLE_EVENT_LOGGING - Log events when no target is set (default: true)
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}
		if v, ok := lookupEnv(prefix, "LOG_LEVEL"); ok && v != "" {
			c.LogLevel = v
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}

		if err := applyStorageEnv(prefix, c); err != nil {
			return err
		}

		if err := applyProvisioningEnv(prefix, c); err != nil {
			return err
		}

		if v, ok := lookupEnv(prefix, "EVENT_AUDIT_URL"); ok {
			c.EventAuditURL = v
		}
		if v, ok := lookupEnv(prefix, "EVENT_SOURCE"); ok && v != "" {
			c.EventSource = v
		}
		if v, ok := lookupEnv(prefix, "ENABLE_EVENT_LOGGING"); ok && v != "" {
			b, err := parseBoolEnv("ENABLE_EVENT_LOGGING", v)
			if err != nil {
				return err
			}
			c.EnableEventLogging = b
		}

		return nil
	}
}

// applyDatabaseEnv applies database configuration from environment
func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	if v, ok := lookupEnv(prefix, "DB_SCHEMA"); ok {
		c.DBSchema = v
	}
	if v, ok := lookupEnv(prefix, "DB_AUTO_MIGRATE"); ok && v != "" {
		b, err := parseBoolEnv("DB_AUTO_MIGRATE", v)
		if err != nil {
			return err
		}
		c.AutoMigrate = b
	}

	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")
	if !hasURL || dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

// applyStorageEnv applies storage configuration from environment
func applyStorageEnv(prefix string, c *ServerConfig) error {
	if v, ok := lookupEnv(prefix, "MEDIA_URL_PREFIX"); ok && v != "" {
		c.MediaURLPrefix = strings.TrimSuffix(v, "/")
	}

	storageURL, hasURL := lookupEnv(prefix, "STORAGE_URL")
	if !hasURL || storageURL == "" || storageURL == "memory" || storageURL == "memory://" {
		c.Storage = StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		}
		return nil
	}

	switch {
	case strings.HasPrefix(storageURL, "file://"):
		return applyFilesystemStorage(storageURL, c)
	case strings.HasPrefix(storageURL, "s3://"):
		return applyS3Storage(storageURL, prefix, c)
	}

	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

// applyFilesystemStorage configures filesystem storage from URL
// Format: file:///path/to/media
func applyFilesystemStorage(storageURL string, c *ServerConfig) error {
	path := strings.TrimPrefix(storageURL, "file://")
	if path == "" {
		return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
	}

	c.Storage = StorageBackendConfig{
		Type: "fs",
		Config: map[string]interface{}{
			"base_dir": path,
		},
	}
	return nil
}

// applyS3Storage configures S3 storage from URL
// Format: s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true
func applyS3Storage(storageURL string, prefix string, c *ServerConfig) error {
	u, err := url.Parse(storageURL)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	config := map[string]interface{}{
		"bucket": u.Host,
		"region": "us-east-1",
	}

	query := u.Query()
	if v := query.Get("region"); v != "" {
		config["region"] = v
	}
	if v := query.Get("endpoint"); v != "" {
		config["endpoint"] = v
		// S3-compatible services are usually addressed path-style
		config["use_path_style"] = true
	}
	if v := query.Get("path_style"); v != "" {
		b, err := parseBoolEnv("STORAGE_URL path_style", v)
		if err != nil {
			return err
		}
		config["use_path_style"] = b
	}
	if v := query.Get("public_base_url"); v != "" {
		config["public_base_url"] = v
	}
	if v := query.Get("create_bucket"); v != "" {
		b, err := parseBoolEnv("STORAGE_URL create_bucket", v)
		if err != nil {
			return err
		}
		config["create_bucket_if_not_exist"] = b
	}
	if v := query.Get("presign_duration"); v != "" {
		n, err := parseIntEnv("STORAGE_URL presign_duration", v)
		if err != nil {
			return err
		}
		config["presign_duration"] = n
	}

	if v, ok := lookupEnv(prefix, "AWS_ACCESS_KEY_ID"); ok && v != "" {
		config["access_key_id"] = v
	}
	if v, ok := lookupEnv(prefix, "AWS_SECRET_ACCESS_KEY"); ok && v != "" {
		config["secret_access_key"] = v
	}

	c.Storage = StorageBackendConfig{
		Type:   "s3",
		Config: config,
	}
	return nil
}

// applyProvisioningEnv applies import options from environment
func applyProvisioningEnv(prefix string, c *ServerConfig) error {
	if v, ok := lookupEnv(prefix, "SIDELOAD_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration for SIDELOAD_TIMEOUT: %w", err)
		}
		c.SideloadTimeout = d
	}
	if v, ok := lookupEnv(prefix, "CATALOG_PATH"); ok {
		c.CatalogPath = v
	}
	if v, ok := lookupEnv(prefix, "FRONT_PAGE_POLICY"); ok && v != "" {
		c.FrontPagePolicy = strings.ToLower(v)
	}
	if v, ok := lookupEnv(prefix, "THEME_MENU_LOCATIONS"); ok {
		locations, err := ParseMenuLocations(v)
		if err != nil {
			return err
		}
		c.ThemeLocations = locations
	}
	return nil
}

// ParseMenuLocations parses "slug:Label,slug:Label". A slug without a label
// is labelled with the slug itself. An empty string declares no locations.
func ParseMenuLocations(value string) ([]democontent.MenuLocation, error) {
	var locations []democontent.MenuLocation
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		slug, label, _ := strings.Cut(part, ":")
		slug = strings.TrimSpace(slug)
		label = strings.TrimSpace(label)
		if slug == "" {
			return nil, fmt.Errorf("invalid menu location %q: slug is empty", part)
		}
		if label == "" {
			label = slug
		}
		locations = append(locations, democontent.MenuLocation{Slug: slug, Label: label})
	}
	return locations, nil
}

func lookupEnv(prefix, key string) (string, bool) {
	if prefix != "" {
		if v, ok := os.LookupEnv(prefix + key); ok {
			return v, true
		}
	}
	return os.LookupEnv(key)
}

func parseBoolEnv(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	return b, nil
}

func parseIntEnv(key, value string) (int, error) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, nil
}
