package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Database vendors.
const (
	VendorPostgres = "postgres"
	VendorSQLite   = "sqlite"
)

// DatabaseFile is the optional database settings file in the setup folder.
const DatabaseFile = "database.toml"

type Config struct {
	SetupFolder    string // PLATFORM_SETUP_FOLDER (default ".")
	InitialFolder  string // <setup folder>/platform_conf/initial
	CurrentFolder  string // <setup folder>/platform_conf/current
	LicensesFolder string // <setup folder>/platform_conf/licenses

	DBVendor    string // PLATFORM_DB_VENDOR, then database.toml vendor (default "postgres")
	DatabaseURL string // PLATFORM_DATABASE_URL, then database.toml url (required for postgres)
	UseDefaults bool   // PLATFORM_SETUP_DEFAULTS (default true)
	NATSURL     string // PLATFORM_NATS_URL (optional, empty = no events)

	// Export settings
	ExportS3Bucket   string // PLATFORM_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string // PLATFORM_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string // PLATFORM_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string // PLATFORM_EXPORT_S3_KEY (default "platform/configuration.jsonl")
	ExportGitRepo    string // PLATFORM_EXPORT_GIT_REPO (enables git when set; path to clone)
	ExportGitFile    string // PLATFORM_EXPORT_GIT_FILE (default "configuration.jsonl")
	ExportGitBranch  string // PLATFORM_EXPORT_GIT_BRANCH (default "main")
}

// databaseFile mirrors database.toml.
type databaseFile struct {
	Vendor string `toml:"vendor"`
	URL    string `toml:"url"`
}

// Load reads .env from the working directory when present, then builds the
// configuration from the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the environment and the database
// settings file of the setup folder.
func FromEnv() (*Config, error) {
	setupFolder := envOrDefault("PLATFORM_SETUP_FOLDER", ".")
	confFolder := filepath.Join(setupFolder, "platform_conf")
	c := &Config{
		SetupFolder:      setupFolder,
		InitialFolder:    filepath.Join(confFolder, "initial"),
		CurrentFolder:    filepath.Join(confFolder, "current"),
		LicensesFolder:   filepath.Join(confFolder, "licenses"),
		NATSURL:          os.Getenv("PLATFORM_NATS_URL"),
		ExportS3Bucket:   os.Getenv("PLATFORM_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("PLATFORM_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("PLATFORM_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("PLATFORM_EXPORT_S3_KEY", "platform/configuration.jsonl"),
		ExportGitRepo:    os.Getenv("PLATFORM_EXPORT_GIT_REPO"),
		ExportGitFile:    envOrDefault("PLATFORM_EXPORT_GIT_FILE", "configuration.jsonl"),
		ExportGitBranch:  envOrDefault("PLATFORM_EXPORT_GIT_BRANCH", "main"),
	}

	useDefaults, err := strconv.ParseBool(envOrDefault("PLATFORM_SETUP_DEFAULTS", "true"))
	if err != nil {
		return nil, fmt.Errorf("PLATFORM_SETUP_DEFAULTS: %w", err)
	}
	c.UseDefaults = useDefaults

	dbFile, err := loadDatabaseFile(filepath.Join(setupFolder, DatabaseFile))
	if err != nil {
		return nil, err
	}
	c.DBVendor = envOrDefault("PLATFORM_DB_VENDOR", orDefault(dbFile.Vendor, VendorPostgres))
	c.DatabaseURL = envOrDefault("PLATFORM_DATABASE_URL", dbFile.URL)

	switch c.DBVendor {
	case VendorPostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("PLATFORM_DATABASE_URL is required for vendor %s", VendorPostgres)
		}
	case VendorSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = filepath.Join(setupFolder, "database", "platform.db")
		}
	default:
		return nil, fmt.Errorf("PLATFORM_DB_VENDOR: unsupported vendor %q (want %s or %s)", c.DBVendor, VendorPostgres, VendorSQLite)
	}

	return c, nil
}

func loadDatabaseFile(path string) (databaseFile, error) {
	var f databaseFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return databaseFile{}, nil
		}
		return databaseFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err == nil {
		return godotenv.Load(path)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
