package config

import (
	"crypto/rand" // Needed for JWT generation
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the application.
type Config struct {
	// Server settings
	ListenAddress    string `yaml:"listen-address"`
	ListenPort       string `yaml:"listen-port"`
	MirrorListenPort string `yaml:"mirror-port"`

	// Storage settings
	StorageDriver string        `yaml:"storage-driver"` // "file" or "sqlite"
	DbFilePath    string        `yaml:"db-file"`
	SaveInterval  time.Duration `yaml:"save-interval"`
	EnableBackup  bool          `yaml:"enable-backup"`

	// Authentication settings
	JwtSecret     string        `yaml:"jwt-secret"`
	JwtSecretFile string        `yaml:"jwt-secret-file"`
	TokenLifetime time.Duration `yaml:"token-lifetime"`
	BcryptCost    int           `yaml:"bcrypt-cost"`

	// Remote (sync) settings
	RemoteKind    string        `yaml:"remote-kind"` // "none", "http" or "redis"
	RemoteURL     string        `yaml:"remote-url"`
	RedisAddr     string        `yaml:"redis-addr"`
	RedisPassword string        `yaml:"redis-password"`
	RedisDB       int           `yaml:"redis-db"`
	RedisPrefix   string        `yaml:"redis-prefix"`
	RemoteTimeout time.Duration `yaml:"remote-timeout"`

	// Background work
	KeepAliveInterval time.Duration `yaml:"keep-alive-interval"`
	BackupInterval    time.Duration `yaml:"backup-interval"`

	LogLevel string `yaml:"log-level"`

	// ConfigFile is the YAML file the settings above were read from, if any.
	ConfigFile string `yaml:"-"`
}

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Remote kinds.
const (
	RemoteNone  = "none"
	RemoteHTTP  = "http"
	RemoteRedis = "redis"
)

const envPrefix = "CREATORHUB_"

const (
	defaultAddress           = "0.0.0.0"
	defaultPort              = "8080"
	defaultMirrorPort        = "8090"
	defaultStorageDriver     = DriverFile
	defaultDbFile            = "./creatorhub.json" // Relative to working dir
	defaultSaveInterval      = 3 * time.Second
	defaultEnableBackup      = true
	defaultJwtKeyFile        = "./creatorhub.key" // Default file if we generate a key
	defaultTokenLifetime     = 24 * time.Hour
	defaultBcryptCost        = 12
	defaultRemoteKind        = RemoteNone
	defaultRedisAddr         = "127.0.0.1:6379"
	defaultRedisPrefix       = "creatorhub:sync:"
	defaultRemoteTimeout     = 5 * time.Second
	defaultKeepAliveInterval = 5 * time.Minute
	defaultBackupInterval    = 24 * time.Hour
	defaultLogLevel          = "info"
	defaultEnvFile           = ".env"
)

// Default returns the built-in configuration, before any file, environment or flag is applied.
func Default() *Config {
	return &Config{
		ListenAddress:     defaultAddress,
		ListenPort:        defaultPort,
		MirrorListenPort:  defaultMirrorPort,
		StorageDriver:     defaultStorageDriver,
		DbFilePath:        defaultDbFile,
		SaveInterval:      defaultSaveInterval,
		EnableBackup:      defaultEnableBackup,
		TokenLifetime:     defaultTokenLifetime,
		BcryptCost:        defaultBcryptCost,
		RemoteKind:        defaultRemoteKind,
		RedisAddr:         defaultRedisAddr,
		RedisPrefix:       defaultRedisPrefix,
		RemoteTimeout:     defaultRemoteTimeout,
		KeepAliveInterval: defaultKeepAliveInterval,
		BackupInterval:    defaultBackupInterval,
		LogLevel:          defaultLogLevel,
	}
}

// LoadConfig loads configuration from defaults, an optional YAML file, an optional .env file,
// environment variables and command-line flags, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	cfg := Default()

	// Flags are bound to a scratch copy; only the ones the user actually passed are applied at the end.
	fromFlags := Default()
	configFile := flag.String("config", "", "Path to a YAML configuration file (Env: CREATORHUB_CONFIG_FILE)")
	envFile := flag.String("env-file", defaultEnvFile, "Path to a .env file loaded into the environment if present")
	flag.StringVar(&fromFlags.ListenAddress, "address", defaultAddress, "Server listen address (Env: CREATORHUB_LISTEN_ADDRESS)")
	flag.StringVar(&fromFlags.ListenPort, "port", defaultPort, "Server listen port (Env: CREATORHUB_LISTEN_PORT)")
	flag.StringVar(&fromFlags.MirrorListenPort, "mirror-port", defaultMirrorPort, "Mirror server listen port (Env: CREATORHUB_MIRROR_PORT)")
	flag.StringVar(&fromFlags.StorageDriver, "storage", defaultStorageDriver, "Storage driver: file or sqlite (Env: CREATORHUB_STORAGE_DRIVER)")
	flag.StringVar(&fromFlags.DbFilePath, "db-file", defaultDbFile, "Path to the storage file (Env: CREATORHUB_DB_FILE_PATH)")
	flag.DurationVar(&fromFlags.SaveInterval, "save-interval", defaultSaveInterval, "Debounce interval for saving the JSON store (Env: CREATORHUB_SAVE_INTERVAL)")
	flag.BoolVar(&fromFlags.EnableBackup, "enable-backup", defaultEnableBackup, "Keep a .bak copy of the JSON store before each save (Env: CREATORHUB_ENABLE_BACKUP)")
	flag.StringVar(&fromFlags.JwtSecretFile, "jwt-secret-file", "", "Path to file containing JWT secret key (Env: CREATORHUB_JWT_SECRET_FILE)")
	flag.DurationVar(&fromFlags.TokenLifetime, "token-lifetime", defaultTokenLifetime, "Lifetime of issued tokens (Env: CREATORHUB_TOKEN_LIFETIME)")
	flag.IntVar(&fromFlags.BcryptCost, "bcrypt-cost", defaultBcryptCost, "Bcrypt cost for password hashes (Env: CREATORHUB_BCRYPT_COST)")
	flag.StringVar(&fromFlags.RemoteKind, "remote", defaultRemoteKind, "Remote store: none, http or redis (Env: CREATORHUB_REMOTE_KIND)")
	flag.StringVar(&fromFlags.RemoteURL, "remote-url", "", "Base URL of the mirror server (Env: CREATORHUB_REMOTE_URL)")
	flag.StringVar(&fromFlags.RedisAddr, "redis-addr", defaultRedisAddr, "Redis address (Env: CREATORHUB_REDIS_ADDR)")
	flag.IntVar(&fromFlags.RedisDB, "redis-db", 0, "Redis database number (Env: CREATORHUB_REDIS_DB)")
	flag.StringVar(&fromFlags.RedisPrefix, "redis-prefix", defaultRedisPrefix, "Key prefix for mirrored profiles in Redis (Env: CREATORHUB_REDIS_PREFIX)")
	flag.DurationVar(&fromFlags.RemoteTimeout, "remote-timeout", defaultRemoteTimeout, "Timeout for each remote call (Env: CREATORHUB_REMOTE_TIMEOUT)")
	flag.DurationVar(&fromFlags.KeepAliveInterval, "keep-alive", defaultKeepAliveInterval, "Session keep-alive interval, 0 disables (Env: CREATORHUB_KEEP_ALIVE_INTERVAL)")
	flag.DurationVar(&fromFlags.BackupInterval, "backup-interval", defaultBackupInterval, "Automatic backup interval, 0 disables (Env: CREATORHUB_BACKUP_INTERVAL)")
	flag.StringVar(&fromFlags.LogLevel, "log-level", defaultLogLevel, "Log level: debug, info, warn, error (Env: CREATORHUB_LOG_LEVEL)")

	flag.Parse()

	// The .env file only fills variables that are not already set, so real env still wins.
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("Failed to load env file '%s': %v", *envFile, err)
		}
	}

	if *configFile == "" {
		*configFile = getEnv(envPrefix+"CONFIG_FILE", "")
	}
	if *configFile != "" {
		if err := loadYAML(cfg, *configFile); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	flag.Visit(func(f *flag.Flag) {
		applyFlag(cfg, fromFlags, f.Name)
	})

	if err := validate(cfg); err != nil {
		return nil, err
	}

	secretSource, err := resolveJwtSecret(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DbFilePath != "" {
		absDbPath, err := filepath.Abs(cfg.DbFilePath)
		if err != nil {
			return nil, fmt.Errorf("could not determine absolute path for db-file '%s': %w", cfg.DbFilePath, err)
		}
		cfg.DbFilePath = absDbPath

		fileInfo, err := os.Stat(cfg.DbFilePath)
		if err == nil && fileInfo.IsDir() {
			return nil, fmt.Errorf("storage path '%s' points to a directory, not a file", cfg.DbFilePath)
		}
	}

	logConfiguration(cfg, secretSource)

	return cfg, nil
}

// loadYAML overlays the YAML file at path onto cfg.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file '%s': %w", path, err)
	}
	cfg.ConfigFile = path
	log.Infof("Loaded configuration file: %s", path)
	return nil
}

// applyEnv overrides cfg with any CREATORHUB_* environment variable that is set.
func applyEnv(cfg *Config) {
	cfg.ListenAddress = getEnv(envPrefix+"LISTEN_ADDRESS", cfg.ListenAddress)
	cfg.ListenPort = getEnv(envPrefix+"LISTEN_PORT", cfg.ListenPort)
	cfg.MirrorListenPort = getEnv(envPrefix+"MIRROR_PORT", cfg.MirrorListenPort)
	cfg.StorageDriver = getEnv(envPrefix+"STORAGE_DRIVER", cfg.StorageDriver)
	cfg.DbFilePath = getEnv(envPrefix+"DB_FILE_PATH", cfg.DbFilePath)
	cfg.SaveInterval = getEnvDuration(envPrefix+"SAVE_INTERVAL", cfg.SaveInterval)
	cfg.EnableBackup = getEnvBool(envPrefix+"ENABLE_BACKUP", cfg.EnableBackup)
	cfg.JwtSecretFile = getEnv(envPrefix+"JWT_SECRET_FILE", cfg.JwtSecretFile)
	cfg.TokenLifetime = getEnvDuration(envPrefix+"TOKEN_LIFETIME", cfg.TokenLifetime)
	cfg.BcryptCost = getEnvInt(envPrefix+"BCRYPT_COST", cfg.BcryptCost)
	cfg.RemoteKind = getEnv(envPrefix+"REMOTE_KIND", cfg.RemoteKind)
	cfg.RemoteURL = getEnv(envPrefix+"REMOTE_URL", cfg.RemoteURL)
	cfg.RedisAddr = getEnv(envPrefix+"REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv(envPrefix+"REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt(envPrefix+"REDIS_DB", cfg.RedisDB)
	cfg.RedisPrefix = getEnv(envPrefix+"REDIS_PREFIX", cfg.RedisPrefix)
	cfg.RemoteTimeout = getEnvDuration(envPrefix+"REMOTE_TIMEOUT", cfg.RemoteTimeout)
	cfg.KeepAliveInterval = getEnvDuration(envPrefix+"KEEP_ALIVE_INTERVAL", cfg.KeepAliveInterval)
	cfg.BackupInterval = getEnvDuration(envPrefix+"BACKUP_INTERVAL", cfg.BackupInterval)
	cfg.LogLevel = getEnv(envPrefix+"LOG_LEVEL", cfg.LogLevel)
}

// applyFlag copies one explicitly passed flag from src into cfg.
func applyFlag(cfg, src *Config, name string) {
	switch name {
	case "address":
		cfg.ListenAddress = src.ListenAddress
	case "port":
		cfg.ListenPort = src.ListenPort
	case "mirror-port":
		cfg.MirrorListenPort = src.MirrorListenPort
	case "storage":
		cfg.StorageDriver = src.StorageDriver
	case "db-file":
		cfg.DbFilePath = src.DbFilePath
	case "save-interval":
		cfg.SaveInterval = src.SaveInterval
	case "enable-backup":
		cfg.EnableBackup = src.EnableBackup
	case "jwt-secret-file":
		cfg.JwtSecretFile = src.JwtSecretFile
	case "token-lifetime":
		cfg.TokenLifetime = src.TokenLifetime
	case "bcrypt-cost":
		cfg.BcryptCost = src.BcryptCost
	case "remote":
		cfg.RemoteKind = src.RemoteKind
	case "remote-url":
		cfg.RemoteURL = src.RemoteURL
	case "redis-addr":
		cfg.RedisAddr = src.RedisAddr
	case "redis-db":
		cfg.RedisDB = src.RedisDB
	case "redis-prefix":
		cfg.RedisPrefix = src.RedisPrefix
	case "remote-timeout":
		cfg.RemoteTimeout = src.RemoteTimeout
	case "keep-alive":
		cfg.KeepAliveInterval = src.KeepAliveInterval
	case "backup-interval":
		cfg.BackupInterval = src.BackupInterval
	case "log-level":
		cfg.LogLevel = src.LogLevel
	}
}

func validate(cfg *Config) error {
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch cfg.StorageDriver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver '%s' (want %s or %s)", cfg.StorageDriver, DriverFile, DriverSQLite)
	}

	cfg.RemoteKind = strings.ToLower(strings.TrimSpace(cfg.RemoteKind))
	switch cfg.RemoteKind {
	case "":
		cfg.RemoteKind = RemoteNone
	case RemoteNone, RemoteRedis:
	case RemoteHTTP:
		if cfg.RemoteURL == "" {
			return errors.New("remote kind 'http' requires a remote-url")
		}
	default:
		return fmt.Errorf("unknown remote kind '%s' (want none, http or redis)", cfg.RemoteKind)
	}

	if cfg.RemoteTimeout <= 0 {
		log.Warnf("Non-positive remote timeout %s, using default %s", cfg.RemoteTimeout, defaultRemoteTimeout)
		cfg.RemoteTimeout = defaultRemoteTimeout
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.Warnf("Invalid log level '%s', using '%s'", cfg.LogLevel, defaultLogLevel)
		cfg.LogLevel = defaultLogLevel
	}
	return nil
}

// resolveJwtSecret fills cfg.JwtSecret.
// Priority: File (flag/env/yaml) > CREATORHUB_JWT_SECRET or yaml jwt-secret > default key file > generate.
func resolveJwtSecret(cfg *Config) (string, error) {
	var secretSource string

	if cfg.JwtSecretFile != "" {
		secretBytes, err := os.ReadFile(cfg.JwtSecretFile)
		if err == nil {
			if secret := strings.TrimSpace(string(secretBytes)); secret != "" {
				cfg.JwtSecret = secret
				log.Infof("Loaded JWT secret from specified file: %s", cfg.JwtSecretFile)
				return fmt.Sprintf("File (%s)", cfg.JwtSecretFile), nil
			}
			log.Warnf("Specified JWT secret file '%s' is empty. Ignoring.", cfg.JwtSecretFile)
		} else {
			log.Warnf("Failed to read specified JWT secret file '%s': %v. Checking other sources.", cfg.JwtSecretFile, err)
		}
	}

	if envSecret := strings.TrimSpace(getEnv(envPrefix+"JWT_SECRET", "")); envSecret != "" {
		cfg.JwtSecret = envSecret
		return "Environment Variable (" + envPrefix + "JWT_SECRET)", nil
	}
	if cfg.JwtSecret = strings.TrimSpace(cfg.JwtSecret); cfg.JwtSecret != "" {
		return "Config File", nil
	}

	secretBytes, err := os.ReadFile(defaultJwtKeyFile)
	if err == nil {
		if secret := strings.TrimSpace(string(secretBytes)); secret != "" {
			cfg.JwtSecret = secret
			log.Infof("Loaded JWT secret from default key file: %s", defaultJwtKeyFile)
			return fmt.Sprintf("Default Key File (%s)", defaultJwtKeyFile), nil
		}
		log.Warnf("Default JWT key file '%s' is empty. Will generate a new secret.", defaultJwtKeyFile)
	} else if !os.IsNotExist(err) {
		log.Warnf("Failed to read default JWT key file '%s': %v. Will generate a new secret.", defaultJwtKeyFile, err)
	}

	log.Info("JWT secret not found via file, environment or default key file. Generating a new secret...")
	newSecret, err := generateRandomKey(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.JwtSecret = newSecret
	secretSource = "Generated (In Memory)"

	if err := os.WriteFile(defaultJwtKeyFile, []byte(newSecret), 0600); err != nil {
		log.Warnf("Failed to save generated JWT secret to '%s': %v. The key is valid for this run only.", defaultJwtKeyFile, err)
	} else {
		secretSource = fmt.Sprintf("Generated & Saved (%s)", defaultJwtKeyFile)
	}
	return secretSource, nil
}

// ConfigureLogging applies the configured level to the global logger.
func ConfigureLogging(cfg *Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvBool recognizes "true", "1", "yes" and "false", "0", "no" (case-insensitive).
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		log.Warnf("Invalid boolean value for environment variable %s: '%s'. Using: %t", key, value, fallback)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		log.Warnf("Invalid integer in %s: '%s'. Using: %d", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
		log.Warnf("Invalid duration in %s: '%s'. Using: %s", key, value, fallback)
	}
	return fallback
}

// logConfiguration prints the loaded configuration settings.
func logConfiguration(cfg *Config, secretSource string) {
	log.Info("--- Configuration ---")
	if cfg.ConfigFile != "" {
		log.Infof("Config File: %s", cfg.ConfigFile)
	}
	log.Infof("Server Address: %s", cfg.ListenAddress)
	log.Infof("Server Port: %s", cfg.ListenPort)
	log.Infof("Mirror Port: %s", cfg.MirrorListenPort)
	log.Infof("Storage: %s (%s)", cfg.StorageDriver, cfg.DbFilePath)
	log.Infof("Save Interval: %s, Backup Enabled: %t", cfg.SaveInterval, cfg.EnableBackup)
	log.Infof("JWT Secret Source: %s", secretSource)
	log.Infof("JWT Token Lifetime: %s", cfg.TokenLifetime)
	log.Infof("Bcrypt Cost: %d", cfg.BcryptCost)
	switch cfg.RemoteKind {
	case RemoteHTTP:
		log.Infof("Remote: http (%s), timeout %s", cfg.RemoteURL, cfg.RemoteTimeout)
	case RemoteRedis:
		log.Infof("Remote: redis (%s db %d, prefix %q), timeout %s", cfg.RedisAddr, cfg.RedisDB, cfg.RedisPrefix, cfg.RemoteTimeout)
	default:
		log.Info("Remote: none")
	}
	log.Infof("Keep-Alive Interval: %s, Backup Interval: %s", cfg.KeepAliveInterval, cfg.BackupInterval)
	log.Infof("Log Level: %s", cfg.LogLevel)
	log.Info("---------------------")
}

// generateRandomKey returns length cryptographically secure random bytes, hex-encoded.
func generateRandomKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
