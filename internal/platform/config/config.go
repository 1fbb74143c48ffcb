package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	domain "github.com/tailor-field/configurator/internal/domain"
)

const (
	defaultEnvFile                 = ".env"
	defaultPort                    = "8080"
	defaultReadTimeout             = 15 * time.Second
	defaultWriteTimeout            = 30 * time.Second
	defaultIdleTimeout             = 120 * time.Second
	defaultClothingTypesCollection = "clothingTypes"
	defaultCheckoutTopic           = "configurator-orders"
	defaultCatalogFetchTimeout     = 5 * time.Second
	defaultSessionTTL              = 2 * time.Hour
	defaultMaxSessions             = 10000
	defaultSessionCreateLimit      = 30
	defaultSessionCreateWindow     = time.Minute
	defaultStandardSize            = "m"
	defaultFitType                 = "regular"
	defaultCustomSurcharge         = int64(2500)
	defaultCurrency                = "USD"
	defaultLogLevel                = "info"
	defaultIdempotencyTTL          = 30 * time.Minute
	defaultIdempotencyCleanup      = 5 * time.Minute
	defaultIdempotencyHeader       = "Idempotency-Key"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server        ServerConfig
	Firestore     FirestoreConfig
	Checkout      CheckoutConfig
	Catalog       CatalogConfig
	Sessions      SessionConfig
	Measurement   MeasurementConfig
	Idempotency   IdempotencyConfig
	Observability ObservabilityConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirestoreConfig stores database parameters. An empty ProjectID disables the Firestore catalog.
type FirestoreConfig struct {
	ProjectID               string
	EmulatorHost            string
	ClothingTypesCollection string
}

// Enabled reports whether a Firestore project is configured.
func (c FirestoreConfig) Enabled() bool { return strings.TrimSpace(c.ProjectID) != "" }

// CheckoutConfig locates the Pub/Sub topic order submissions are published to.
// An empty ProjectID disables checkout.
type CheckoutConfig struct {
	ProjectID    string
	TopicID      string
	EmulatorHost string
}

// Enabled reports whether a checkout topic is configured.
func (c CheckoutConfig) Enabled() bool {
	return strings.TrimSpace(c.ProjectID) != "" && strings.TrimSpace(c.TopicID) != ""
}

// CatalogConfig controls catalog lookups.
type CatalogConfig struct {
	FetchTimeout     time.Duration
	UseSampleCatalog bool
}

// SessionConfig bounds the in-memory session registry. CreateLimit sessions may be opened per
// client within CreateWindow; a non-positive limit disables the check.
type SessionConfig struct {
	TTL          time.Duration
	MaxSessions  int
	CreateLimit  int
	CreateWindow time.Duration
}

// MeasurementConfig holds per-session defaults for the measurement step and pricing.
type MeasurementConfig struct {
	DefaultSize     string
	DefaultFit      string
	CustomSurcharge int64
	Currency        string
}

// IdempotencyConfig controls replay of retried submissions. A zero CleanupInterval disables the sweeper.
// Header names the request header carrying the key; RequireKey rejects submits that omit it.
type IdempotencyConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	Header          string
	RequireKey      bool
}

// ObservabilityConfig controls logging and trace correlation.
type ObservabilityConfig struct {
	LogLevel string
	// TraceProjectID is the Cloud project used to build log-to-trace links. Defaults to the Firestore project.
	TraceProjectID string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. An empty path skips the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

type lookupFunc func(key string) (string, bool)

// Load assembles the configuration from defaults, the .env file, the process environment and an
// explicit map, in increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnv[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "CONFIGURATOR_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "CONFIGURATOR_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "CONFIGURATOR_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "CONFIGURATOR_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firestore: FirestoreConfig{
			ProjectID:               stringWithDefault(lookup, "CONFIGURATOR_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:            stringWithDefault(lookup, "CONFIGURATOR_FIRESTORE_EMULATOR_HOST", ""),
			ClothingTypesCollection: stringWithDefault(lookup, "CONFIGURATOR_FIRESTORE_CLOTHING_TYPES_COLLECTION", defaultClothingTypesCollection),
		},
		Checkout: CheckoutConfig{
			ProjectID:    stringWithDefault(lookup, "CONFIGURATOR_CHECKOUT_PROJECT_ID", ""),
			TopicID:      stringWithDefault(lookup, "CONFIGURATOR_CHECKOUT_TOPIC", defaultCheckoutTopic),
			EmulatorHost: stringWithDefault(lookup, "CONFIGURATOR_CHECKOUT_EMULATOR_HOST", ""),
		},
		Catalog: CatalogConfig{
			FetchTimeout:     durationWithDefault(lookup, "CONFIGURATOR_CATALOG_FETCH_TIMEOUT", defaultCatalogFetchTimeout),
			UseSampleCatalog: boolWithDefault(lookup, "CONFIGURATOR_CATALOG_USE_SAMPLES", true),
		},
		Sessions: SessionConfig{
			TTL:          durationWithDefault(lookup, "CONFIGURATOR_SESSIONS_TTL", defaultSessionTTL),
			MaxSessions:  intWithDefault(lookup, "CONFIGURATOR_SESSIONS_MAX", defaultMaxSessions),
			CreateLimit:  intWithDefault(lookup, "CONFIGURATOR_SESSIONS_CREATE_LIMIT", defaultSessionCreateLimit),
			CreateWindow: durationWithDefault(lookup, "CONFIGURATOR_SESSIONS_CREATE_WINDOW", defaultSessionCreateWindow),
		},
		Measurement: MeasurementConfig{
			DefaultSize:     strings.ToLower(stringWithDefault(lookup, "CONFIGURATOR_MEASUREMENT_DEFAULT_SIZE", defaultStandardSize)),
			DefaultFit:      strings.ToLower(stringWithDefault(lookup, "CONFIGURATOR_MEASUREMENT_DEFAULT_FIT", defaultFitType)),
			CustomSurcharge: int64WithDefault(lookup, "CONFIGURATOR_MEASUREMENT_CUSTOM_SURCHARGE", defaultCustomSurcharge),
			Currency:        strings.ToUpper(stringWithDefault(lookup, "CONFIGURATOR_MEASUREMENT_CURRENCY", defaultCurrency)),
		},
		Idempotency: IdempotencyConfig{
			TTL:             durationWithDefault(lookup, "CONFIGURATOR_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval: durationWithDefault(lookup, "CONFIGURATOR_IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyCleanup),
			Header:          stringWithDefault(lookup, "CONFIGURATOR_IDEMPOTENCY_HEADER", defaultIdempotencyHeader),
			RequireKey:      boolWithDefault(lookup, "CONFIGURATOR_IDEMPOTENCY_REQUIRE_KEY", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:       strings.ToLower(stringWithDefault(lookup, "CONFIGURATOR_LOG_LEVEL", defaultLogLevel)),
			TraceProjectID: stringWithDefault(lookup, "CONFIGURATOR_TRACE_PROJECT_ID", ""),
		},
	}

	// Checkout publishes into the Firestore project unless told otherwise.
	if cfg.Checkout.ProjectID == "" {
		cfg.Checkout.ProjectID = cfg.Firestore.ProjectID
	}
	if cfg.Observability.TraceProjectID == "" {
		cfg.Observability.TraceProjectID = cfg.Firestore.ProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if !cfg.Catalog.UseSampleCatalog && !cfg.Firestore.Enabled() {
		invalid = append(invalid, "Firestore.ProjectID")
	}
	if cfg.Firestore.Enabled() && strings.TrimSpace(cfg.Firestore.ClothingTypesCollection) == "" {
		invalid = append(invalid, "Firestore.ClothingTypesCollection")
	}
	if cfg.Catalog.FetchTimeout <= 0 {
		invalid = append(invalid, "Catalog.FetchTimeout")
	}
	if cfg.Sessions.TTL <= 0 {
		invalid = append(invalid, "Sessions.TTL")
	}
	if cfg.Sessions.MaxSessions <= 0 {
		invalid = append(invalid, "Sessions.MaxSessions")
	}
	if cfg.Sessions.CreateLimit > 0 && cfg.Sessions.CreateWindow <= 0 {
		invalid = append(invalid, "Sessions.CreateWindow")
	}
	if cfg.Idempotency.TTL <= 0 {
		invalid = append(invalid, "Idempotency.TTL")
	}
	if cfg.Idempotency.CleanupInterval < 0 {
		invalid = append(invalid, "Idempotency.CleanupInterval")
	}
	if !domain.IsStandardSize(cfg.Measurement.DefaultSize) {
		invalid = append(invalid, "Measurement.DefaultSize")
	}
	if !domain.IsFitType(cfg.Measurement.DefaultFit) {
		invalid = append(invalid, "Measurement.DefaultFit")
	}
	if cfg.Measurement.CustomSurcharge < 0 {
		invalid = append(invalid, "Measurement.CustomSurcharge")
	}
	if len(cfg.Measurement.Currency) != 3 {
		invalid = append(invalid, "Measurement.Currency")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if d, err := cast.ToDurationE(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup lookupFunc, key string, fallback int) int {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if parsed, err := cast.ToIntE(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func int64WithDefault(lookup lookupFunc, key string, fallback int64) int64 {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if parsed, err := cast.ToInt64E(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup lookupFunc, key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		}
		if parsed, err := cast.ToBoolE(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
