package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/duration"
	"github.com/caarlos0/env/v11"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

var binPath = "roster"

// ErrNilConfig is returned when a nil config is passed to a function.
var ErrNilConfig = errors.New("nil config")

// CORSConfig is the CORS configuration for the HTTP server.
type CORSConfig struct {
	AllowedHeaders []string `env:"ALLOWED_HEADERS" yaml:"allowed_headers"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	AllowedMethods []string `env:"ALLOWED_METHODS" yaml:"allowed_methods"`
}

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// Enabled toggles the HTTP API server.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// TLSKeyPath is the path to the TLS private key.
	TLSKeyPath string `env:"TLS_KEY_PATH" yaml:"tls_key_path"`

	// TLSCertPath is the path to the TLS certificate.
	TLSCertPath string `env:"TLS_CERT_PATH" yaml:"tls_cert_path"`

	// PublicURL is the public URL of the HTTP server. Invitation links and
	// token issuers are derived from it.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`

	// CORS is the CORS configuration.
	CORS CORSConfig `envPrefix:"CORS_" yaml:"cors"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// Enabled toggles the stats server.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`

	// Level is the minimum level to log. Debug mode overrides it.
	Level string `env:"LEVEL" yaml:"level"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// AuthConfig is the configuration for issuing and verifying API tokens.
type AuthConfig struct {
	// KeyPath is the path to the Ed25519 private key used to sign tokens.
	KeyPath string `env:"KEY_PATH" yaml:"key_path"`

	// TokenExpiry is the default lifetime of issued tokens, e.g. "1h" or "7d".
	TokenExpiry string `env:"TOKEN_EXPIRY" yaml:"token_expiry"`
}

// InvitationsConfig is the configuration for organization invitations.
type InvitationsConfig struct {
	// DefaultExpiryDays is the number of days an invitation stays valid when
	// the sender doesn't specify one.
	DefaultExpiryDays int `env:"DEFAULT_EXPIRY_DAYS" yaml:"default_expiry_days"`

	// AllowedEmails is a list of glob patterns invited addresses must match.
	// An empty list allows any address.
	AllowedEmails []string `env:"ALLOWED_EMAILS" yaml:"allowed_emails"`
}

// WebhookConfig is the configuration for the webhook notification channel.
type WebhookConfig struct {
	// URL is the endpoint notifications are posted to.
	URL string `env:"URL" yaml:"url"`

	// Secret signs the payload when set.
	Secret string `env:"SECRET" yaml:"secret"`

	// ContentType is either "application/json" or
	// "application/x-www-form-urlencoded".
	ContentType string `env:"CONTENT_TYPE" yaml:"content_type"`
}

// SMTPConfig is the configuration for the email notification channel.
type SMTPConfig struct {
	Host     string `env:"HOST" yaml:"host"`
	Port     int    `env:"PORT" yaml:"port"`
	Username string `env:"USERNAME" yaml:"username"`
	Password string `env:"PASSWORD" yaml:"password"`
	From     string `env:"FROM" yaml:"from"`
}

// NotifyConfig is the configuration for invitation notifications.
type NotifyConfig struct {
	Webhook WebhookConfig `envPrefix:"WEBHOOK_" yaml:"webhook"`
	SMTP    SMTPConfig    `envPrefix:"SMTP_" yaml:"smtp"`
}

// JobsConfig is the configuration for cron jobs.
type JobsConfig struct {
	// PruneDeliveries is the cron spec of the notification delivery pruning job.
	PruneDeliveries string `env:"PRUNE_DELIVERIES" yaml:"prune_deliveries"`

	// DeliveryRetention is how long notification deliveries are kept.
	DeliveryRetention string `env:"DELIVERY_RETENTION" yaml:"delivery_retention"`
}

// Config is the configuration for Roster.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// Auth is the token configuration.
	Auth AuthConfig `envPrefix:"AUTH_" yaml:"auth"`

	// Invitations is the invitation policy.
	Invitations InvitationsConfig `envPrefix:"INVITATIONS_" yaml:"invitations"`

	// Notify is the notification channels configuration.
	Notify NotifyConfig `envPrefix:"NOTIFY_" yaml:"notify"`

	// Jobs is the configuration for cron jobs
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// DataPath is the path to the directory where Roster will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	envs := []string{
		fmt.Sprintf("ROSTER_BIN_PATH=%s", binPath),
	}
	if c == nil {
		return envs
	}

	envs = append(envs, []string{
		fmt.Sprintf("ROSTER_DATA_PATH=%s", c.DataPath),
		fmt.Sprintf("ROSTER_NAME=%s", c.Name),
		fmt.Sprintf("ROSTER_HTTP_ENABLED=%t", c.HTTP.Enabled),
		fmt.Sprintf("ROSTER_HTTP_LISTEN_ADDR=%s", c.HTTP.ListenAddr),
		fmt.Sprintf("ROSTER_HTTP_TLS_KEY_PATH=%s", c.HTTP.TLSKeyPath),
		fmt.Sprintf("ROSTER_HTTP_TLS_CERT_PATH=%s", c.HTTP.TLSCertPath),
		fmt.Sprintf("ROSTER_HTTP_PUBLIC_URL=%s", c.HTTP.PublicURL),
		fmt.Sprintf("ROSTER_HTTP_CORS_ALLOWED_HEADERS=%s", strings.Join(c.HTTP.CORS.AllowedHeaders, ",")),
		fmt.Sprintf("ROSTER_HTTP_CORS_ALLOWED_ORIGINS=%s", strings.Join(c.HTTP.CORS.AllowedOrigins, ",")),
		fmt.Sprintf("ROSTER_HTTP_CORS_ALLOWED_METHODS=%s", strings.Join(c.HTTP.CORS.AllowedMethods, ",")),
		fmt.Sprintf("ROSTER_STATS_ENABLED=%t", c.Stats.Enabled),
		fmt.Sprintf("ROSTER_STATS_LISTEN_ADDR=%s", c.Stats.ListenAddr),
		fmt.Sprintf("ROSTER_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("ROSTER_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("ROSTER_LOG_LEVEL=%s", c.Log.Level),
		fmt.Sprintf("ROSTER_DB_DRIVER=%s", c.DB.Driver),
		fmt.Sprintf("ROSTER_DB_DATA_SOURCE=%s", c.DB.DataSource),
		fmt.Sprintf("ROSTER_AUTH_KEY_PATH=%s", c.Auth.KeyPath),
		fmt.Sprintf("ROSTER_AUTH_TOKEN_EXPIRY=%s", c.Auth.TokenExpiry),
		fmt.Sprintf("ROSTER_INVITATIONS_DEFAULT_EXPIRY_DAYS=%d", c.Invitations.DefaultExpiryDays),
		fmt.Sprintf("ROSTER_INVITATIONS_ALLOWED_EMAILS=%s", strings.Join(c.Invitations.AllowedEmails, ",")),
		fmt.Sprintf("ROSTER_NOTIFY_WEBHOOK_URL=%s", c.Notify.Webhook.URL),
		fmt.Sprintf("ROSTER_NOTIFY_WEBHOOK_CONTENT_TYPE=%s", c.Notify.Webhook.ContentType),
		fmt.Sprintf("ROSTER_NOTIFY_SMTP_HOST=%s", c.Notify.SMTP.Host),
		fmt.Sprintf("ROSTER_NOTIFY_SMTP_PORT=%d", c.Notify.SMTP.Port),
		fmt.Sprintf("ROSTER_NOTIFY_SMTP_FROM=%s", c.Notify.SMTP.From),
		fmt.Sprintf("ROSTER_JOBS_PRUNE_DELIVERIES=%s", c.Jobs.PruneDeliveries),
		fmt.Sprintf("ROSTER_JOBS_DELIVERY_RETENTION=%s", c.Jobs.DeliveryRetention),
	}...)

	return envs
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("ROSTER_DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("ROSTER_VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	// Merge allowed origins from both config file and environment variables.
	origins := append([]string{}, cfg.HTTP.CORS.AllowedOrigins...)

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "ROSTER_",
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	if os.Getenv("ROSTER_HTTP_CORS_ALLOWED_ORIGINS") != "" {
		cfg.HTTP.CORS.AllowedOrigins = append(origins, cfg.HTTP.CORS.AllowedOrigins...)
	}

	return cfg.Validate()
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o600) // nolint: errcheck
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the ROSTER_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv("ROSTER_DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file.
// ROSTER_CONFIG_LOCATION takes precedence when it points to an existing file.
func (c *Config) ConfigPath() string { // nolint:revive
	if path := os.Getenv("ROSTER_CONFIG_LOCATION"); exist(path) {
		return path
	}

	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	return &Config{
		Name:     "Roster",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			Enabled:    true,
			ListenAddr: ":23240",
			PublicURL:  "http://localhost:23240",
			CORS: CORSConfig{
				AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
				AllowedOrigins: []string{"http://localhost:23240"},
				AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			},
		},
		Stats: StatsConfig{
			Enabled:    true,
			ListenAddr: "localhost:23241",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
			Level:      "info",
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "roster.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite&_txlock=immediate",
		},
		Auth: AuthConfig{
			KeyPath:     filepath.Join("keys", "roster_ed25519"),
			TokenExpiry: "1h",
		},
		Invitations: InvitationsConfig{
			DefaultExpiryDays: 7,
		},
		Notify: NotifyConfig{
			Webhook: WebhookConfig{
				ContentType: "application/json",
			},
			SMTP: SMTPConfig{
				Port: 587,
			},
		},
		Jobs: JobsConfig{
			PruneDeliveries:   "@daily",
			DeliveryRetention: "30d",
		},
	}
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")

	if c.Auth.KeyPath != "" && !filepath.IsAbs(c.Auth.KeyPath) {
		c.Auth.KeyPath = filepath.Join(c.DataPath, c.Auth.KeyPath)
	}

	if c.HTTP.TLSKeyPath != "" && !filepath.IsAbs(c.HTTP.TLSKeyPath) {
		c.HTTP.TLSKeyPath = filepath.Join(c.DataPath, c.HTTP.TLSKeyPath)
	}

	if c.HTTP.TLSCertPath != "" && !filepath.IsAbs(c.HTTP.TLSCertPath) {
		c.HTTP.TLSCertPath = filepath.Join(c.DataPath, c.HTTP.TLSCertPath)
	}

	if strings.HasPrefix(c.DB.Driver, "sqlite") && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}

	if d := c.Invitations.DefaultExpiryDays; d != 0 && (d < 1 || d > 30) {
		return fmt.Errorf("invalid default invitation expiry: %d days, must be between 1 and 30", d)
	}

	for _, p := range c.Invitations.AllowedEmails {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid allowed email pattern %q: %w", p, err)
		}
	}

	for _, d := range []string{c.Auth.TokenExpiry, c.Jobs.DeliveryRetention} {
		if d == "" {
			continue
		}
		if _, err := duration.Parse(d); err != nil {
			return fmt.Errorf("invalid duration %q: %w", d, err)
		}
	}

	return nil
}

// TokenExpiry returns the parsed token lifetime, defaulting to one hour.
func (c *Config) TokenExpiry() time.Duration {
	d, err := duration.Parse(c.Auth.TokenExpiry)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// DeliveryRetention returns the parsed notification delivery retention.
// Zero means deliveries are kept forever.
func (c *Config) DeliveryRetention() time.Duration {
	if c.Jobs.DeliveryRetention == "" {
		return 0
	}
	d, _ := duration.Parse(c.Jobs.DeliveryRetention)
	return d
}

// InvitationURL returns the public link to an invitation.
func (c *Config) InvitationURL(id string) string {
	return c.HTTP.PublicURL + "/invitations/" + id
}

func init() {
	ex, err := os.Executable()
	if err != nil {
		ex = "roster"
	}
	ex = filepath.ToSlash(ex)
	binPath = ex
}
