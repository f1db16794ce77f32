package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Roster server configurations

# The name of the server.
name: "{{ .Name }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Minimum log level. Valid values are "debug", "info", "warn", and "error".
  level: "{{ .Log.Level }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP API server configuration.
http:
  # Enable the HTTP API server.
  enabled: {{ .HTTP.Enabled }}

  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The path to the TLS private key.
  tls_key_path: "{{ .HTTP.TLSKeyPath }}"

  # The path to the TLS certificate.
  tls_cert_path: "{{ .HTTP.TLSCertPath }}"

  # The public URL of the HTTP server.
  # Invitation links point to this address.
  # Make sure to use https:// if you are using TLS.
  public_url: "{{ .HTTP.PublicURL }}"

  # The cross-origin request configuration.
  cors:
    allowed_headers:{{ range .HTTP.CORS.AllowedHeaders }}
      - "{{ . }}"{{ end }}
    allowed_origins:{{ range .HTTP.CORS.AllowedOrigins }}
      - "{{ . }}"{{ end }}
    allowed_methods:{{ range .HTTP.CORS.AllowedMethods }}
      - "{{ . }}"{{ end }}

# The stats server configuration.
stats:
  # Enable the stats server.
  enabled: {{ .Stats.Enabled }}

  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# The database configuration.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  data_source: "{{ .DB.DataSource }}"

# API token configuration.
auth:
  # The path to the Ed25519 key used to sign API tokens.
  # It will be generated if it doesn't exist.
  key_path: "{{ .Auth.KeyPath }}"

  # The default lifetime of issued tokens (e.g. 1h, 7d).
  token_expiry: "{{ .Auth.TokenExpiry }}"

# Invitation policy.
invitations:
  # Number of days an invitation is valid for when not specified (1-30).
  default_expiry_days: {{ .Invitations.DefaultExpiryDays }}

  # Glob patterns invited email addresses must match. Empty allows any.
  #allowed_emails:
  #  - "*@example.com"

# Invitation notification channels.
notify:
  webhook:
    # Endpoint invitation notifications are posted to.
    url: "{{ .Notify.Webhook.URL }}"
    # Secret used to sign webhook payloads.
    #secret: ""
    # Either "application/json" or "application/x-www-form-urlencoded".
    content_type: "{{ .Notify.Webhook.ContentType }}"

  smtp:
    # SMTP server used to email invitations. Leave empty to disable.
    host: "{{ .Notify.SMTP.Host }}"
    port: {{ .Notify.SMTP.Port }}
    #username: ""
    #password: ""
    from: "{{ .Notify.SMTP.From }}"

# Cron jobs configuration.
jobs:
  # Cron spec for pruning old notification deliveries.
  prune_deliveries: "{{ .Jobs.PruneDeliveries }}"

  # How long notification deliveries are kept (e.g. 30d).
  delivery_retention: "{{ .Jobs.DeliveryRetention }}"
`))

func newConfigFile(cfg *Config) string {
	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}
