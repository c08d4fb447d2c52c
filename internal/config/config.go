package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"smart-certify/certify-backend/internal/certificates"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `json:"server"`
	Database      DatabaseConfig      `json:"database"`
	Security      SecurityConfig      `json:"security"`
	Certificates  CertificatesConfig  `json:"certificates"`
	Letters       LettersConfig       `json:"letters"`
	Storage       StorageConfig       `json:"storage"`
	Notifications NotificationsConfig `json:"notifications"`
	Logging       LoggingConfig       `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	ReadTimeout    time.Duration `json:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout"`
	IdleTimeout    time.Duration `json:"idle_timeout"`
	AllowedOrigins []string      `json:"allowed_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
	AutoMigrate    bool          `json:"auto_migrate"`
}

// SecurityConfig holds token and rate limit settings
type SecurityConfig struct {
	JWTSecret       string        `json:"jwt_secret"`
	TokenTTL        time.Duration `json:"token_ttl"`
	BcryptCost      int           `json:"bcrypt_cost"`
	VerifyRateLimit int           `json:"verify_rate_limit"` // requests per minute per client IP
}

// CertificatesConfig configures rendering and the maintenance jobs
type CertificatesConfig struct {
	OutputDir            string                   `json:"output_dir"`
	UniqueFilenames      bool                     `json:"unique_filenames"`
	Compress             bool                     `json:"compress"`
	StripAllDashes       bool                     `json:"strip_all_dashes"`
	StripSignatureBlocks bool                     `json:"strip_signature_blocks"`
	Institution          certificates.Institution `json:"institution"`
	Signatory            certificates.Signatory   `json:"signatory"`
	TempSweepSchedule    string                   `json:"temp_sweep_schedule"`
	TempMaxAge           time.Duration            `json:"temp_max_age"`
	ArchiveSchedule      string                   `json:"archive_schedule"`
}

// LettersConfig points at an Azure OpenAI compatible chat completions deployment
type LettersConfig struct {
	Endpoint    string        `json:"endpoint"`
	APIKey      string        `json:"api_key"`
	Deployment  string        `json:"deployment"`
	APIVersion  string        `json:"api_version"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
}

// StorageConfig configures the S3 archive
type StorageConfig struct {
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	Prefix   string `json:"prefix"`
	Endpoint string `json:"endpoint"`
}

// NotificationsConfig configures event fan-out
type NotificationsConfig struct {
	SNSTopicARN string `json:"sns_topic_arn"`
	WebSocket   bool   `json:"websocket"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	tmpl := certificates.DefaultTemplate()
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           5000,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			DBName:         "smart_certify",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    time.Hour,
			AutoMigrate:    true,
		},
		Security: SecurityConfig{
			TokenTTL:        24 * time.Hour,
			BcryptCost:      10,
			VerifyRateLimit: 10,
		},
		Certificates: CertificatesConfig{
			OutputDir:            "certificates",
			Compress:             true,
			StripAllDashes:       true,
			StripSignatureBlocks: true,
			Institution:          tmpl.Institution,
			Signatory:            tmpl.Signatory,
			TempSweepSchedule:    "@every 15m",
			TempMaxAge:           time.Hour,
			ArchiveSchedule:      "@hourly",
		},
		Letters: LettersConfig{
			APIVersion:  "2024-02-15-preview",
			MaxTokens:   1000,
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			Prefix: "certificates/",
		},
		Notifications: NotificationsConfig{
			WebSocket: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// A missing file is fine; a malformed one is not.
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

func overrideWithEnv(config *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("SERVER_HOST", &config.Server.Host)
	num("SERVER_PORT", &config.Server.Port)
	num("PORT", &config.Server.Port)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = splitList(origins)
	}

	str("DATABASE_HOST", &config.Database.Host)
	num("DATABASE_PORT", &config.Database.Port)
	str("DATABASE_USER", &config.Database.User)
	str("DATABASE_PASSWORD", &config.Database.Password)
	str("DATABASE_DBNAME", &config.Database.DBName)
	str("DATABASE_SSLMODE", &config.Database.SSLMode)
	flag("DATABASE_AUTO_MIGRATE", &config.Database.AutoMigrate)

	str("JWT_SECRET", &config.Security.JWTSecret)
	dur("JWT_TTL", &config.Security.TokenTTL)

	str("CERTIFICATES_DIR", &config.Certificates.OutputDir)
	flag("CERTIFICATES_UNIQUE_FILENAMES", &config.Certificates.UniqueFilenames)
	str("CERTIFICATES_TEMP_SWEEP_SCHEDULE", &config.Certificates.TempSweepSchedule)
	str("CERTIFICATES_ARCHIVE_SCHEDULE", &config.Certificates.ArchiveSchedule)

	str("AZURE_OPENAI_ENDPOINT", &config.Letters.Endpoint)
	str("AZURE_OPENAI_API_KEY", &config.Letters.APIKey)
	str("AZURE_OPENAI_DEPLOYMENT", &config.Letters.Deployment)
	str("AZURE_OPENAI_API_VERSION", &config.Letters.APIVersion)

	str("AWS_REGION", &config.Storage.Region)
	str("ARCHIVE_BUCKET", &config.Storage.Bucket)
	str("ARCHIVE_PREFIX", &config.Storage.Prefix)
	str("S3_ENDPOINT", &config.Storage.Endpoint)

	str("SNS_TOPIC_ARN", &config.Notifications.SNSTopicARN)

	str("LOG_LEVEL", &config.Logging.Level)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the settings the API server cannot start without.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret (JWT_SECRET) is required")
	}
	if c.Certificates.OutputDir == "" {
		return errors.New("certificates.output_dir is required")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost %d out of range", c.Security.BcryptCost)
	}
	return nil
}

// GeneratorOptions maps the certificates section onto generator options.
func (c *CertificatesConfig) GeneratorOptions() certificates.Options {
	opts := certificates.DefaultOptions()
	opts.OutputDir = c.OutputDir
	opts.UniqueFilenames = c.UniqueFilenames
	opts.Compress = c.Compress
	opts.Sanitize = certificates.SanitizeOptions{
		StripAllDashes:       c.StripAllDashes,
		StripSignatureBlocks: c.StripSignatureBlocks,
	}
	if c.Institution.Name != "" {
		opts.Template.Institution = c.Institution
	}
	if c.Signatory.Name != "" {
		opts.Template.Signatory = c.Signatory
	}
	return opts
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
