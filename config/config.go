package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Storage  StorageConfig
	Mail     MailConfig
	Kafka    KafkaConfig
	Payment  PaymentConfig
	Pricing  PricingConfig
	Catalog  CatalogConfig
	Log      LogConfig
	HTTP     HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name      string
	Env       string
	Port      string
	PublicURL string // storefront URL used in email links
}

// DatabaseConfig holds database connection settings.
// URL takes precedence over the individual fields when set.
type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings. An empty URL selects the in-memory history store.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// JWTConfig holds token verification and guest token settings
type JWTConfig struct {
	SupabaseSecret string // HS256 secret of the Supabase project
	GuestSecret    string
	GuestTTL       time.Duration
}

// AdminConfig holds admin access settings
type AdminConfig struct {
	APIKey string
}

// StorageConfig selects and configures object storage for images
type StorageConfig struct {
	Driver          string // local or s3
	LocalDir        string
	PublicBaseURL   string
	Bucket          string
	Region          string
	Endpoint        string
	AccessKey       string
	SecretKey       string
	UsePathStyle    bool
	BackupDir       string
	BackupHour      int
	BackupRetention time.Duration
}

// MailConfig holds transactional email settings
type MailConfig struct {
	ResendAPIKey string
	From         string
	AdminEmail   string
}

// KafkaConfig holds order event publishing settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PaymentConfig holds payment webhook settings
type PaymentConfig struct {
	WebhookSecret string
}

// DeliveryDateConfig is one shipping option offered at checkout
type DeliveryDateConfig struct {
	Name                 string  `mapstructure:"name"`
	DaysToDeliver        int     `mapstructure:"days_to_deliver"`
	ShippingPrice        float64 `mapstructure:"shipping_price"`
	FreeShippingMinPrice float64 `mapstructure:"free_shipping_min_price"`
}

// PricingConfig holds cart pricing settings
type PricingConfig struct {
	Currency      string
	TaxRate       float64
	DeliveryDates []DeliveryDateConfig
}

// CatalogConfig holds product listing settings
type CatalogConfig struct {
	PageSize int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	MaxUploadBytes    int64
	CORSAllowOrigins  []string
	ContactRateLimit  int           // requests allowed per window and client IP
	ContactRateWindow time.Duration // window for ContactRateLimit
}

// DefaultDeliveryDates is the shipping table used when none is configured
var DefaultDeliveryDates = []DeliveryDateConfig{
	{Name: "Tomorrow", DaysToDeliver: 1, ShippingPrice: 12.9},
	{Name: "Next 3 Days", DaysToDeliver: 3, ShippingPrice: 6.9},
	{Name: "Next 5 Days", DaysToDeliver: 5, ShippingPrice: 4.9, FreeShippingMinPrice: 35},
}

// Load loads configuration from .env, TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STORE_ prefix (e.g., STORE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("app.name"),
			Env:       v.GetString("app.env"),
			Port:      v.GetString("app.port"),
			PublicURL: v.GetString("app.public_url"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("database.url"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("redis.url"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
		JWT: JWTConfig{
			SupabaseSecret: v.GetString("jwt.supabase_secret"),
			GuestSecret:    v.GetString("jwt.guest_secret"),
			GuestTTL:       v.GetDuration("jwt.guest_ttl"),
		},
		Admin: AdminConfig{
			APIKey: v.GetString("admin.api_key"),
		},
		Storage: StorageConfig{
			Driver:          v.GetString("storage.driver"),
			LocalDir:        v.GetString("storage.local_dir"),
			PublicBaseURL:   v.GetString("storage.public_base_url"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKey:       v.GetString("storage.access_key"),
			SecretKey:       v.GetString("storage.secret_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			BackupDir:       v.GetString("storage.backup_dir"),
			BackupHour:      v.GetInt("storage.backup_hour"),
			BackupRetention: v.GetDuration("storage.backup_retention"),
		},
		Mail: MailConfig{
			ResendAPIKey: v.GetString("mail.resend_api_key"),
			From:         v.GetString("mail.from"),
			AdminEmail:   v.GetString("mail.admin_email"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetStringSlice("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
		Payment: PaymentConfig{
			WebhookSecret: v.GetString("payment.webhook_secret"),
		},
		Pricing: PricingConfig{
			Currency: v.GetString("pricing.currency"),
			TaxRate:  v.GetFloat64("pricing.tax_rate"),
		},
		Catalog: CatalogConfig{
			PageSize: v.GetInt("catalog.page_size"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxUploadBytes:    v.GetInt64("http.max_upload_bytes"),
			CORSAllowOrigins:  splitList(v.GetStringSlice("http.cors_allow_origins")),
			ContactRateLimit:  v.GetInt("http.contact_rate_limit"),
			ContactRateWindow: v.GetDuration("http.contact_rate_window"),
		},
	}

	if v.IsSet("pricing.delivery_dates") {
		if err := v.UnmarshalKey("pricing.delivery_dates", &cfg.Pricing.DeliveryDates); err != nil {
			return nil, fmt.Errorf("invalid pricing.delivery_dates: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both TOML arrays and comma separated env values
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-api"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:3000"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.JWT.GuestSecret == "" {
		cfg.JWT.GuestSecret = cfg.JWT.SupabaseSecret
	}
	if cfg.JWT.GuestTTL == 0 {
		cfg.JWT.GuestTTL = 24 * time.Hour
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./uploads"
	}
	if cfg.Storage.PublicBaseURL == "" && cfg.Storage.Driver == "local" {
		cfg.Storage.PublicBaseURL = "/uploads"
	}
	if cfg.Storage.BackupHour == 0 {
		cfg.Storage.BackupHour = 2
	}
	if cfg.Storage.BackupRetention == 0 {
		cfg.Storage.BackupRetention = 4 * 24 * time.Hour
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "Store <onboarding@resend.dev>"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "order-events"
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "USD"
	}
	if cfg.Pricing.TaxRate == 0 {
		cfg.Pricing.TaxRate = 0.15
	}
	if len(cfg.Pricing.DeliveryDates) == 0 {
		cfg.Pricing.DeliveryDates = append([]DeliveryDateConfig(nil), DefaultDeliveryDates...)
	}
	if cfg.Catalog.PageSize == 0 {
		cfg.Catalog.PageSize = 9
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxUploadBytes == 0 {
		cfg.HTTP.MaxUploadBytes = 8 << 20 // 8MB
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{cfg.App.PublicURL}
	}
	if cfg.HTTP.ContactRateLimit == 0 {
		cfg.HTTP.ContactRateLimit = 5
	}
	if cfg.HTTP.ContactRateWindow == 0 {
		cfg.HTTP.ContactRateWindow = time.Minute
	}
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Storage.Driver != "local" && c.Storage.Driver != "s3" {
		return fmt.Errorf("storage.driver must be local or s3, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "s3" && c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required for the s3 driver")
	}
	if c.Storage.BackupHour < 0 || c.Storage.BackupHour > 23 {
		return fmt.Errorf("storage.backup_hour must be between 0 and 23, got %d", c.Storage.BackupHour)
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.TaxRate >= 1 {
		return fmt.Errorf("pricing.tax_rate must be in [0, 1), got %v", c.Pricing.TaxRate)
	}
	for i, d := range c.Pricing.DeliveryDates {
		if d.Name == "" || d.DaysToDeliver < 0 || d.ShippingPrice < 0 || d.FreeShippingMinPrice < 0 {
			return fmt.Errorf("pricing.delivery_dates[%d] is invalid", i)
		}
	}

	if c.IsProduction() {
		if c.JWT.SupabaseSecret == "" {
			return errors.New("jwt.supabase_secret is required in production")
		}
		if c.Admin.APIKey == "" {
			return errors.New("admin.api_key is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return errors.New("http.cors_allow_origins cannot be '*' in production")
			}
		}
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
