package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	OSS          OSSConfig          `mapstructure:"oss"`
	Email        EmailConfig        `mapstructure:"email"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Notification NotificationConfig `mapstructure:"notification"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Pricing      PricingConfig      `mapstructure:"pricing"`
	Billing      BillingConfig      `mapstructure:"billing"`
	Maintenance  MaintenanceConfig  `mapstructure:"maintenance"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	SiteName string `mapstructure:"site_name"`
}

type QueueConfig struct {
	NotificationQueue string `mapstructure:"notification_queue"`
	MaxWorkers        int    `mapstructure:"max_workers"`
}

type NotificationConfig struct {
	Mode           string `mapstructure:"mode"` // inline, sync, queue
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type PricingConfig struct {
	MinSessions int `mapstructure:"min_sessions"`
	MaxSessions int `mapstructure:"max_sessions"`
}

type BillingConfig struct {
	SubscriptionPrefix string `mapstructure:"subscription_prefix"`
	InvoicePrefix      string `mapstructure:"invoice_prefix"`
	InvoiceDueDays     int    `mapstructure:"invoice_due_days"`
	DefaultBookingTime string `mapstructure:"default_booking_time"`
	CodeRetries        int    `mapstructure:"code_retries"`
}

type MaintenanceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load(configPath string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("queue.notification_queue", "notification_jobs")
	v.SetDefault("queue.max_workers", 2)
	v.SetDefault("notification.mode", "inline")
	v.SetDefault("notification.timeout_seconds", 60)
	v.SetDefault("pricing.min_sessions", 4)
	v.SetDefault("pricing.max_sessions", 20)
	v.SetDefault("billing.subscription_prefix", "SUB")
	v.SetDefault("billing.invoice_prefix", "INV")
	v.SetDefault("billing.invoice_due_days", 7)
	v.SetDefault("billing.default_booking_time", "09:00")
	v.SetDefault("billing.code_retries", 3)
}

// WithDefaults 填充未配置的计费参数，便于在测试中直接构造 Config
func (c *Config) WithDefaults() *Config {
	if c.Pricing.MinSessions == 0 {
		c.Pricing.MinSessions = 4
	}
	if c.Pricing.MaxSessions == 0 {
		c.Pricing.MaxSessions = 20
	}
	if c.Billing.SubscriptionPrefix == "" {
		c.Billing.SubscriptionPrefix = "SUB"
	}
	if c.Billing.InvoicePrefix == "" {
		c.Billing.InvoicePrefix = "INV"
	}
	if c.Billing.InvoiceDueDays == 0 {
		c.Billing.InvoiceDueDays = 7
	}
	if c.Billing.DefaultBookingTime == "" {
		c.Billing.DefaultBookingTime = "09:00"
	}
	if c.Billing.CodeRetries == 0 {
		c.Billing.CodeRetries = 3
	}
	return c
}
