package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string         `mapstructure:"port"`
	DB       DBConfig       `mapstructure:"db"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cart     CartConfig     `mapstructure:"cart"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Platform PlatformConfig `mapstructure:"platform"`
	App      AppConfig      `mapstructure:"app"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres | mysql
	Source string `mapstructure:"source"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CartConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"` // ว่าง = ไม่ใช้ mqtt
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

type StripeConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	SecretKey string `mapstructure:"secret_key"`
	Currency  string `mapstructure:"currency"`
}

type PlatformConfig struct {
	FeePercentage float64 `mapstructure:"fee_percentage"`
}

type AppConfig struct {
	URL              string `mapstructure:"url"`
	RootDomain       string `mapstructure:"root_domain"`
	SubdomainRouting bool   `mapstructure:"subdomain_routing"`
}

type BlobConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type NotifyConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

var defaults = map[string]any{
	"port":                    "8000",
	"db.driver":               "sqlite",
	"db.source":               "souq.db",
	"jwt.secret":              "changeme",
	"jwt.ttl":                 "24h",
	"redis.addr":              "localhost:6379",
	"redis.password":          "",
	"redis.db":                0,
	"cart.ttl":                "720h",
	"mqtt.broker":             "",
	"mqtt.client_id":          "souq-api",
	"mqtt.username":           "",
	"mqtt.password":           "",
	"mqtt.topic_prefix":       "souq",
	"stripe.base_url":         "https://api.stripe.com",
	"stripe.secret_key":       "",
	"stripe.currency":         "usd",
	"platform.fee_percentage": 10.0,
	"app.url":                 "http://localhost:3000",
	"app.root_domain":         "localhost:3000",
	"app.subdomain_routing":   false,
	"blob.dir":                "./uploads",
	"blob.base_url":           "/uploads",
	"log.level":               "info",
	"log.format":              "json",
	"admin.email":             "",
	"admin.password":          "",
	"notify.delay":            "100ms",
}

// LoadConfig: .env (ถ้ามี) -> config.yaml (ถ้ามี) -> env SOUQ_* ทับ
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // ไม่มีไฟล์ .env ก็ไม่เป็นไร

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("./deploy/")

	v.SetEnvPrefix("SOUQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Platform.FeePercentage < 0 || cfg.Platform.FeePercentage > 100 {
		return nil, fmt.Errorf("platform.fee_percentage must be within 0..100, got %v", cfg.Platform.FeePercentage)
	}
	return &cfg, nil
}

// TenantURL = หน้าร้านของ tenant (subdomain หรือ path)
func (c *Config) TenantURL(slug string) string {
	if c.App.SubdomainRouting && c.App.RootDomain != "" {
		protocol := "https"
		if strings.HasPrefix(c.App.URL, "http://") {
			protocol = "http"
		}
		return fmt.Sprintf("%s://%s.%s", protocol, slug, c.App.RootDomain)
	}
	return fmt.Sprintf("%s/tenants/%s", strings.TrimRight(c.App.URL, "/"), slug)
}
