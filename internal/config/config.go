package config

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Batch    BatchConfig    `mapstructure:"batch"`

	// Source is the config file that was read, empty when only defaults and
	// environment were used.
	Source string `mapstructure:"-"`
}

type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	BaseURL      string          `mapstructure:"baseURL"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	Driver            string        `mapstructure:"driver"`
	URL               string        `mapstructure:"url"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	Name              string        `mapstructure:"name"`
	SSLMode           string        `mapstructure:"sslMode"`
	ConnectRetryDelay time.Duration `mapstructure:"connectRetryDelay"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

type RabbitMQConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	ExchangeName string `mapstructure:"exchangeName"`
}

type BatchConfig struct {
	StatsSchedule string        `mapstructure:"statsSchedule"`
	StatsTimeout  time.Duration `mapstructure:"statsTimeout"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.baseURL", "")
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.rps", 10)
	v.SetDefault("server.rateLimit.burst", 20)
	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.connectRetryDelay", 5*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.exchangeName", "customer-service")
	v.SetDefault("batch.statsSchedule", "*/5 * * * *")
	v.SetDefault("batch.statsTimeout", 30*time.Second)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Source = v.ConfigFileUsed()

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver != DriverMemory && cfg.Database.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	return &cfg, nil
}

type vcapBinding struct {
	Credentials struct {
		URI string `json:"uri"`
	} `json:"credentials"`
}

// ConnString resolves the postgres URI: explicit url, then a VCAP_SERVICES
// binding, then the discrete host/port/credential fields.
func (c DatabaseConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	if uri := vcapDatabaseURI(os.Getenv("VCAP_SERVICES")); uri != "" {
		return uri
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	} else if c.Username != "" {
		u.User = url.User(c.Username)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

func vcapDatabaseURI(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	var services map[string][]vcapBinding
	if err := json.Unmarshal([]byte(raw), &services); err != nil {
		log.Printf("Ignoring malformed VCAP_SERVICES: %v", err)
		return ""
	}
	for _, bindings := range services {
		for _, b := range bindings {
			if strings.HasPrefix(b.Credentials.URI, "postgres") {
				return b.Credentials.URI
			}
		}
	}
	return ""
}
