package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Id allocation strategies.
const (
	IDStrategyCounter = "counter"
	IDStrategyRandom  = "random"
	IDStrategyRedis   = "redis"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	IDs       IDConfig        `mapstructure:"ids"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Host      string `mapstructure:"host"`
	BodyLimit string `mapstructure:"body_limit"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
	IDKey    string `mapstructure:"id_key"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type IDConfig struct {
	Strategy string `mapstructure:"strategy"`
}

type SchedulerConfig struct {
	Spec string `mapstructure:"spec"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AnalyticsConfig is read by the analytics service only; it shares the
// server host but listens on its own port.
type AnalyticsConfig struct {
	Port int `mapstructure:"port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.body_limit", "8M")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "auction_events")
	v.SetDefault("redis.id_key", "auction_id_counter")
	v.SetDefault("mysql.dsn", "auction_user:auction_pass@tcp(localhost:3306)/auction_db?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 25)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("ids.strategy", IDStrategyCounter)
	v.SetDefault("scheduler.spec", "@every 1s")
	v.SetDefault("log.level", "info")
	v.SetDefault("analytics.port", 8081)
}

func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()

	// Environment variable mappings
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.body_limit", "SERVER_BODY_LIMIT")
	_ = v.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("redis.address", "REDIS_ADDRESS")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("redis.channel", "REDIS_CHANNEL")
	_ = v.BindEnv("redis.id_key", "REDIS_ID_KEY")
	_ = v.BindEnv("mysql.dsn", "MYSQL_DSN")
	_ = v.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	_ = v.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	_ = v.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")
	_ = v.BindEnv("ids.strategy", "IDS_STRATEGY")
	_ = v.BindEnv("scheduler.spec", "SCHEDULER_SPEC")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("analytics.port", "ANALYTICS_PORT")
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Configuration file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/auction-ledger/")

	bindEnv(v)

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.IDs.Strategy {
	case IDStrategyCounter, IDStrategyRandom:
	case IDStrategyRedis:
		if !c.Redis.Enabled {
			return errors.New("ids.strategy redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("unknown ids.strategy %q", c.IDs.Strategy)
	}
	if !validPort(c.Server.Port) {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if !validPort(c.Analytics.Port) {
		return fmt.Errorf("invalid analytics.port %d", c.Analytics.Port)
	}
	return nil
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

// LoadPath reads configPath when it is set and falls back to the default
// lookup otherwise.
func LoadPath(configPath string) (*Config, error) {
	if configPath == "" {
		return Load()
	}
	return LoadFromFile(configPath)
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Redis: %t@%s, IDs: %s, Scheduler: %s",
		c.Server.Host,
		c.Server.Port,
		c.Redis.Enabled,
		c.Redis.Address,
		c.IDs.Strategy,
		c.Scheduler.Spec,
	)
}
