package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Redis        RedisConfig        `mapstructure:"redis"`
	MySQL        MySQLConfig        `mapstructure:"mysql"`
	Leader       LeaderConfig       `mapstructure:"leader"`
	Instance     InstanceConfig     `mapstructure:"instance"`
	WebSocket    WebSocketConfig    `mapstructure:"websocket"`
	Admin        AdminConfig        `mapstructure:"admin"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RedisConfig struct {
	Address       string        `mapstructure:"address"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	StoreCacheTTL time.Duration `mapstructure:"store_cache_ttl"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type LeaderConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	Key string        `mapstructure:"key"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

// WebSocketConfig controls the dashboard notification channel. Path must not collide with
// any dev-server hot reload endpoint.
type WebSocketConfig struct {
	Path           string        `mapstructure:"path"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type SubscriptionConfig struct {
	ExpirySweep string `mapstructure:"expiry_sweep"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.store_cache_ttl", 10*time.Minute)
	v.SetDefault("mysql.dsn", "storefront_user:storefront_pass@tcp(localhost:3306)/storefront_db?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 25)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("leader.ttl", 30*time.Second)
	v.SetDefault("leader.key", "storefront_leader")
	v.SetDefault("instance.id", "storefront-service-1")
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.send_buffer", 64)
	v.SetDefault("websocket.write_timeout", 10*time.Second)
	v.SetDefault("websocket.read_limit", 4096)
	v.SetDefault("websocket.allowed_origins", []string{})
	v.SetDefault("admin.api_key", "")
	v.SetDefault("subscription.expiry_sweep", "@every 1m")
	v.SetDefault("log.level", "info")
}

func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.store_cache_ttl", "REDIS_STORE_CACHE_TTL")
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	v.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	v.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")
	v.BindEnv("leader.ttl", "LEADER_TTL")
	v.BindEnv("leader.key", "LEADER_KEY")
	v.BindEnv("instance.id", "INSTANCE_ID")
	v.BindEnv("websocket.path", "WEBSOCKET_PATH")
	v.BindEnv("websocket.send_buffer", "WEBSOCKET_SEND_BUFFER")
	v.BindEnv("websocket.write_timeout", "WEBSOCKET_WRITE_TIMEOUT")
	v.BindEnv("admin.api_key", "ADMIN_API_KEY")
	v.BindEnv("subscription.expiry_sweep", "SUBSCRIPTION_EXPIRY_SWEEP")
	v.BindEnv("log.level", "LOG_LEVEL")
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Configuration file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront/")

	bindEnv(v)

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path, layered over the defaults.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
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
	if c.WebSocket.Path == "" || c.WebSocket.Path[0] != '/' {
		return fmt.Errorf("websocket.path must start with '/': %q", c.WebSocket.Path)
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket.send_buffer must be positive: %d", c.WebSocket.SendBuffer)
	}
	if c.Leader.TTL < 3*time.Second {
		return fmt.Errorf("leader.ttl too short: %s", c.Leader.TTL)
	}
	return nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Redis: %s, WebSocket: %s, Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Redis.Address,
		c.WebSocket.Path,
		c.Instance.ID,
	)
}
