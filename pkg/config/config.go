package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置，来源优先级：环境变量 > config.yaml > 默认值
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Log      LogConfig
	Task     TaskConfig
}

type ServerConfig struct {
	Port            string
	Mode            string // gin mode: debug | release | test
	ShutdownTimeout time.Duration
	CaptureCooldown time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

// StoreConfig 商家信息存储后端
// gorm: 直连数据库；rest: 通过 PostgREST 风格的 HTTP 接口读取
type StoreConfig struct {
	Driver  string
	RestURL string
	RestKey string
	Timeout time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type StorageConfig struct {
	Provider  string // s3 | local
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	CDNDomain string
	BasePath  string
}

type LogConfig struct {
	Mode string // dev | prod
}

type TaskConfig struct {
	SnapshotAuditCron string
	AuditOnStart      bool
}

const (
	StoreDriverGorm = "gorm"
	StoreDriverRest = "rest"
)

// 环境变量与配置键的映射，键名沿用 config.yaml 的层级写法
var envBindings = map[string]string{
	"server.port":             "SERVER_PORT",
	"server.mode":             "GIN_MODE",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",
	"server.capture_cooldown": "CAPTURE_COOLDOWN",

	"database.dsn":               "DATABASE_DSN",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"database.log_sql":           "DATABASE_LOG_SQL",

	"store.driver":   "STORE_DRIVER",
	"store.rest_url": "STORE_REST_URL",
	"store.rest_key": "STORE_REST_KEY",
	"store.timeout":  "STORE_TIMEOUT",

	"jwt.secret": "JWT_SECRET",
	"jwt.ttl":    "JWT_TTL",
	"jwt.issuer": "JWT_ISSUER",

	"storage.provider":   "STORAGE_PROVIDER",
	"storage.bucket":     "STORAGE_BUCKET",
	"storage.region":     "STORAGE_REGION",
	"storage.access_key": "STORAGE_ACCESS_KEY",
	"storage.secret_key": "STORAGE_SECRET_KEY",
	"storage.endpoint":   "STORAGE_ENDPOINT",
	"storage.cdn_domain": "STORAGE_CDN_DOMAIN",
	"storage.base_path":  "STORAGE_BASE_PATH",

	"log.mode": "LOG_MODE",

	"task.snapshot_audit_cron": "SNAPSHOT_AUDIT_CRON",
	"task.audit_on_start":      "SNAPSHOT_AUDIT_ON_START",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.capture_cooldown", 5*time.Second)

	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=storefront port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_sql", false)

	v.SetDefault("store.driver", StoreDriverGorm)
	v.SetDefault("store.timeout", 5*time.Second)

	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.issuer", "storefront")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.base_path", "uploads")

	v.SetDefault("log.mode", "dev")

	v.SetDefault("task.snapshot_audit_cron", "0 15 3 * * *")
	v.SetDefault("task.audit_on_start", false)
}

// Load 读取配置；path 为空时在当前目录与 ./config 下查找 config.yaml，找不到不报错
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			Mode:            v.GetString("server.mode"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			CaptureCooldown: v.GetDuration("server.capture_cooldown"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			LogSQL:          v.GetBool("database.log_sql"),
		},
		Store: StoreConfig{
			Driver:  strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
			RestURL: v.GetString("store.rest_url"),
			RestKey: v.GetString("store.rest_key"),
			Timeout: v.GetDuration("store.timeout"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Storage: StorageConfig{
			Provider:  strings.ToLower(v.GetString("storage.provider")),
			Bucket:    v.GetString("storage.bucket"),
			Region:    v.GetString("storage.region"),
			AccessKey: v.GetString("storage.access_key"),
			SecretKey: v.GetString("storage.secret_key"),
			Endpoint:  v.GetString("storage.endpoint"),
			CDNDomain: v.GetString("storage.cdn_domain"),
			BasePath:  v.GetString("storage.base_path"),
		},
		Log: LogConfig{
			Mode: v.GetString("log.mode"),
		},
		Task: TaskConfig{
			SnapshotAuditCron: v.GetString("task.snapshot_audit_cron"),
			AuditOnStart:      v.GetBool("task.audit_on_start"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 启动前的基本校验
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverGorm:
	case StoreDriverRest:
		if c.Store.RestURL == "" {
			return errors.New("STORE_DRIVER=rest 时必须配置 STORE_REST_URL")
		}
	default:
		return fmt.Errorf("未知的 STORE_DRIVER: %q", c.Store.Driver)
	}

	switch c.Storage.Provider {
	case "local", "s3":
	default:
		return fmt.Errorf("未知的 STORAGE_PROVIDER: %q", c.Storage.Provider)
	}

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT 不能为空")
	}
	return nil
}

// ValidateServe 启动服务前的额外校验
// release 模式下必须配置 JWT_SECRET，否则任何人都能用默认密钥签发令牌
func (c *Config) ValidateServe() error {
	if c.Server.Mode == "release" && c.JWT.Secret == "" {
		return errors.New("release 模式必须配置 JWT_SECRET")
	}
	return nil
}
