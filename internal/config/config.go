package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Session       SessionConfig       `mapstructure:"session"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Search        SearchConfig        `mapstructure:"search"`
	Log           LogConfig           `mapstructure:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置，driver 为 postgres 或 sqlite
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置，Host 为空表示不启用（会话无法服务端吊销）
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled 是否配置了 Redis
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	PublicEndpoint string `mapstructure:"public_endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// Enabled 是否配置了 Kafka
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// VideoEventsTopic 视频事件 topic
func (k *KafkaConfig) VideoEventsTopic() string {
	if t := k.Topics["video_events"]; t != "" {
		return t
	}
	return "video-events"
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts []string          `mapstructure:"hosts"`
	Index map[string]string `mapstructure:"index"`
}

// Enabled 是否配置了 Elasticsearch
func (e *ElasticsearchConfig) Enabled() bool {
	return len(e.Hosts) > 0
}

// SearchIndexEnabled 搜索是否走 ES：索引由 worker 消费 Kafka 事件维护，两者都配置才启用
func (c *Config) SearchIndexEnabled() bool {
	return c.Elasticsearch.Enabled() && c.Kafka.Enabled()
}

// VideosIndex 视频索引名
func (e *ElasticsearchConfig) VideosIndex() string {
	if name := e.Index["videos"]; name != "" {
		return name
	}
	return "videos"
}

// SessionConfig 会话配置（JWT 签名的 Cookie）
type SessionConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
	CookieName  string `mapstructure:"cookie_name"`
	Secure      bool   `mapstructure:"secure"`
}

// ExpireDuration 返回过期时间
func (s *SessionConfig) ExpireDuration() time.Duration {
	return time.Duration(s.ExpireHours) * time.Hour
}

// StorageConfig 媒体文件存储配置，driver 为 local 或 minio
type StorageConfig struct {
	Driver            string `mapstructure:"driver"`
	Root              string `mapstructure:"root"`
	VideoDir          string `mapstructure:"video_dir"`
	ThumbnailDir      string `mapstructure:"thumbnail_dir"`
	VideoBucket       string `mapstructure:"video_bucket"`
	ThumbnailBucket   string `mapstructure:"thumbnail_bucket"`
	MaxVideoMB        int64  `mapstructure:"max_video_mb"`
	MaxThumbnailMB    int64  `mapstructure:"max_thumbnail_mb"`
	MaxMultipartMemMB int64  `mapstructure:"max_multipart_memory_mb"`
}

// MaxVideoBytes 视频大小上限（字节）
func (s *StorageConfig) MaxVideoBytes() int64 {
	return s.MaxVideoMB << 20
}

// MaxThumbnailBytes 封面大小上限（字节）
func (s *StorageConfig) MaxThumbnailBytes() int64 {
	return s.MaxThumbnailMB << 20
}

// SearchConfig 搜索配置
type SearchConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

var globalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vidshare")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.port", 8000)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "vidshare.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("kafka.group_id", "vidshare-search-indexer")

	v.SetDefault("session.expire_hours", 24)
	v.SetDefault("session.cookie_name", "vidshare_session")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.root", "Uploads")
	v.SetDefault("storage.video_dir", "Videos")
	v.SetDefault("storage.thumbnail_dir", "Thumbnails")
	v.SetDefault("storage.video_bucket", "videos")
	v.SetDefault("storage.thumbnail_bucket", "thumbnails")
	v.SetDefault("storage.max_video_mb", 100)
	v.SetDefault("storage.max_thumbnail_mb", 5)
	v.SetDefault("storage.max_multipart_memory_mb", 32)

	v.SetDefault("search.max_results", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// Load 加载配置文件；同目录下的 .env 会先被加载进环境变量
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// DATABASE_PASSWORD -> database.password
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Session.Secret == "" {
		return nil, errors.New("session.secret must be set")
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}
