package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Elastic   ElasticConfig
	AI        AIConfig
	Retrieval RetrievalConfig
	Chat      ChatConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Log       LogConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// ElasticConfig Elasticsearch配置
type ElasticConfig struct {
	Host        string
	Username    string
	Password    string
	IndexPrefix string
}

// AIConfig AI配置
type AIConfig struct {
	Provider  string
	OpenAI    OpenAIConfig
	Alibaba   AlibabaConfig
	DeepSeek  DeepSeekConfig
	Embedding EmbeddingConfig
}

// OpenAIConfig OpenAI配置
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// AlibabaConfig 阿里云配置
type AlibabaConfig struct {
	AccessKeySecret string
	Model           string
}

// DeepSeekConfig DeepSeek配置
type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// EmbeddingConfig Embedding配置
type EmbeddingConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    int
	Dimensions int
	MaxRunes   int
}

// RetrievalConfig 检索配置
type RetrievalConfig struct {
	Backend      string // memory, elasticsearch
	TopK         int
	PreviewChars int
	ChunkSize    int
	ChunkOverlap int
}

// ChatConfig 对话配置
type ChatConfig struct {
	LLMTimeout        int // 秒，单次 LLM 调用
	HistoryTTL        int // 秒
	MaxHistory        int
	StoreName         string
	WarehouseLocation string
}

// StorageConfig 上传文件存储配置
type StorageConfig struct {
	Type  string // local, minio
	Local LocalStorageConfig
	MinIO MinIOConfig
}

// LocalStorageConfig 本地存储配置
type LocalStorageConfig struct {
	BasePath string
}

// MinIOConfig MinIO 配置
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret string
	TokenTTL  int // 小时
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string // json, console
}

// Load 加载配置
// 先写入默认值，再读取配置文件（不存在时跳过），最后由环境变量覆盖
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	// 环境变量
	v.SetEnvPrefix("SHOP_ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LLMTimeoutDuration 单次 LLM 调用超时
func (c *ChatConfig) LLMTimeoutDuration() time.Duration {
	if c.LLMTimeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.LLMTimeout) * time.Second
}

// HistoryTTLDuration 会话空闲过期时间
func (c *ChatConfig) HistoryTTLDuration() time.Duration {
	if c.HistoryTTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.HistoryTTL) * time.Second
}

// TokenTTLDuration 令牌有效期
func (c *AuthConfig) TokenTTLDuration() time.Duration {
	if c.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTL) * time.Hour
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "shop-assistant")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 90)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "shop_assistant")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Elastic
	v.SetDefault("elastic.host", "http://localhost:9200")
	v.SetDefault("elastic.username", "")
	v.SetDefault("elastic.password", "")
	v.SetDefault("elastic.indexPrefix", "shop_assistant")

	// AI
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.openai.apiKey", "")
	v.SetDefault("ai.openai.baseUrl", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.alibaba.accessKeySecret", "")
	v.SetDefault("ai.alibaba.model", "qwen-plus")
	v.SetDefault("ai.deepseek.apiKey", "")
	v.SetDefault("ai.deepseek.baseUrl", "https://api.deepseek.com/v1")
	v.SetDefault("ai.deepseek.model", "deepseek-chat")
	v.SetDefault("ai.embedding.provider", "dashscope")
	v.SetDefault("ai.embedding.model", "text-embedding-v3")
	v.SetDefault("ai.embedding.apiKey", "")
	v.SetDefault("ai.embedding.baseUrl", "")
	v.SetDefault("ai.embedding.timeout", 30)
	v.SetDefault("ai.embedding.dimensions", 1024)
	v.SetDefault("ai.embedding.maxRunes", 8000)

	// Retrieval
	v.SetDefault("retrieval.backend", "memory")
	v.SetDefault("retrieval.topK", 4)
	v.SetDefault("retrieval.previewChars", 400)
	v.SetDefault("retrieval.chunkSize", 300)
	v.SetDefault("retrieval.chunkOverlap", 50)

	// Chat
	v.SetDefault("chat.llmTimeout", 20)
	v.SetDefault("chat.historyTTL", 86400)
	v.SetDefault("chat.maxHistory", 50)
	v.SetDefault("chat.storeName", "AJ Creations")
	v.SetDefault("chat.warehouseLocation", "Warehouse")

	// Storage
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.basePath", "./data/uploads")
	v.SetDefault("storage.minio.endpoint", "localhost:9000")
	v.SetDefault("storage.minio.accessKey", "")
	v.SetDefault("storage.minio.secretKey", "")
	v.SetDefault("storage.minio.bucket", "shop-assistant")
	v.SetDefault("storage.minio.useSSL", false)

	// Auth
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.tokenTTL", 24)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
