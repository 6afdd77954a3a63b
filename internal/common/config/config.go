package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Consul    ConsulConfig    `json:"consul"`
	Jaeger    JaegerConfig    `json:"jaeger"`
	Auth      AuthConfig      `json:"auth"`
	Media     MediaConfig     `json:"media"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Log       LogConfig       `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `json:"name"` // 服务名称
	Host string `json:"host"` // 服务地址
	Port int    `json:"port"` // HTTP端口
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// AuthConfig 后台鉴权配置（HS256 JWT）
type AuthConfig struct {
	Enabled   bool   `json:"enabled"`    // 是否启用后台鉴权
	JWTSecret string `json:"jwt_secret"` // HS256 密钥
	Issuer    string `json:"issuer"`     // iss 校验（为空则不校验）
	Audience  string `json:"audience"`   // aud 校验（为空则不校验）
	TTLHours  int    `json:"ttl_hours"`  // token 有效期（小时）

	// 首次部署时的初始管理员；账号表非空时忽略
	BootstrapUser     string `json:"bootstrap_user"`
	BootstrapPassword string `json:"bootstrap_password"`
}

// MediaConfig 图片托管服务配置（外部媒体上传协作方）
type MediaConfig struct {
	Endpoint       string `json:"endpoint"`        // 上传接口地址
	APIKey         string `json:"api_key"`         // 接口凭证
	TimeoutSeconds int    `json:"timeout_seconds"` // 单次上传超时
	MaxFailures    int    `json:"max_failures"`    // 熔断阈值
}

// RateLimitConfig 公开接口限流配置（令牌桶）
type RateLimitConfig struct {
	Capacity   int64 `json:"capacity"`    // 桶容量
	RefillRate int64 `json:"refill_rate"` // 每秒补充令牌数
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		// 如果配置文件不存在，使用默认配置
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "marketplace-service",
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "swastikmotors",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "http://localhost:14268/api/traces",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			Enabled:  true,
			Issuer:   "swastikmotors",
			Audience: "swastikmotors",
			TTLHours: 24,
		},
		Media: MediaConfig{
			Endpoint:       "http://localhost:9200/upload",
			TimeoutSeconds: 15,
			MaxFailures:    5,
		},
		RateLimit: RateLimitConfig{
			Capacity:   100,
			RefillRate: 50,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
